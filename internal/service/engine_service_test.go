package service

import (
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/engine"
	"github.com/quantline/ladderbot/internal/market"
)

func newTestService(t *testing.T) *EngineService {
	t.Helper()
	settings := domain.Settings{
		Side:           domain.SideBuy,
		Qty:            1,
		Mode:           domain.LadderLTP,
		LevelsPerSide:  2,
		TickSize:       domain.ToMicros(0.05),
		AutoRecalc:     true,
		StepMultiplier: 1.0,
		Thresholds:     []int64{500, 1500, 3000, 5000, 8000},
	}
	builder := market.NewBuilder(settings.TickSize, rand.New(rand.NewSource(7)))
	return New(engine.New(settings, builder, slog.Default()), slog.Default())
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTickTriggersArmedOrder(t *testing.T) {
	svc := newTestService(t)
	sink := make(chan domain.Trade, 8)
	svc.SetJournalSink(sink)

	svc.Tick(2006.16)
	svc.Arm(2005.00)
	if armed, _ := svc.Counts(); armed != 1 {
		t.Fatalf("armed count = %d, want 1", armed)
	}

	res := svc.Tick(2004.90)
	if len(res.Executed) != 1 {
		t.Fatalf("executed = %d trades, want 1", len(res.Executed))
	}
	tr := res.Executed[0]
	if tr.Side != domain.SideBuy || tr.TargetPrice != domain.ToMicros(2005.00) {
		t.Errorf("trade = %+v, want BUY at 2005.00", tr)
	}
	if tr.ExecPrice != domain.ToMicros(2004.90) {
		t.Errorf("exec price = %d, want tick price", tr.ExecPrice)
	}
	if res.ArmedCount != 0 || res.OpenCount != 1 {
		t.Errorf("counts = armed %d open %d, want 0/1", res.ArmedCount, res.OpenCount)
	}

	select {
	case got := <-sink:
		if got.ID != tr.ID {
			t.Errorf("sink trade id = %s, want %s", got.ID, tr.ID)
		}
	default:
		t.Error("executed trade not delivered to journal sink")
	}
}

func TestPnLThroughSquareOff(t *testing.T) {
	svc := newTestService(t)

	svc.Tick(2006.16)
	svc.Arm(2005.00)
	svc.Tick(2004.90)

	// Mark moves 0.50 above the fill: all profit is unrealized.
	svc.Tick(2005.40)
	pnl := svc.PnL()
	if !almost(pnl.Unrealized, 0.50) || !almost(pnl.Realized, 0) {
		t.Fatalf("pnl = %+v, want unrealized 0.50 realized 0", pnl)
	}
	if !almost(pnl.Total, 0.50) {
		t.Errorf("total = %v, want 0.50", pnl.Total)
	}

	// Square off through the confirmation gateway.
	svc.RequestSquareOffAll()
	dlg := svc.Dialog()
	if !dlg.Open || dlg.Command.Action != domain.ConfirmSquareOffAll {
		t.Fatalf("dialog = %+v, want open square-off-all", dlg)
	}
	if !svc.Confirm() {
		t.Fatal("Confirm returned false with a staged command")
	}

	pnl = svc.PnL()
	if !almost(pnl.Realized, 0.50) || !almost(pnl.Unrealized, 0) {
		t.Errorf("pnl after square-off = %+v, want realized 0.50", pnl)
	}
	if _, open := svc.Counts(); open != 0 {
		t.Errorf("open count = %d, want 0", open)
	}
	if svc.Confirm() {
		t.Error("Confirm succeeded twice for one staged command")
	}
}

func TestSquareOffReachesJournalSink(t *testing.T) {
	svc := newTestService(t)
	sink := make(chan domain.Trade, 8)
	svc.SetJournalSink(sink)

	svc.Tick(2006.16)
	svc.Arm(2005.00)
	svc.Tick(2004.90)
	open := <-sink

	svc.RequestSquareOffAll()
	if !svc.Confirm() {
		t.Fatal("Confirm returned false with a staged command")
	}

	select {
	case sq := <-sink:
		if !sq.IsSquareOff {
			t.Errorf("sink trade %s is not a square-off", sq.ID)
		}
		if sq.OriginalTradeID != open.ID {
			t.Errorf("square-off references %s, want %s", sq.OriginalTradeID, open.ID)
		}
	default:
		t.Fatal("square-off trade not delivered to journal sink")
	}
}

func TestUpdateSettingsPatch(t *testing.T) {
	svc := newTestService(t)
	svc.Tick(2006.16)

	side := domain.SideSell
	qty := int64(3)
	mode := domain.LadderDepth
	got := svc.UpdateSettings(SettingsPatch{Side: &side, Qty: &qty, Mode: &mode})

	if got.Side != domain.SideSell || got.Qty != 3 || got.Mode != domain.LadderDepth {
		t.Fatalf("settings = %+v, want SELL qty 3 depth", got)
	}

	// Arm now uses the patched side and quantity.
	svc.Arm(2007.00)
	res := svc.Tick(2007.10)
	if len(res.Executed) != 1 {
		t.Fatalf("executed = %d trades, want 1", len(res.Executed))
	}
	if tr := res.Executed[0]; tr.Side != domain.SideSell || tr.Qty != 3 {
		t.Errorf("trade = %+v, want SELL qty 3", tr)
	}
}

func TestLadderViewStates(t *testing.T) {
	svc := newTestService(t)
	svc.Tick(2006.16)

	levels := svc.Ladder()
	if len(levels) == 0 {
		t.Fatal("ladder is empty after first tick")
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Price >= levels[i-1].Price {
			t.Fatalf("ladder not descending at %d: %v >= %v", i, levels[i].Price, levels[i-1].Price)
		}
	}
	for _, lv := range levels {
		if lv.State != domain.BlockIdle {
			t.Errorf("level %v state = %v, want IDLE", lv.Price, lv.State)
		}
	}

	svc.Arm(levels[0].Price)
	for _, lv := range svc.Ladder() {
		want := domain.BlockIdle
		if lv.Price == levels[0].Price {
			want = domain.BlockArmed
		}
		if lv.State != want {
			t.Errorf("level %v state = %v, want %v", lv.Price, lv.State, want)
		}
	}
}
