package engine

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/market"
)

func testSettings() domain.Settings {
	return domain.Settings{
		Side:           domain.SideBuy,
		Qty:            1,
		Mode:           domain.LadderLTP,
		LevelsPerSide:  5,
		TickSize:       domain.ToMicros(0.05),
		AutoRecalc:     false,
		StepMultiplier: 1.0,
		Thresholds:     []int64{500, 1500, 3000, 5000, 8000},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	builder := market.NewBuilder(domain.ToMicros(0.05), rand.New(rand.NewSource(1)))
	return New(testSettings(), builder, logger)
}

func TestArmTriggerBuy(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	target := domain.ToMicros(2005.00)
	e.Arm(target, domain.SideBuy, 1)
	if e.ArmedCount() != 1 {
		t.Fatalf("armed count = %d, want 1", e.ArmedCount())
	}

	// Above target: no trigger for BUY.
	e.Advance(domain.ToMicros(2005.10))
	if got := len(e.Trades()); got != 0 {
		t.Fatalf("trades after non-crossing tick = %d, want 0", got)
	}

	tick := domain.ToMicros(2004.90)
	executed := e.Advance(tick)
	if len(executed) != 1 {
		t.Fatalf("executed = %d trades, want 1", len(executed))
	}
	tr := executed[0]
	if tr.Side != domain.SideBuy || tr.Qty != 1 {
		t.Errorf("trade side/qty = %s/%d, want BUY/1", tr.Side, tr.Qty)
	}
	if tr.ExecPrice != tick {
		t.Errorf("exec price = %d, want tick price %d", tr.ExecPrice, tick)
	}
	if tr.TargetPrice != target {
		t.Errorf("target price = %d, want %d", tr.TargetPrice, target)
	}
	if e.ArmedCount() != 0 {
		t.Errorf("armed count after trigger = %d, want 0", e.ArmedCount())
	}
	// Opened and marked at the same price: zero P&L.
	if pnl := e.TotalPnL(); pnl != 0 {
		t.Errorf("total pnl = %d, want 0", pnl)
	}
}

func TestSellTriggerCondition(t *testing.T) {
	cases := []struct {
		name    string
		tick    float64
		trigger bool
	}{
		{"below target", 2004.00, false},
		{"at target", 2005.00, true},
		{"above target", 2006.00, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.Advance(domain.ToMicros(2000.00))
			e.Arm(domain.ToMicros(2005.00), domain.SideSell, 2)

			executed := e.Advance(domain.ToMicros(tc.tick))
			if got := len(executed) == 1; got != tc.trigger {
				t.Fatalf("triggered = %v, want %v", got, tc.trigger)
			}
		})
	}
}

func TestArmIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	price := domain.ToMicros(2005.00)
	e.Arm(price, domain.SideBuy, 1)
	e.Arm(price, domain.SideSell, 5) // must not replace the existing intent
	if e.ArmedCount() != 1 {
		t.Fatalf("armed count = %d, want 1", e.ArmedCount())
	}
	entry := e.Armed()[0]
	if entry.Intent.Side != domain.SideBuy || entry.Intent.Qty != 1 {
		t.Errorf("intent = %s/%d, want original BUY/1", entry.Intent.Side, entry.Intent.Qty)
	}

	// Cancel of a non-armed price is a no-op.
	e.Cancel(domain.ToMicros(1999.00))
	if e.ArmedCount() != 1 {
		t.Errorf("armed count after stray cancel = %d, want 1", e.ArmedCount())
	}
}

func TestTriggerPassUsesStableView(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2010.00))

	// Two BUY orders both crossed by the same tick must both execute on it.
	e.Arm(domain.ToMicros(2005.00), domain.SideBuy, 1)
	e.Arm(domain.ToMicros(2006.00), domain.SideBuy, 1)

	executed := e.Advance(domain.ToMicros(2004.00))
	if len(executed) != 2 {
		t.Fatalf("executed = %d, want 2", len(executed))
	}
	if e.ArmedCount() != 0 {
		t.Errorf("armed count = %d, want 0", e.ArmedCount())
	}
}

func TestSquareOffNoOpenTrade(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	if closed := e.SquareOff(domain.ToMicros(2005.00)); closed != nil {
		t.Fatalf("square-off with no open trade returned %d trades", len(closed))
	}
	if got := len(e.Trades()); got != 0 {
		t.Fatalf("ledger changed by square-off with no open trade: %d trades", got)
	}
}

func TestSquareOffRealizedPnL(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	e.Arm(domain.ToMicros(2005.00), domain.SideBuy, 2)
	e.Advance(domain.ToMicros(2004.00)) // opens BUY 2 @ 2004.00

	e.Advance(domain.ToMicros(2007.00))
	e.SquareOff(domain.ToMicros(2005.00))

	trades := e.Trades()
	if len(trades) != 2 {
		t.Fatalf("trades = %d, want open + square-off", len(trades))
	}
	sq := trades[1]
	if !sq.IsSquareOff || sq.OriginalTradeID != trades[0].ID {
		t.Errorf("square-off must reference the original trade")
	}
	if sq.Side != domain.SideSell || sq.Qty != 2 {
		t.Errorf("square-off side/qty = %s/%d, want SELL/2", sq.Side, sq.Qty)
	}

	// (2007 - 2004) * 2, realized; invariant under further price moves.
	want := (domain.ToMicros(2007.00) - domain.ToMicros(2004.00)) * 2
	if pnl := e.TotalPnL(); pnl != want {
		t.Errorf("realized pnl = %d, want %d", pnl, want)
	}
	e.Advance(domain.ToMicros(1990.00))
	if pnl := e.TotalPnL(); pnl != want {
		t.Errorf("realized pnl moved with mark price: %d, want %d", pnl, want)
	}

	// A closed position cannot be squared off again.
	e.SquareOff(domain.ToMicros(2005.00))
	if got := len(e.Trades()); got != 2 {
		t.Errorf("double square-off appended a trade: %d", got)
	}
}

func TestSquareOffAllSharedExecPrice(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2010.00))

	e.Arm(domain.ToMicros(2005.00), domain.SideBuy, 1)
	e.Arm(domain.ToMicros(2006.00), domain.SideBuy, 1)
	e.Advance(domain.ToMicros(2004.00))

	mark := domain.ToMicros(2008.00)
	e.Advance(mark)
	e.SquareOffAll()

	if e.OpenCount() != 0 {
		t.Fatalf("open count = %d, want 0", e.OpenCount())
	}
	for _, tr := range e.Trades() {
		if tr.IsSquareOff && tr.ExecPrice != mark {
			t.Errorf("square-off exec = %d, want shared price %d", tr.ExecPrice, mark)
		}
	}
}

func TestUnrealizedPnLSellSide(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2000.00))

	e.Arm(domain.ToMicros(2005.00), domain.SideSell, 3)
	e.Advance(domain.ToMicros(2006.00)) // opens SELL 3 @ 2006.00

	e.Advance(domain.ToMicros(2002.00))
	want := (domain.ToMicros(2006.00) - domain.ToMicros(2002.00)) * 3
	if pnl := e.TotalPnL(); pnl != want {
		t.Errorf("unrealized sell pnl = %d, want %d", pnl, want)
	}
}

func TestRearmAfterSquareOffCreatesNewCycle(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	target := domain.ToMicros(2005.00)
	e.Arm(target, domain.SideBuy, 1)
	e.Advance(domain.ToMicros(2004.00))
	e.SquareOff(target)
	if st := e.BlockStateAt(target); st != domain.BlockIdle {
		t.Fatalf("state after square-off = %s, want IDLE", st)
	}

	e.Arm(target, domain.SideBuy, 1)
	e.Advance(domain.ToMicros(2003.00))

	if e.OpenCount() != 1 {
		t.Fatalf("open count = %d, want 1 new independent position", e.OpenCount())
	}
	if got := len(e.Trades()); got != 3 {
		t.Errorf("trades = %d, want open+squareoff+open", got)
	}
}

func TestBlockStates(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	target := domain.ToMicros(2005.00)
	if st := e.BlockStateAt(target); st != domain.BlockIdle {
		t.Errorf("initial state = %s, want IDLE", st)
	}
	e.Arm(target, domain.SideBuy, 1)
	if st := e.BlockStateAt(target); st != domain.BlockArmed {
		t.Errorf("armed state = %s, want ARMED", st)
	}
	e.Advance(domain.ToMicros(2004.00))
	if st := e.BlockStateAt(target); st != domain.BlockExecuted {
		t.Errorf("executed state = %s, want EXECUTED", st)
	}
}

func TestRegenerateCancelsOffLadderOrders(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	// Armed far outside any plausible regenerated ladder.
	stray := domain.ToMicros(1500.00)
	e.Arm(stray, domain.SideBuy, 1)

	if ok := e.Regenerate(true); !ok {
		t.Fatal("forced regenerate did not run")
	}
	if e.ArmedCount() != 0 {
		t.Errorf("off-ladder armed order survived regeneration")
	}
	if got := len(e.Trades()); got != 0 {
		t.Errorf("regeneration produced %d trades, want 0", got)
	}
}

func TestThrottle(t *testing.T) {
	e := newTestEngine(t)
	now := time.Unix(1_700_000_000, 0)
	e.now = func() time.Time { return now }

	e.Advance(domain.ToMicros(2006.16))
	e.Regenerate(true) // baseline price + timestamp

	// Elapsed but no drift: no recalculation.
	now = now.Add(time.Second)
	if e.ShouldRecalculate() {
		t.Error("recalculate with zero drift")
	}
	if e.Regenerate(false) {
		t.Error("unforced regenerate ran against the throttle")
	}

	// Drift but below the minimum interval: no recalculation.
	e.Advance(domain.ToMicros(2007.16))
	e.Regenerate(true)
	e.Advance(domain.ToMicros(2008.16))
	if e.ShouldRecalculate() {
		t.Error("recalculate before the minimum interval elapsed")
	}

	// Both conditions met: drift >= tick * 2 * multiplier (0.10 here).
	now = now.Add(time.Second)
	if !e.ShouldRecalculate() {
		t.Error("recalculate refused with drift and elapsed time")
	}
	if !e.Regenerate(false) {
		t.Error("unforced regenerate did not run when due")
	}
}

func TestConfirmationGateway(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	price := domain.ToMicros(2005.00)
	e.Arm(price, domain.SideBuy, 1)

	// Close without confirm: nothing happens.
	e.RequestCancel(price)
	if d := e.Dialog(); !d.Open || d.Command.Action != domain.ConfirmCancelOne {
		t.Fatalf("dialog not staged: %+v", d)
	}
	e.CloseDialog()
	if e.Dialog().Open {
		t.Error("dialog still open after close")
	}
	if e.ArmedCount() != 1 {
		t.Error("close-dialog cancelled the order")
	}

	// Confirm commits.
	e.RequestCancel(price)
	if _, ok := e.ConfirmPending(); !ok {
		t.Fatal("confirm with staged command returned false")
	}
	if e.ArmedCount() != 0 {
		t.Error("confirmed cancel did not remove the armed order")
	}
	if e.Dialog().Open {
		t.Error("dialog not cleared by confirm")
	}
	if _, ok := e.ConfirmPending(); ok {
		t.Error("confirm with empty dialog returned true")
	}
}

func TestConfirmSquareOffAll(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2010.00))
	e.Arm(domain.ToMicros(2005.00), domain.SideBuy, 1)
	e.Arm(domain.ToMicros(2007.00), domain.SideBuy, 1)
	e.Advance(domain.ToMicros(2004.00))

	e.RequestSquareOffAll()
	closed, ok := e.ConfirmPending()
	if !ok {
		t.Fatal("confirm returned false")
	}
	if len(closed) != 2 {
		t.Fatalf("confirm returned %d trades, want 2 square-offs", len(closed))
	}
	for _, tr := range closed {
		if !tr.IsSquareOff {
			t.Errorf("trade %s returned by confirm is not a square-off", tr.ID)
		}
	}
	if e.OpenCount() != 0 {
		t.Errorf("open count = %d, want 0", e.OpenCount())
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))
	e.Arm(domain.ToMicros(2005.00), domain.SideBuy, 1)
	e.Arm(domain.ToMicros(2008.00), domain.SideSell, 2)
	e.Advance(domain.ToMicros(2004.00)) // executes the BUY

	rec := e.Snapshot()

	restored := newTestEngine(t)
	restored.Restore(rec)

	if got, want := restored.ArmedCount(), e.ArmedCount(); got != want {
		t.Errorf("restored armed count = %d, want %d", got, want)
	}
	gotArmed, wantArmed := restored.Armed(), e.Armed()
	for i := range wantArmed {
		if gotArmed[i] != wantArmed[i] {
			t.Errorf("armed entry %d = %+v, want %+v", i, gotArmed[i], wantArmed[i])
		}
	}
	if got, want := len(restored.Trades()), len(e.Trades()); got != want {
		t.Errorf("restored trades = %d, want %d", got, want)
	}
	if restored.Settings().Side != e.Settings().Side ||
		restored.Settings().Qty != e.Settings().Qty ||
		restored.Settings().TickSize != e.Settings().TickSize {
		t.Errorf("restored settings mismatch")
	}
}

func TestSettingsMutationForcesRegeneration(t *testing.T) {
	e := newTestEngine(t)
	e.Advance(domain.ToMicros(2006.16))

	before := e.Ladder()
	e.SetLevelsPerSide(2)
	after := e.Ladder()
	if len(after) == len(before) {
		t.Fatalf("ladder size unchanged after levels-per-side mutation")
	}
	if want := 2*2 + 1; len(after) != want {
		t.Errorf("ladder size = %d, want %d", len(after), want)
	}
}
