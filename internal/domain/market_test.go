package domain

import "testing"

func TestRoundToTick(t *testing.T) {
	tick := ToMicros(0.05)
	cases := []struct {
		price float64
		want  float64
	}{
		{2006.16, 2006.15},
		{2006.175, 2006.20}, // half rounds up
		{2006.10, 2006.10},
		{2006.124, 2006.10},
		{2006.126, 2006.15},
	}
	for _, tc := range cases {
		got := RoundToTick(ToMicros(tc.price), tick)
		if got != ToMicros(tc.want) {
			t.Errorf("RoundToTick(%.3f) = %.3f, want %.3f",
				tc.price, FromMicros(got), tc.want)
		}
	}
}

func TestPositionPnL(t *testing.T) {
	open := Trade{ID: "a", Side: SideBuy, Qty: 2, ExecPrice: ToMicros(2004.00)}

	// Unrealized: marked at the current tick.
	p := Position{Open: open}
	if got := p.PnL(ToMicros(2006.00)); got != ToMicros(2.00)*2 {
		t.Errorf("unrealized buy pnl = %d", got)
	}

	// Realized: the close price wins over the mark.
	cl := Trade{ID: "b", Side: SideSell, Qty: 2, ExecPrice: ToMicros(2010.00), IsSquareOff: true, OriginalTradeID: "a"}
	p.Close = &cl
	if got := p.PnL(ToMicros(1.00)); got != ToMicros(6.00)*2 {
		t.Errorf("realized buy pnl = %d", got)
	}

	// Sell-opened positions invert the sign.
	sp := Position{Open: Trade{Side: SideSell, Qty: 3, ExecPrice: ToMicros(2006.00)}}
	if got := sp.PnL(ToMicros(2002.00)); got != ToMicros(4.00)*3 {
		t.Errorf("unrealized sell pnl = %d", got)
	}
}

func TestMidAndSpread(t *testing.T) {
	s := MarketSnapshot{LastPrice: 100, BestBid: 90, BestAsk: 110}
	if s.Mid() != 100 || s.Spread() != 20 {
		t.Errorf("mid/spread = %d/%d", s.Mid(), s.Spread())
	}
	s.BestAsk = 0
	if s.Mid() != s.LastPrice || s.Spread() != 0 {
		t.Errorf("degenerate mid/spread = %d/%d", s.Mid(), s.Spread())
	}
}
