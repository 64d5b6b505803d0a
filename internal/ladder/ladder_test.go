package ladder

import (
	"testing"

	"github.com/quantline/ladderbot/internal/domain"
)

var tick = domain.ToMicros(0.05)

func cfg(levels int) Config {
	return Config{
		LevelsPerSide: levels,
		TickSize:      tick,
		Thresholds:    []int64{500, 1500, 3000, 5000, 8000},
	}
}

func snapWithBook() domain.MarketSnapshot {
	return domain.MarketSnapshot{
		LastPrice: domain.ToMicros(2006.16),
		BestBid:   domain.ToMicros(2006.05),
		BestAsk:   domain.ToMicros(2006.25),
		TickSize:  tick,
		Asks: []domain.PriceLevel{
			{Price: domain.ToMicros(2006.25), Qty: 400},
			{Price: domain.ToMicros(2006.30), Qty: 700},
			{Price: domain.ToMicros(2006.35), Qty: 1200},
			{Price: domain.ToMicros(2006.40), Qty: 2500},
			{Price: domain.ToMicros(2006.45), Qty: 4000},
		},
		Bids: []domain.PriceLevel{
			{Price: domain.ToMicros(2006.05), Qty: 600},
			{Price: domain.ToMicros(2006.00), Qty: 1100},
			{Price: domain.ToMicros(2005.95), Qty: 2000},
		},
	}
}

func assertDescendingDistinct(t *testing.T, prices []int64, maxLen int) {
	t.Helper()
	if len(prices) == 0 {
		t.Fatal("empty ladder")
	}
	if len(prices) > maxLen {
		t.Fatalf("ladder size = %d, want <= %d", len(prices), maxLen)
	}
	for i := 1; i < len(prices); i++ {
		if prices[i] >= prices[i-1] {
			t.Fatalf("prices not strictly descending at %d: %d >= %d", i, prices[i], prices[i-1])
		}
	}
	for _, p := range prices {
		if p%tick != 0 {
			t.Errorf("price %d is not a tick multiple", p)
		}
		if p <= 0 {
			t.Errorf("non-positive price %d", p)
		}
	}
}

func TestLTPLadderScenario(t *testing.T) {
	// mid near 2006.16, levelsPerSide=2: exactly 5 distinct descending
	// prices centered near the mid, all rounded to 0.05.
	snap := snapWithBook()
	prices := Generate(snap, cfg(2), domain.SideBuy, domain.LadderLTP)

	assertDescendingDistinct(t, prices, 5)
	if len(prices) != 5 {
		t.Fatalf("ladder size = %d, want 5", len(prices))
	}

	mid := snap.Mid()
	center := prices[2]
	diff := center - domain.RoundToTick(mid, tick)
	if diff < -tick || diff > tick {
		t.Errorf("center price %d not near mid %d", center, mid)
	}
}

func TestLTPLadderSideIndependent(t *testing.T) {
	snap := snapWithBook()
	buy := Generate(snap, cfg(3), domain.SideBuy, domain.LadderLTP)
	sell := Generate(snap, cfg(3), domain.SideSell, domain.LadderLTP)
	if len(buy) != len(sell) {
		t.Fatalf("LTP ladder differs by side: %d vs %d", len(buy), len(sell))
	}
	for i := range buy {
		if buy[i] != sell[i] {
			t.Fatalf("LTP ladder differs by side at %d", i)
		}
	}
}

func TestLTPLadderNoTouchUsesLastPrice(t *testing.T) {
	snap := domain.MarketSnapshot{
		LastPrice: domain.ToMicros(2006.16),
		TickSize:  tick,
	}
	prices := Generate(snap, cfg(2), domain.SideBuy, domain.LadderLTP)
	assertDescendingDistinct(t, prices, 5)

	// With no spread the step is one tick; levels are contiguous.
	for i := 1; i < len(prices); i++ {
		if prices[i-1]-prices[i] != tick {
			t.Errorf("step at %d = %d, want one tick", i, prices[i-1]-prices[i])
		}
	}
}

func TestDepthLadderAnchors(t *testing.T) {
	snap := snapWithBook()

	buy := Generate(snap, cfg(2), domain.SideBuy, domain.LadderDepth)
	assertDescendingDistinct(t, buy, 5)
	if !contains(buy, snap.BestAsk) {
		t.Errorf("BUY depth ladder does not contain the ask anchor")
	}

	sell := Generate(snap, cfg(2), domain.SideSell, domain.LadderDepth)
	assertDescendingDistinct(t, sell, 5)
	if !contains(sell, snap.BestBid) {
		t.Errorf("SELL depth ladder does not contain the bid anchor")
	}
}

func TestDepthLadderFallsBackToLTP(t *testing.T) {
	snap := domain.MarketSnapshot{
		LastPrice: domain.ToMicros(2006.16),
		TickSize:  tick,
	}
	depth := Generate(snap, cfg(2), domain.SideBuy, domain.LadderDepth)
	ltp := Generate(snap, cfg(2), domain.SideBuy, domain.LadderLTP)
	if len(depth) != len(ltp) {
		t.Fatalf("fallback mismatch: %d vs %d", len(depth), len(ltp))
	}
	for i := range depth {
		if depth[i] != ltp[i] {
			t.Fatalf("fallback ladder differs from LTP at %d", i)
		}
	}
}

func TestLiquidityLadderImpactPrices(t *testing.T) {
	snap := snapWithBook()
	prices := Generate(snap, cfg(2), domain.SideBuy, domain.LadderLiquidity)
	assertDescendingDistinct(t, prices, 5)
	if len(prices) != 5 {
		t.Fatalf("ladder size = %d, want padded to 5", len(prices))
	}

	// Cumulative ask quantities: 400, 1100, 2300, 4800, 8800.
	// Thresholds 500 -> 2006.30, 1500 -> 2006.35, 3000 -> 2006.40,
	// 5000 and 8000 -> 2006.45.
	for _, want := range []float64{2006.30, 2006.35, 2006.40, 2006.45} {
		if !contains(prices, domain.ToMicros(want)) {
			t.Errorf("impact price %.2f missing from ladder", want)
		}
	}
	// One padded level one tick past the deepest impact price.
	if !contains(prices, domain.ToMicros(2006.50)) {
		t.Errorf("padded price 2006.50 missing from ladder")
	}
}

func TestLiquidityLadderFallsBackToDepth(t *testing.T) {
	snap := snapWithBook()
	snap.Asks = nil // BUY side consumes asks; empty -> depth fallback

	liq := Generate(snap, cfg(2), domain.SideBuy, domain.LadderLiquidity)
	depth := Generate(snap, cfg(2), domain.SideBuy, domain.LadderDepth)
	if len(liq) != len(depth) {
		t.Fatalf("fallback mismatch: %d vs %d", len(liq), len(depth))
	}
	for i := range liq {
		if liq[i] != depth[i] {
			t.Fatalf("fallback ladder differs from depth at %d", i)
		}
	}
}

func TestGenerateNearZeroPriceFloorsPositive(t *testing.T) {
	snap := domain.MarketSnapshot{
		LastPrice: domain.ToMicros(0.10),
		TickSize:  tick,
	}
	prices := Generate(snap, cfg(5), domain.SideSell, domain.LadderLTP)
	for _, p := range prices {
		if p <= 0 {
			t.Fatalf("ladder contains non-positive price %d", p)
		}
	}
}

func contains(prices []int64, p int64) bool {
	for _, q := range prices {
		if q == p {
			return true
		}
	}
	return false
}
