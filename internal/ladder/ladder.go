// Package ladder generates candidate trigger prices around the current market
// from a snapshot. Three interchangeable algorithms are provided; degenerate
// book data falls back along the chain liquidity -> depth -> LTP rather than
// failing.
package ladder

import (
	"sort"

	"github.com/quantline/ladderbot/internal/domain"
)

// Config holds the generation parameters.
type Config struct {
	LevelsPerSide int
	TickSize      int64 // micros
	// Thresholds are ascending cumulative quantities; only the liquidity
	// algorithm reads them.
	Thresholds []int64
}

// Generate produces the candidate trigger prices for the given mode: a
// descending, de-duplicated list of tick-rounded prices with at most
// 2*LevelsPerSide+1 entries.
func Generate(snap domain.MarketSnapshot, cfg Config, side domain.Side, mode domain.LadderMode) []int64 {
	switch mode {
	case domain.LadderDepth:
		return depthLadder(snap, cfg, side)
	case domain.LadderLiquidity:
		return liquidityLadder(snap, cfg, side)
	default:
		return ltpLadder(snap, cfg)
	}
}

// ltpLadder spaces levels symmetrically around the bid/ask midpoint (or the
// last traded price when the touch is missing), stepping by the larger of one
// tick and the current spread. Side-independent.
func ltpLadder(snap domain.MarketSnapshot, cfg Config) []int64 {
	mid := snap.Mid()
	step := snap.Spread()
	if step < cfg.TickSize {
		step = cfg.TickSize
	}

	prices := make([]int64, 0, 2*cfg.LevelsPerSide+1)
	for k := -cfg.LevelsPerSide; k <= cfg.LevelsPerSide; k++ {
		p := domain.RoundToTick(mid+int64(k)*step, cfg.TickSize)
		if p > 0 {
			prices = append(prices, p)
		}
	}
	return finalize(prices, cfg.LevelsPerSide)
}

// depthLadder anchors on the side of book the order would interact with:
// best ask for BUY, best bid for SELL, stepping one tick per level away from
// the anchor in the side's direction. Falls back to the LTP ladder when the
// touch is missing.
func depthLadder(snap domain.MarketSnapshot, cfg Config, side domain.Side) []int64 {
	var anchor, dir int64
	if side == domain.SideBuy {
		anchor, dir = snap.BestAsk, 1
	} else {
		anchor, dir = snap.BestBid, -1
	}
	if anchor <= 0 {
		return ltpLadder(snap, cfg)
	}

	prices := make([]int64, 0, 2*cfg.LevelsPerSide+1)
	for off := -cfg.LevelsPerSide; off <= cfg.LevelsPerSide; off++ {
		p := domain.RoundToTick(anchor+dir*int64(off)*cfg.TickSize, cfg.TickSize)
		if p > 0 {
			prices = append(prices, p)
		}
	}
	return finalize(prices, cfg.LevelsPerSide)
}

// liquidityLadder walks the resting levels the order would consume (asks for
// BUY, bids for SELL) in price priority, accumulating quantity, and emits an
// impact price each time the cumulative quantity first crosses one of the
// configured thresholds. Short results are padded one tick at a time beyond
// the last impact price. Falls back to the depth ladder when the relevant
// side of book is empty.
func liquidityLadder(snap domain.MarketSnapshot, cfg Config, side domain.Side) []int64 {
	var book []domain.PriceLevel
	var dir int64
	if side == domain.SideBuy {
		book, dir = snap.Asks, 1
	} else {
		book, dir = snap.Bids, -1
	}
	if len(book) == 0 {
		return depthLadder(snap, cfg, side)
	}

	target := 2*cfg.LevelsPerSide + 1
	prices := make([]int64, 0, target)

	var cum int64
	ti := 0
	for _, lvl := range book {
		if ti >= len(cfg.Thresholds) {
			break
		}
		cum += lvl.Qty
		for ti < len(cfg.Thresholds) && cum >= cfg.Thresholds[ti] {
			p := domain.RoundToTick(lvl.Price, cfg.TickSize)
			if len(prices) == 0 || prices[len(prices)-1] != p {
				prices = append(prices, p)
			}
			ti++
		}
	}
	if len(prices) == 0 {
		prices = append(prices, domain.RoundToTick(book[0].Price, cfg.TickSize))
	}

	// Pad beyond the deepest impact price until the target count is reached.
	last := prices[len(prices)-1]
	for len(prices) < target {
		last += dir * cfg.TickSize
		if last <= 0 {
			break
		}
		prices = append(prices, last)
	}
	return finalize(prices, cfg.LevelsPerSide)
}

// finalize de-duplicates, sorts descending, and truncates to 2L+1 entries.
func finalize(prices []int64, levelsPerSide int) []int64 {
	seen := make(map[int64]struct{}, len(prices))
	out := prices[:0]
	for _, p := range prices {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })

	if max := 2*levelsPerSide + 1; len(out) > max {
		out = out[:max]
	}
	return out
}
