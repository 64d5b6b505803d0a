// Package market synthesizes market data for the simulation: a random-walk
// price source and a snapshot builder that derives bid/ask/depth from each
// raw tick.
package market

import (
	"math/rand"

	"github.com/quantline/ladderbot/internal/domain"
)

const (
	maxSpreadTicks = 10
	bookDepth      = 12
	// regenChance is the per-call probability of rebuilding the full
	// synthetic book instead of carrying the previous one forward.
	regenChance = 0.10
)

// Builder derives a synthetic MarketSnapshot from a raw price tick. It is a
// pure function of (price, previous snapshot, rng): given the same random
// source it produces the same sequence of snapshots.
type Builder struct {
	tickSize int64 // micros
	rng      *rand.Rand
}

// NewBuilder creates a Builder. tickSize is in micros and must be > 0.
func NewBuilder(tickSize int64, rng *rand.Rand) *Builder {
	return &Builder{tickSize: tickSize, rng: rng}
}

// SetTickSize changes the tick size used for rounding in subsequent calls.
func (b *Builder) SetTickSize(tick int64) {
	if tick > 0 {
		b.tickSize = tick
	}
}

// Next builds the snapshot for a new raw tick. The spread is a uniform random
// 1..10 ticks centered on the price. The full depth book is regenerated on
// roughly 10% of calls to emulate discontinuous depth changes; otherwise the
// previous book is carried forward unchanged.
func (b *Builder) Next(price int64, prev *domain.MarketSnapshot) domain.MarketSnapshot {
	tick := b.tickSize
	spread := int64(1+b.rng.Intn(maxSpreadTicks)) * tick

	snap := domain.MarketSnapshot{
		LastPrice: price,
		BestBid:   domain.RoundToTick(price-spread/2, tick),
		BestAsk:   domain.RoundToTick(price+spread/2, tick),
		TickSize:  tick,
	}
	if snap.BestBid <= 0 {
		snap.BestBid = tick
	}
	if snap.BestAsk < snap.BestBid {
		snap.BestAsk = snap.BestBid
	}

	if prev != nil && len(prev.Asks) > 0 && b.rng.Float64() >= regenChance {
		snap.Asks = prev.Asks
		snap.Bids = prev.Bids
		return snap
	}

	snap.Asks = b.buildSide(snap.BestAsk, tick)
	snap.Bids = b.buildSide(snap.BestBid, -tick)
	return snap
}

// buildSide generates bookDepth resting levels stepping away from the touch
// by one tick per level, with random quantities.
func (b *Builder) buildSide(touch, step int64) []domain.PriceLevel {
	levels := make([]domain.PriceLevel, 0, bookDepth)
	price := touch
	for i := 0; i < bookDepth; i++ {
		if price <= 0 {
			break
		}
		levels = append(levels, domain.PriceLevel{
			Price: price,
			Qty:   int64(50 + b.rng.Intn(950)),
		})
		price += step
	}
	return levels
}
