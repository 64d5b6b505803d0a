// Package domain defines the core types and interfaces of the ladder trading
// engine: market snapshots, armed order intents, trades, settings, and the
// persistence boundaries implemented by the store packages.
package domain

import "math"

// Prices are fixed-point micros (price * 1e6) everywhere inside the engine.
// Float64 is only used at the API boundary for display.

// ToMicros converts a display price to fixed-point micros.
func ToMicros(p float64) int64 {
	return int64(math.Round(p * 1e6))
}

// FromMicros converts fixed-point micros back to a display price.
func FromMicros(m int64) float64 {
	return float64(m) / 1e6
}

// RoundToTick rounds m to the nearest multiple of tick, half up. Prices in
// this engine are always positive; tick must be > 0.
func RoundToTick(m, tick int64) int64 {
	if tick <= 0 {
		return m
	}
	return (m + tick/2) / tick * tick
}

// PriceLevel is a single price+quantity entry on one side of the book.
type PriceLevel struct {
	Price int64 `json:"price"` // micros
	Qty   int64 `json:"qty"`
}

// MarketSnapshot is the synthetic bid/ask/depth view derived from a raw price
// tick. Asks are ordered ascending by price, bids descending, i.e. both in
// price priority from the touch.
type MarketSnapshot struct {
	LastPrice int64        `json:"last_price"` // micros
	BestBid   int64        `json:"best_bid"`   // micros, 0 when absent
	BestAsk   int64        `json:"best_ask"`   // micros, 0 when absent
	TickSize  int64        `json:"tick_size"`  // micros, > 0
	Asks      []PriceLevel `json:"asks"`
	Bids      []PriceLevel `json:"bids"`
}

// Mid returns the bid/ask midpoint, or the last traded price when either side
// of the touch is missing.
func (s MarketSnapshot) Mid() int64 {
	if s.BestBid > 0 && s.BestAsk > 0 {
		return (s.BestBid + s.BestAsk) / 2
	}
	return s.LastPrice
}

// Spread returns bestAsk-bestBid, or 0 when either side is missing.
func (s MarketSnapshot) Spread() int64 {
	if s.BestBid > 0 && s.BestAsk > 0 {
		return s.BestAsk - s.BestBid
	}
	return 0
}
