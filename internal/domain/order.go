package domain

import "time"

// Side indicates whether this is a buy or sell.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the flipped side, used when squaring off a position.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// BlockState is the lifecycle state of a single ladder price level as seen by
// the presentation layer.
type BlockState string

const (
	BlockIdle     BlockState = "IDLE"
	BlockArmed    BlockState = "ARMED"
	BlockExecuted BlockState = "EXECUTED"
)

// OrderIntent is a conditional order armed at a specific ladder price. The
// engine keys intents by their tick-rounded target price, one intent per
// price at a time. An intent is removed either by cancel or by converting it
// into a Trade when a tick crosses the target.
type OrderIntent struct {
	Side    Side      `json:"side"`
	Qty     int64     `json:"qty"`
	ArmedAt time.Time `json:"armed_at"`
}
