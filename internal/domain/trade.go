package domain

import "time"

// Trade is an executed order, immutable once recorded. Execution price is the
// tick price that satisfied the trigger, not the armed target price; the gap
// between the two is the simulated slippage.
//
// A square-off trade always references exactly one prior non-square-off trade
// via OriginalTradeID, and at most one square-off exists per original trade.
type Trade struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Side            Side      `json:"side"`
	Qty             int64     `json:"qty"`
	TargetPrice     int64     `json:"target_price"` // micros
	ExecPrice       int64     `json:"exec_price"`   // micros
	IsSquareOff     bool      `json:"is_square_off,omitempty"`
	OriginalTradeID string    `json:"original_trade_id,omitempty"`
}

// Position pairs an opening trade with its closing square-off, if any. It is
// derived from the trade log on demand, never stored.
type Position struct {
	Open  Trade  `json:"open"`
	Close *Trade `json:"close,omitempty"`
}

// Closed reports whether the position has been squared off.
func (p Position) Closed() bool {
	return p.Close != nil
}

// PnL returns the position's profit and loss in micros. For an open position
// the mark price stands in for the close price, so the result is unrealized
// and changes with every tick.
func (p Position) PnL(mark int64) int64 {
	closePrice := mark
	if p.Close != nil {
		closePrice = p.Close.ExecPrice
	}
	if p.Open.Side == SideBuy {
		return (closePrice - p.Open.ExecPrice) * p.Open.Qty
	}
	return (p.Open.ExecPrice - closePrice) * p.Open.Qty
}
