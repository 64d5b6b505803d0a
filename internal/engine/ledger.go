package engine

import (
	"log/slog"
	"sort"

	"github.com/quantline/ladderbot/internal/domain"
)

// openTradeAt returns the most recent open (non-square-off, not yet closed)
// trade whose target price equals the given tick-rounded price, or nil.
func (e *Engine) openTradeAt(price int64) *domain.Trade {
	closed := e.closedSet()
	for i := len(e.trades) - 1; i >= 0; i-- {
		t := &e.trades[i]
		if t.IsSquareOff || t.TargetPrice != price {
			continue
		}
		if _, done := closed[t.ID]; !done {
			return t
		}
	}
	return nil
}

// closedSet returns the IDs of original trades that already have a square-off
// referencing them.
func (e *Engine) closedSet() map[string]struct{} {
	closed := make(map[string]struct{})
	for _, t := range e.trades {
		if t.IsSquareOff {
			closed[t.OriginalTradeID] = struct{}{}
		}
	}
	return closed
}

// SquareOff closes the open trade at the given target price with an
// opposite-side trade executed at the current tick price, returning the
// square-off trades created. It is a silent no-op when no open trade exists
// at that price.
func (e *Engine) SquareOff(price int64) []domain.Trade {
	key := domain.RoundToTick(price, e.settings.TickSize)
	open := e.openTradeAt(key)
	if open == nil {
		return nil
	}
	return []domain.Trade{e.close(*open)}
}

// SquareOffAll closes every open trade in one batch, all at the same shared
// execution price (the current tick). Returns the square-off trades created.
func (e *Engine) SquareOffAll() []domain.Trade {
	opens := e.openTrades()
	var closed []domain.Trade
	for _, t := range opens {
		closed = append(closed, e.close(t))
	}
	return closed
}

func (e *Engine) close(open domain.Trade) domain.Trade {
	sq := domain.Trade{
		ID:              e.newID(),
		Timestamp:       e.now(),
		Side:            open.Side.Opposite(),
		Qty:             open.Qty,
		TargetPrice:     open.TargetPrice,
		ExecPrice:       e.book.LastPrice,
		IsSquareOff:     true,
		OriginalTradeID: open.ID,
	}
	e.trades = append(e.trades, sq)
	e.logger.Info("position squared off",
		slog.Float64("target", domain.FromMicros(open.TargetPrice)),
		slog.Float64("exec", domain.FromMicros(sq.ExecPrice)),
		slog.String("side", string(sq.Side)),
	)
	return sq
}

// openTrades returns every open trade in log order.
func (e *Engine) openTrades() []domain.Trade {
	closed := e.closedSet()
	var opens []domain.Trade
	for _, t := range e.trades {
		if t.IsSquareOff {
			continue
		}
		if _, done := closed[t.ID]; done {
			continue
		}
		opens = append(opens, t)
	}
	return opens
}

// OpenCount returns the number of open positions.
func (e *Engine) OpenCount() int {
	return len(e.openTrades())
}

// Trades returns a copy of the full trade log in append order.
func (e *Engine) Trades() []domain.Trade {
	out := make([]domain.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// Positions pairs every opening trade with its square-off, if any, ordered by
// open-trade time.
func (e *Engine) Positions() []domain.Position {
	closeByOrig := make(map[string]domain.Trade)
	for _, t := range e.trades {
		if t.IsSquareOff {
			closeByOrig[t.OriginalTradeID] = t
		}
	}
	var positions []domain.Position
	for _, t := range e.trades {
		if t.IsSquareOff {
			continue
		}
		pos := domain.Position{Open: t}
		if c, ok := closeByOrig[t.ID]; ok {
			cc := c
			pos.Close = &cc
		}
		positions = append(positions, pos)
	}
	return positions
}

// TotalPnL recomputes the aggregate profit and loss in micros on demand:
// realized legs from closed pairs plus unrealized legs marked at the current
// tick price. Never cached, since the unrealized part moves with every tick.
func (e *Engine) TotalPnL() int64 {
	mark := e.book.LastPrice
	var total int64
	for _, pos := range e.Positions() {
		total += pos.PnL(mark)
	}
	return total
}

// armedEntries returns the armed mapping as a list sorted by price ascending,
// the layout used by the persisted state record.
func (e *Engine) armedEntries() []domain.ArmedEntry {
	entries := make([]domain.ArmedEntry, 0, len(e.armed))
	for price, intent := range e.armed {
		entries = append(entries, domain.ArmedEntry{Price: price, Intent: intent})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Price < entries[j].Price })
	return entries
}
