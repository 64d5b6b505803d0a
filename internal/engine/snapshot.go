package engine

import (
	"github.com/quantline/ladderbot/internal/domain"
)

// Snapshot captures the persistable engine state: the armed mapping as an
// explicit [price, intent] list, the trade log, and the settings.
func (e *Engine) Snapshot() domain.StateRecord {
	return domain.StateRecord{
		Armed:    e.armedEntries(),
		Trades:   e.Trades(),
		Settings: e.settings,
		SavedAt:  e.now(),
	}
}

// Restore replaces engine state from a previously saved record. The ladder
// is not part of the record; it is rebuilt on the next tick.
func (e *Engine) Restore(rec domain.StateRecord) {
	if rec.Settings.TickSize > 0 {
		e.settings = rec.Settings
		e.builder.SetTickSize(rec.Settings.TickSize)
	}
	e.armed = make(map[int64]domain.OrderIntent, len(rec.Armed))
	for _, entry := range rec.Armed {
		if entry.Price > 0 && entry.Intent.Qty > 0 && entry.Intent.Side.Valid() {
			e.armed[entry.Price] = entry.Intent
		}
	}
	e.trades = append([]domain.Trade(nil), rec.Trades...)
	e.ladder = nil
}
