// Package engine implements the tick-driven order-arming core: the armed
// order mapping, the trigger pass, the trade ledger with P&L, the throttled
// ladder regeneration, and the confirmation gateway for destructive
// mutations.
//
// The engine is single-owner by contract: it performs no locking of its own
// and expects exactly one logical caller to serialize ticks and mutations
// (see the service package).
package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/market"
)

const (
	// defaultMinRecalcInterval caps ladder regeneration at ~5 per second.
	defaultMinRecalcInterval = 200 * time.Millisecond
	// recalcDriftTicks is the fixed multiplier in the price-drift condition:
	// drift must reach tickSize * recalcDriftTicks * StepMultiplier.
	recalcDriftTicks = 2
)

// Engine owns the armed-order mapping and the trade log. Both are mutated
// only through its methods.
type Engine struct {
	settings domain.Settings
	builder  *market.Builder
	logger   *slog.Logger

	book     domain.MarketSnapshot
	haveBook bool

	ladder []int64 // descending micros
	armed  map[int64]domain.OrderIntent
	trades []domain.Trade

	dialog domain.DialogState

	lastRecalcPrice   int64
	lastRecalcAt      time.Time
	minRecalcInterval time.Duration

	now   func() time.Time
	newID func() string
}

// New creates an Engine with the given settings and snapshot builder.
func New(settings domain.Settings, builder *market.Builder, logger *slog.Logger) *Engine {
	return &Engine{
		settings:          settings,
		builder:           builder,
		logger:            logger.With(slog.String("component", "engine")),
		armed:             make(map[int64]domain.OrderIntent),
		minRecalcInterval: defaultMinRecalcInterval,
		now:               time.Now,
		newID:             uuid.NewString,
	}
}

// Advance processes one tick to completion: snapshot update, trigger pass,
// then throttled ladder regeneration when auto-recalc is on. It returns the
// trades executed by this tick, if any.
func (e *Engine) Advance(price int64) []domain.Trade {
	var prev *domain.MarketSnapshot
	if e.haveBook {
		prev = &e.book
	}
	e.book = e.builder.Next(price, prev)
	e.haveBook = true

	executed := e.checkTriggers(price)

	if len(e.ladder) == 0 {
		e.Regenerate(true)
	} else if e.settings.AutoRecalc {
		e.Regenerate(false)
	}
	return executed
}

// checkTriggers evaluates every armed order against the tick price. All
// evaluations observe the same snapshot of the armed mapping: trades created
// here cannot arm or cancel anything visible within the same pass. A BUY
// triggers when the tick is at or below its target, a SELL at or above.
func (e *Engine) checkTriggers(price int64) []domain.Trade {
	var executed []domain.Trade
	for target, intent := range e.armed {
		hit := intent.Side == domain.SideBuy && price <= target ||
			intent.Side == domain.SideSell && price >= target
		if !hit {
			continue
		}
		executed = append(executed, domain.Trade{
			ID:          e.newID(),
			Timestamp:   e.now(),
			Side:        intent.Side,
			Qty:         intent.Qty,
			TargetPrice: target,
			ExecPrice:   price,
		})
	}
	for _, t := range executed {
		delete(e.armed, t.TargetPrice)
		e.trades = append(e.trades, t)
		e.logger.Info("order triggered",
			slog.String("side", string(t.Side)),
			slog.Float64("target", domain.FromMicros(t.TargetPrice)),
			slog.Float64("exec", domain.FromMicros(t.ExecPrice)),
			slog.Int64("qty", t.Qty),
		)
	}
	return executed
}

// Arm registers a conditional order at the tick-rounded price. Arming a price
// that already holds an armed order is a silent no-op.
func (e *Engine) Arm(price int64, side domain.Side, qty int64) {
	if price <= 0 || qty <= 0 || !side.Valid() {
		return
	}
	key := domain.RoundToTick(price, e.settings.TickSize)
	if _, exists := e.armed[key]; exists {
		return
	}
	e.armed[key] = domain.OrderIntent{Side: side, Qty: qty, ArmedAt: e.now()}
	e.logger.Debug("order armed",
		slog.Float64("price", domain.FromMicros(key)),
		slog.String("side", string(side)),
	)
}

// Cancel removes the armed order at price, if any. Cancelling a non-armed
// price is a silent no-op.
func (e *Engine) Cancel(price int64) {
	key := domain.RoundToTick(price, e.settings.TickSize)
	if _, exists := e.armed[key]; !exists {
		return
	}
	delete(e.armed, key)
	e.logger.Debug("order cancelled", slog.Float64("price", domain.FromMicros(key)))
}

// CancelAll removes every armed order.
func (e *Engine) CancelAll() {
	if len(e.armed) == 0 {
		return
	}
	e.logger.Info("all armed orders cancelled", slog.Int("count", len(e.armed)))
	e.armed = make(map[int64]domain.OrderIntent)
}

// BlockStateAt reports the presentation state of a price level: ARMED while
// an intent rests there, EXECUTED while a triggered trade at that target is
// still open, IDLE otherwise.
func (e *Engine) BlockStateAt(price int64) domain.BlockState {
	key := domain.RoundToTick(price, e.settings.TickSize)
	if _, armed := e.armed[key]; armed {
		return domain.BlockArmed
	}
	if e.openTradeAt(key) != nil {
		return domain.BlockExecuted
	}
	return domain.BlockIdle
}

// Ladder returns a copy of the current candidate prices, descending.
func (e *Engine) Ladder() []int64 {
	out := make([]int64, len(e.ladder))
	copy(out, e.ladder)
	return out
}

// Armed returns the armed mapping as a price-sorted list of entries.
func (e *Engine) Armed() []domain.ArmedEntry {
	return e.armedEntries()
}

// ArmedCount returns the number of currently armed orders.
func (e *Engine) ArmedCount() int {
	return len(e.armed)
}

// Book returns the latest market snapshot.
func (e *Engine) Book() domain.MarketSnapshot {
	return e.book
}

// LastPrice returns the latest tick price in micros.
func (e *Engine) LastPrice() int64 {
	return e.book.LastPrice
}

// Settings returns the current settings.
func (e *Engine) Settings() domain.Settings {
	return e.settings
}
