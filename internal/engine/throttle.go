package engine

import (
	"log/slog"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/ladder"
)

// ShouldRecalculate reports whether an unforced regeneration may run: enough
// time must have elapsed since the last one AND the price must have drifted
// at least tickSize * recalcDriftTicks * StepMultiplier from the price the
// ladder was last built at.
func (e *Engine) ShouldRecalculate() bool {
	if e.now().Sub(e.lastRecalcAt) < e.minRecalcInterval {
		return false
	}
	drift := e.book.LastPrice - e.lastRecalcPrice
	if drift < 0 {
		drift = -drift
	}
	threshold := float64(e.settings.TickSize) * recalcDriftTicks * e.settings.StepMultiplier
	return float64(drift) >= threshold
}

// Regenerate rebuilds the ladder from the current snapshot. When force is
// false the throttle gates execution. On execution it reconciles armed
// orders: any order whose price fell off the new ladder is cancelled without
// producing a trade, and the last-recalculation price and time are updated
// unconditionally. Returns whether the ladder was rebuilt.
func (e *Engine) Regenerate(force bool) bool {
	if !force && !e.ShouldRecalculate() {
		return false
	}

	e.ladder = ladder.Generate(e.book, ladder.Config{
		LevelsPerSide: e.settings.LevelsPerSide,
		TickSize:      e.settings.TickSize,
		Thresholds:    e.settings.Thresholds,
	}, e.settings.Side, e.settings.Mode)

	onLadder := make(map[int64]struct{}, len(e.ladder))
	for _, p := range e.ladder {
		onLadder[p] = struct{}{}
	}
	for price := range e.armed {
		if _, ok := onLadder[price]; !ok {
			delete(e.armed, price)
			e.logger.Info("armed order dropped off regenerated ladder",
				slog.Float64("price", domain.FromMicros(price)),
			)
		}
	}

	e.lastRecalcPrice = e.book.LastPrice
	e.lastRecalcAt = e.now()
	return true
}
