package engine

import "github.com/quantline/ladderbot/internal/domain"

// Settings mutators. Changes that alter ladder shape force an immediate
// regeneration; the reconcile step there cancels armed orders that fell off
// the redrawn grid.

// SetSide switches the trading side.
func (e *Engine) SetSide(side domain.Side) {
	if !side.Valid() || side == e.settings.Side {
		return
	}
	e.settings.Side = side
	e.Regenerate(true)
}

// ToggleSide flips BUY/SELL.
func (e *Engine) ToggleSide() {
	e.SetSide(e.settings.Side.Opposite())
}

// SetQty sets the quantity used for newly armed orders. Does not touch the
// ladder or already-armed intents.
func (e *Engine) SetQty(qty int64) {
	if qty >= 1 {
		e.settings.Qty = qty
	}
}

// SetMode switches the ladder algorithm.
func (e *Engine) SetMode(mode domain.LadderMode) {
	if !mode.Valid() || mode == e.settings.Mode {
		return
	}
	e.settings.Mode = mode
	e.Regenerate(true)
}

// SetLevelsPerSide changes the ladder half-width.
func (e *Engine) SetLevelsPerSide(n int) {
	if n < 1 || n == e.settings.LevelsPerSide {
		return
	}
	e.settings.LevelsPerSide = n
	e.Regenerate(true)
}

// SetTickSize changes the minimum price increment.
func (e *Engine) SetTickSize(tick int64) {
	if tick <= 0 || tick == e.settings.TickSize {
		return
	}
	e.settings.TickSize = tick
	e.builder.SetTickSize(tick)
	e.Regenerate(true)
}

// SetAutoRecalc toggles throttled regeneration on tick drift.
func (e *Engine) SetAutoRecalc(on bool) {
	e.settings.AutoRecalc = on
}

// SetStepMultiplier scales the drift threshold of the recalculation throttle.
func (e *Engine) SetStepMultiplier(m float64) {
	if m > 0 {
		e.settings.StepMultiplier = m
	}
}

// SetThresholds replaces the liquidity-ladder quantity thresholds.
func (e *Engine) SetThresholds(ts []int64) {
	if len(ts) == 0 {
		return
	}
	e.settings.Thresholds = append([]int64(nil), ts...)
	if e.settings.Mode == domain.LadderLiquidity {
		e.Regenerate(true)
	}
}
