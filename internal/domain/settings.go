package domain

// LadderMode selects the candidate-price generation algorithm.
type LadderMode string

const (
	LadderLTP       LadderMode = "LTP"
	LadderDepth     LadderMode = "DEPTH"
	LadderLiquidity LadderMode = "LIQUIDITY"
)

// Valid reports whether m is a known ladder mode.
func (m LadderMode) Valid() bool {
	switch m {
	case LadderLTP, LadderDepth, LadderLiquidity:
		return true
	}
	return false
}

// Settings holds the user-tunable trading parameters. Mutations go through
// the engine's setter operations only; any change that affects ladder shape
// forces a ladder regeneration.
type Settings struct {
	Side           Side       `json:"side"`
	Qty            int64      `json:"qty"`
	Mode           LadderMode `json:"mode"`
	LevelsPerSide  int        `json:"levels_per_side"`
	TickSize       int64      `json:"tick_size"` // micros
	AutoRecalc     bool       `json:"auto_recalc"`
	StepMultiplier float64    `json:"step_multiplier"`
	// Thresholds are the ascending cumulative-quantity levels used by the
	// liquidity ladder to pick impact prices.
	Thresholds []int64 `json:"thresholds"`
}
