package service

import (
	"github.com/quantline/ladderbot/internal/domain"
)

// LadderLevel is one ladder row as the presentation layer sees it.
type LadderLevel struct {
	Price float64           `json:"price"`
	State domain.BlockState `json:"state"`
}

// Ladder returns the current candidate prices, descending, each annotated
// with its block state.
func (s *EngineService) Ladder() []LadderLevel {
	s.mu.Lock()
	defer s.mu.Unlock()

	prices := s.eng.Ladder()
	out := make([]LadderLevel, 0, len(prices))
	for _, p := range prices {
		out = append(out, LadderLevel{
			Price: domain.FromMicros(p),
			State: s.eng.BlockStateAt(p),
		})
	}
	return out
}

// Trades returns the full trade log.
func (s *EngineService) Trades() []domain.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Trades()
}

// Positions returns all open/closed trade pairs.
func (s *EngineService) Positions() []domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Positions()
}

// PnLView aggregates the on-demand profit-and-loss numbers.
type PnLView struct {
	Total      float64 `json:"total"`
	Realized   float64 `json:"realized"`
	Unrealized float64 `json:"unrealized"`
	MarkPrice  float64 `json:"mark_price"`
}

// PnL recomputes total, realized and unrealized P&L at the current tick.
func (s *EngineService) PnL() PnLView {
	s.mu.Lock()
	defer s.mu.Unlock()

	mark := s.eng.LastPrice()
	var realized, unrealized int64
	for _, pos := range s.eng.Positions() {
		if pos.Closed() {
			realized += pos.PnL(mark)
		} else {
			unrealized += pos.PnL(mark)
		}
	}
	return PnLView{
		Total:      domain.FromMicros(realized + unrealized),
		Realized:   domain.FromMicros(realized),
		Unrealized: domain.FromMicros(unrealized),
		MarkPrice:  domain.FromMicros(mark),
	}
}

// Dialog returns the confirmation-dialog state.
func (s *EngineService) Dialog() domain.DialogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Dialog()
}

// Market returns the latest synthetic market snapshot.
func (s *EngineService) Market() domain.MarketSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Book()
}

// Settings returns the current settings.
func (s *EngineService) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Settings()
}

// SettingsPatch carries a partial settings update; nil fields are left
// untouched. Mutations that affect ladder shape regenerate the ladder
// inside the engine.
type SettingsPatch struct {
	Side           *domain.Side       `json:"side,omitempty"`
	Qty            *int64             `json:"qty,omitempty"`
	Mode           *domain.LadderMode `json:"mode,omitempty"`
	LevelsPerSide  *int               `json:"levels_per_side,omitempty"`
	TickSize       *float64           `json:"tick_size,omitempty"`
	AutoRecalc     *bool              `json:"auto_recalc,omitempty"`
	StepMultiplier *float64           `json:"step_multiplier,omitempty"`
	Thresholds     []int64            `json:"thresholds,omitempty"`
}

// UpdateSettings applies a patch field by field through the engine's
// mutators.
func (s *EngineService) UpdateSettings(p SettingsPatch) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Side != nil {
		s.eng.SetSide(*p.Side)
	}
	if p.Qty != nil {
		s.eng.SetQty(*p.Qty)
	}
	if p.Mode != nil {
		s.eng.SetMode(*p.Mode)
	}
	if p.LevelsPerSide != nil {
		s.eng.SetLevelsPerSide(*p.LevelsPerSide)
	}
	if p.TickSize != nil {
		s.eng.SetTickSize(domain.ToMicros(*p.TickSize))
	}
	if p.AutoRecalc != nil {
		s.eng.SetAutoRecalc(*p.AutoRecalc)
	}
	if p.StepMultiplier != nil {
		s.eng.SetStepMultiplier(*p.StepMultiplier)
	}
	if len(p.Thresholds) > 0 {
		s.eng.SetThresholds(p.Thresholds)
	}
	return s.eng.Settings()
}

// Counts returns the armed and open counts.
func (s *EngineService) Counts() (armed, open int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ArmedCount(), s.eng.OpenCount()
}
