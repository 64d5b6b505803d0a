// Package service exposes the engine to its callers behind a single mutex.
// Tick processing and user-initiated mutations are serialized here, never
// interleaved partially, so the engine itself stays lock-free and
// single-owner as its contract requires.
package service

import (
	"log/slog"
	"sync"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/engine"
)

// EngineService is the one logical owner of the engine. Every entry point
// takes the mutex for the full operation, and all views return copies.
type EngineService struct {
	mu     sync.Mutex
	eng    *engine.Engine
	logger *slog.Logger

	// executedCh, when set, receives trades produced by tick processing for
	// asynchronous journaling. Sends never block.
	executedCh chan<- domain.Trade
}

// New creates an EngineService owning eng.
func New(eng *engine.Engine, logger *slog.Logger) *EngineService {
	return &EngineService{
		eng:    eng,
		logger: logger.With(slog.String("component", "engine_service")),
	}
}

// SetJournalSink attaches a channel that receives executed trades for
// archival. Must be called before the tick loop starts.
func (s *EngineService) SetJournalSink(ch chan<- domain.Trade) {
	s.executedCh = ch
}

// TickResult is the per-tick summary broadcast to UI clients.
type TickResult struct {
	Price      float64        `json:"price"`
	PnL        float64        `json:"pnl"`
	ArmedCount int            `json:"armed_count"`
	OpenCount  int            `json:"open_count"`
	Executed   []domain.Trade `json:"executed,omitempty"`
}

// Tick runs one full tick pass: snapshot update, trigger check, throttled
// regeneration. The price is a display price; conversion to fixed-point
// happens here.
func (s *EngineService) Tick(price float64) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	executed := s.eng.Advance(domain.ToMicros(price))
	s.forward(executed)
	return TickResult{
		Price:      price,
		PnL:        domain.FromMicros(s.eng.TotalPnL()),
		ArmedCount: s.eng.ArmedCount(),
		OpenCount:  s.eng.OpenCount(),
		Executed:   executed,
	}
}

// Arm registers a conditional order at price using the currently configured
// side and quantity.
func (s *EngineService) Arm(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.eng.Settings()
	s.eng.Arm(domain.ToMicros(price), st.Side, st.Qty)
}

// RequestCancel stages a cancel for the confirmation gateway.
func (s *EngineService) RequestCancel(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.RequestCancel(domain.ToMicros(price))
}

// RequestCancelAll stages a bulk cancel.
func (s *EngineService) RequestCancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.RequestCancelAll()
}

// RequestSquareOff stages a square-off of the position at price.
func (s *EngineService) RequestSquareOff(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.RequestSquareOff(domain.ToMicros(price))
}

// RequestSquareOffAll stages a bulk square-off.
func (s *EngineService) RequestSquareOffAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.RequestSquareOffAll()
}

// Confirm commits the staged destructive command, if any. Square-off trades
// created by the command go to the journal sink like tick-executed ones.
func (s *EngineService) Confirm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	closed, ok := s.eng.ConfirmPending()
	s.forward(closed)
	return ok
}

// forward hands trades to the journal sink without ever blocking the caller.
func (s *EngineService) forward(trades []domain.Trade) {
	if s.executedCh == nil {
		return
	}
	for _, t := range trades {
		select {
		case s.executedCh <- t:
		default:
			s.logger.Warn("journal sink full, dropping trade", slog.String("trade_id", t.ID))
		}
	}
}

// CloseDialog discards the staged command without side effects.
func (s *EngineService) CloseDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.CloseDialog()
}

// Regenerate forces a ladder rebuild regardless of the throttle.
func (s *EngineService) Regenerate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.Regenerate(true)
}

// Snapshot captures the engine state for the persistence adapter.
func (s *EngineService) Snapshot() domain.StateRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Snapshot()
}

// Restore replaces engine state from a saved record.
func (s *EngineService) Restore(rec domain.StateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.Restore(rec)
	s.logger.Info("engine state restored",
		slog.Int("armed", len(rec.Armed)),
		slog.Int("trades", len(rec.Trades)),
	)
}
