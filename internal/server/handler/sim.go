package handler

import (
	"log/slog"
	"net/http"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/market"
)

// SimHandler controls the simulated price source and serves its history for
// the chart view.
type SimHandler struct {
	sim    *market.Simulator
	store  domain.StateStore // may be nil
	logger *slog.Logger
}

// NewSimHandler creates a SimHandler. The state store is optional; when set,
// a reset also drops the saved engine snapshot so a restart does not resurrect
// pre-reset state.
func NewSimHandler(sim *market.Simulator, store domain.StateStore, logger *slog.Logger) *SimHandler {
	return &SimHandler{
		sim:    sim,
		store:  store,
		logger: logger,
	}
}

// historyResponse wraps the price history response.
type historyResponse struct {
	Points []market.PricePoint `json:"points"`
}

// GetHistory returns the bounded recent price history, oldest first.
// GET /api/sim/history
func (h *SimHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	points := h.sim.History()
	if points == nil {
		points = []market.PricePoint{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Points: points})
}

// GetStatus reports whether the walk is advancing and the current price.
// GET /api/sim
func (h *SimHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"running": h.sim.Running(),
		"price":   h.sim.Price(),
	})
}

// Pause freezes the price walk. Ticks keep firing but the price holds.
// POST /api/sim/pause
func (h *SimHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.sim.Pause()
	h.logger.Info("handler: simulator paused")
	writeJSON(w, http.StatusOK, map[string]any{"running": false})
}

// Resume restarts a paused price walk.
// POST /api/sim/resume
func (h *SimHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.sim.Resume()
	h.logger.Info("handler: simulator resumed")
	writeJSON(w, http.StatusOK, map[string]any{"running": true})
}

// resetRequest is the body for the reset endpoint.
type resetRequest struct {
	Price float64 `json:"price"`
}

// Reset restarts the walk at the given price, clears the history and drops
// any saved engine snapshot.
// POST /api/sim/reset
func (h *SimHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	h.sim.Reset(req.Price)
	if h.store != nil {
		if err := h.store.Clear(r.Context()); err != nil {
			h.logger.Warn("handler: clearing saved state failed", slog.String("error", err.Error()))
		}
	}
	h.logger.Info("handler: simulator reset", slog.Float64("price", req.Price))
	writeJSON(w, http.StatusOK, map[string]any{"price": req.Price})
}
