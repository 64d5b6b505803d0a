package handler

import (
	"log/slog"
	"net/http"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/service"
)

// SettingsHandler serves the runtime-settings endpoints.
type SettingsHandler struct {
	svc    *service.EngineService
	logger *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(svc *service.EngineService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		svc:    svc,
		logger: logger,
	}
}

// GetSettings returns the current engine settings.
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Settings())
}

// UpdateSettings applies a partial settings update. Fields absent from the
// body are left untouched; changes that affect ladder shape trigger an
// immediate regeneration.
// PATCH /api/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch service.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if patch.Side != nil && !patch.Side.Valid() {
		writeError(w, http.StatusBadRequest, "side must be BUY or SELL")
		return
	}
	if patch.Mode != nil && !patch.Mode.Valid() {
		writeError(w, http.StatusBadRequest, "mode must be ltp, depth or liquidity")
		return
	}
	if patch.Qty != nil && *patch.Qty <= 0 {
		writeError(w, http.StatusBadRequest, "qty must be positive")
		return
	}
	if patch.LevelsPerSide != nil && *patch.LevelsPerSide <= 0 {
		writeError(w, http.StatusBadRequest, "levels_per_side must be positive")
		return
	}
	if patch.TickSize != nil && *patch.TickSize <= 0 {
		writeError(w, http.StatusBadRequest, "tick_size must be positive")
		return
	}
	if patch.StepMultiplier != nil && *patch.StepMultiplier <= 0 {
		writeError(w, http.StatusBadRequest, "step_multiplier must be positive")
		return
	}
	for _, t := range patch.Thresholds {
		if t <= 0 {
			writeError(w, http.StatusBadRequest, "thresholds must be positive")
			return
		}
	}

	updated := h.svc.UpdateSettings(patch)
	h.logger.Info("handler: settings updated",
		slog.String("side", string(updated.Side)),
		slog.String("mode", string(updated.Mode)),
		slog.Int("levels_per_side", updated.LevelsPerSide),
	)
	writeJSON(w, http.StatusOK, updated)
}

// ToggleSide flips the configured side between BUY and SELL.
// POST /api/settings/toggle-side
func (h *SettingsHandler) ToggleSide(w http.ResponseWriter, r *http.Request) {
	cur := h.svc.Settings().Side
	next := cur.Opposite()
	updated := h.svc.UpdateSettings(service.SettingsPatch{Side: &next})
	writeJSON(w, http.StatusOK, map[string]domain.Side{"side": updated.Side})
}
