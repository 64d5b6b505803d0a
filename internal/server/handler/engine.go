package handler

import (
	"log/slog"
	"net/http"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/service"
)

// EngineHandler serves the ladder, order and trade endpoints. All mutations
// go through the engine service, which serializes them against the tick loop.
type EngineHandler struct {
	svc    *service.EngineService
	logger *slog.Logger
}

// NewEngineHandler creates an EngineHandler with the given service and logger.
func NewEngineHandler(svc *service.EngineService, logger *slog.Logger) *EngineHandler {
	return &EngineHandler{
		svc:    svc,
		logger: logger,
	}
}

// ladderResponse wraps the ladder view.
type ladderResponse struct {
	Levels []service.LadderLevel `json:"levels"`
}

// GetLadder returns the current candidate prices, annotated with their block
// states, best first.
// GET /api/ladder
func (h *EngineHandler) GetLadder(w http.ResponseWriter, r *http.Request) {
	levels := h.svc.Ladder()
	if levels == nil {
		levels = []service.LadderLevel{}
	}
	writeJSON(w, http.StatusOK, ladderResponse{Levels: levels})
}

// priceRequest is the body shared by arm/cancel/square-off endpoints.
type priceRequest struct {
	Price float64 `json:"price"`
}

// Arm registers a conditional order at the given price using the configured
// side and quantity.
// POST /api/orders/arm
func (h *EngineHandler) Arm(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	h.svc.Arm(req.Price)
	armed, _ := h.svc.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "armed",
		"price":       req.Price,
		"armed_count": armed,
	})
}

// RequestCancel stages a cancel of the order at the given price. The cancel
// takes effect only after confirmation.
// POST /api/orders/cancel
func (h *EngineHandler) RequestCancel(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	h.svc.RequestCancel(req.Price)
	writeJSON(w, http.StatusOK, h.svc.Dialog())
}

// RequestCancelAll stages a cancel of every armed order.
// POST /api/orders/cancel-all
func (h *EngineHandler) RequestCancelAll(w http.ResponseWriter, r *http.Request) {
	h.svc.RequestCancelAll()
	writeJSON(w, http.StatusOK, h.svc.Dialog())
}

// RequestSquareOff stages a square-off of the open position entered at the
// given price.
// POST /api/positions/squareoff
func (h *EngineHandler) RequestSquareOff(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	h.svc.RequestSquareOff(req.Price)
	writeJSON(w, http.StatusOK, h.svc.Dialog())
}

// RequestSquareOffAll stages a square-off of every open position.
// POST /api/positions/squareoff-all
func (h *EngineHandler) RequestSquareOffAll(w http.ResponseWriter, r *http.Request) {
	h.svc.RequestSquareOffAll()
	writeJSON(w, http.StatusOK, h.svc.Dialog())
}

// GetDialog returns the confirmation-dialog state.
// GET /api/dialog
func (h *EngineHandler) GetDialog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Dialog())
}

// Confirm commits the staged destructive command.
// POST /api/dialog/confirm
func (h *EngineHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Confirm() {
		writeError(w, http.StatusConflict, "no pending command to confirm")
		return
	}
	armed, open := h.svc.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "confirmed",
		"armed_count": armed,
		"open_count":  open,
	})
}

// CloseDialog discards the staged command without executing it.
// POST /api/dialog/close
func (h *EngineHandler) CloseDialog(w http.ResponseWriter, r *http.Request) {
	h.svc.CloseDialog()
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// Regenerate forces an immediate ladder rebuild, bypassing the throttle.
// POST /api/ladder/regenerate
func (h *EngineHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	h.svc.Regenerate()
	writeJSON(w, http.StatusOK, ladderResponse{Levels: h.svc.Ladder()})
}

// listTradesResponse wraps the trade log response.
type listTradesResponse struct {
	Trades []domain.Trade `json:"trades"`
}

// ListTrades returns the full in-session trade log, oldest first.
// GET /api/trades
func (h *EngineHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades := h.svc.Trades()
	if trades == nil {
		trades = []domain.Trade{}
	}
	writeJSON(w, http.StatusOK, listTradesResponse{Trades: trades})
}

// listPositionsResponse wraps the positions response.
type listPositionsResponse struct {
	Positions []domain.Position `json:"positions"`
}

// ListPositions returns open and closed entry/exit pairs.
// GET /api/positions
func (h *EngineHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions := h.svc.Positions()
	if positions == nil {
		positions = []domain.Position{}
	}
	writeJSON(w, http.StatusOK, listPositionsResponse{Positions: positions})
}

// GetPnL returns realized, unrealized and total profit-and-loss at the
// current mark price.
// GET /api/pnl
func (h *EngineHandler) GetPnL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.PnL())
}

// GetMarket returns the latest synthetic order-book snapshot.
// GET /api/market
func (h *EngineHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Market())
}
