package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quantline/ladderbot/internal/domain"
)

// JournalHandler serves archived trades from the durable journal. A nil
// journal disables it with 503 rather than a missing route.
type JournalHandler struct {
	journal domain.TradeJournal
	logger  *slog.Logger
}

// NewJournalHandler creates a JournalHandler.
func NewJournalHandler(journal domain.TradeJournal, logger *slog.Logger) *JournalHandler {
	return &JournalHandler{
		journal: journal,
		logger:  logger,
	}
}

// defaultJournalWindow bounds the query when the caller gives no since param.
const defaultJournalWindow = 24 * time.Hour

// journalResponse wraps the archived-trade listing.
type journalResponse struct {
	Since  string         `json:"since"`
	Trades []domain.Trade `json:"trades"`
}

// ListSince returns archived trades at or after the given time.
// GET /api/journal?since=RFC3339 (default: last 24h)
func (h *JournalHandler) ListSince(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "trade journal is not configured")
		return
	}

	since := time.Now().UTC().Add(-defaultJournalWindow)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since parameter: "+err.Error())
			return
		}
		since = parsed
	}

	trades, err := h.journal.ListSince(r.Context(), since)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: journal query failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read trade journal")
		return
	}
	if trades == nil {
		trades = []domain.Trade{}
	}

	writeJSON(w, http.StatusOK, journalResponse{
		Since:  since.Format(time.RFC3339),
		Trades: trades,
	})
}
