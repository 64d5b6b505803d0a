package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/service"
)

// SessionHandler serves the session archive endpoint. A nil archiver
// disables it with 503 rather than a missing route.
type SessionHandler struct {
	svc       *service.EngineService
	archiver  domain.SessionArchiver
	sessionID string
	startedAt time.Time
	logger    *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc *service.EngineService, archiver domain.SessionArchiver, sessionID string, startedAt time.Time, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		svc:       svc,
		archiver:  archiver,
		sessionID: sessionID,
		startedAt: startedAt,
		logger:    logger,
	}
}

// Archive serializes the session so far and writes it to object storage.
// POST /api/session/archive
func (h *SessionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		writeError(w, http.StatusServiceUnavailable, "session archival is not configured")
		return
	}

	rec := h.svc.Snapshot()
	pnl := h.svc.PnL()
	arch := domain.SessionArchive{
		SessionID: h.sessionID + "-" + time.Now().UTC().Format("20060102T150405Z"),
		StartedAt: h.startedAt.Format(time.RFC3339),
		EndedAt:   time.Now().UTC().Format(time.RFC3339),
		Settings:  rec.Settings,
		Trades:    rec.Trades,
		LastPrice: domain.ToMicros(pnl.MarkPrice),
		TotalPnL:  domain.ToMicros(pnl.Total),
	}

	key, err := h.archiver.Archive(r.Context(), arch)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: session archive failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to archive session")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"key":    key,
		"trades": len(arch.Trades),
	})
}
