// Package server assembles the HTTP + WebSocket API over the engine.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quantline/ladderbot/internal/server/handler"
	"github.com/quantline/ladderbot/internal/server/middleware"
	"github.com/quantline/ladderbot/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server registers.
type Handlers struct {
	Health   *handler.HealthHandler
	Engine   *handler.EngineHandler
	Settings *handler.SettingsHandler
	Sim      *handler.SimHandler
	Session  *handler.SessionHandler
	Journal  *handler.JournalHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered. It wires up the
// middleware chain (logging, CORS, auth) and attaches the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Ladder.
	mux.HandleFunc("GET /api/ladder", handlers.Engine.GetLadder)
	mux.HandleFunc("POST /api/ladder/regenerate", handlers.Engine.Regenerate)

	// Orders.
	mux.HandleFunc("POST /api/orders/arm", handlers.Engine.Arm)
	mux.HandleFunc("POST /api/orders/cancel", handlers.Engine.RequestCancel)
	mux.HandleFunc("POST /api/orders/cancel-all", handlers.Engine.RequestCancelAll)

	// Positions and trades.
	mux.HandleFunc("GET /api/positions", handlers.Engine.ListPositions)
	mux.HandleFunc("POST /api/positions/squareoff", handlers.Engine.RequestSquareOff)
	mux.HandleFunc("POST /api/positions/squareoff-all", handlers.Engine.RequestSquareOffAll)
	mux.HandleFunc("GET /api/trades", handlers.Engine.ListTrades)
	mux.HandleFunc("GET /api/pnl", handlers.Engine.GetPnL)

	// Confirmation dialog.
	mux.HandleFunc("GET /api/dialog", handlers.Engine.GetDialog)
	mux.HandleFunc("POST /api/dialog/confirm", handlers.Engine.Confirm)
	mux.HandleFunc("POST /api/dialog/close", handlers.Engine.CloseDialog)

	// Market data.
	mux.HandleFunc("GET /api/market", handlers.Engine.GetMarket)

	// Settings.
	mux.HandleFunc("GET /api/settings", handlers.Settings.GetSettings)
	mux.HandleFunc("PATCH /api/settings", handlers.Settings.UpdateSettings)
	mux.HandleFunc("POST /api/settings/toggle-side", handlers.Settings.ToggleSide)

	// Simulator control.
	mux.HandleFunc("GET /api/sim", handlers.Sim.GetStatus)
	mux.HandleFunc("GET /api/sim/history", handlers.Sim.GetHistory)
	mux.HandleFunc("POST /api/sim/pause", handlers.Sim.Pause)
	mux.HandleFunc("POST /api/sim/resume", handlers.Sim.Resume)
	mux.HandleFunc("POST /api/sim/reset", handlers.Sim.Reset)

	// Session archive.
	mux.HandleFunc("POST /api/session/archive", handlers.Session.Archive)

	// Durable trade journal.
	mux.HandleFunc("GET /api/journal", handlers.Journal.ListSince)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware returns middleware that sets CORS headers for the allowed
// origins. If no origins are specified, all origins are allowed.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
