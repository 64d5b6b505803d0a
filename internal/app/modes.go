package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/engine"
	"github.com/quantline/ladderbot/internal/feed"
	"github.com/quantline/ladderbot/internal/market"
	"github.com/quantline/ladderbot/internal/server"
	"github.com/quantline/ladderbot/internal/server/handler"
	"github.com/quantline/ladderbot/internal/server/ws"
	"github.com/quantline/ladderbot/internal/service"
)

// core bundles the engine stack shared by all modes.
type core struct {
	sim    *market.Simulator
	svc    *service.EngineService
	driver *feed.Driver
}

// buildCore constructs the simulator, engine, service and tick driver. hub
// may be nil for modes without a streaming surface.
func (a *App) buildCore(deps *Dependencies, hub feed.Broadcaster) *core {
	seed := a.cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a.logger.Info("seeding simulation", slog.Int64("seed", seed))

	settings := a.cfg.Engine.Settings()
	builder := market.NewBuilder(settings.TickSize, rand.New(rand.NewSource(seed)))
	eng := engine.New(settings, builder, a.logger)
	svc := service.New(eng, a.logger)

	sim := market.NewSimulator(market.SimConfig{
		InitialPrice:    a.cfg.Sim.InitialPrice,
		Volatility:      a.cfg.Sim.Volatility,
		SpikeChance:     a.cfg.Sim.SpikeChance,
		SpikeMultiplier: a.cfg.Sim.SpikeMultiplier,
		TrendChance:     a.cfg.Sim.TrendChance,
		HistoryCap:      a.cfg.Sim.HistoryCap,
	}, rand.New(rand.NewSource(seed+1)))

	driver := feed.NewDriver(feed.Config{
		Interval:  a.cfg.Sim.TickInterval(),
		SaveEvery: a.cfg.Sim.SaveEveryTicks,
	}, sim, svc, deps.StateStore, hub, a.logger)

	return &core{
		sim:    sim,
		svc:    svc,
		driver: driver,
	}
}

// SimMode runs the full simulator: tick driver, WebSocket hub, HTTP API and
// whatever persistence adapters are wired.
func (a *App) SimMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting sim mode")

	startedAt := time.Now().UTC()
	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		SessionID: a.cfg.Session,
		StartedAt: startedAt,
	})
	c := a.buildCore(deps, hub)

	g.Go(func() error {
		return hub.Run(ctx)
	})

	if deps.Journal != nil {
		flusher := service.NewJournalFlusher(deps.Journal, c.svc, a.logger)
		g.Go(func() error {
			return flusher.Run(ctx)
		})
	}

	c.driver.Restore(ctx)
	g.Go(func() error {
		return c.driver.Run(ctx)
	})

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, server.Handlers{
		Health:   handler.NewHealthHandler(a.cfg.Mode, a.cfg.Session, startedAt, a.logger),
		Engine:   handler.NewEngineHandler(c.svc, a.logger),
		Settings: handler.NewSettingsHandler(c.svc, a.logger),
		Sim:      handler.NewSimHandler(c.sim, deps.StateStore, a.logger),
		Session:  handler.NewSessionHandler(c.svc, deps.Archiver, a.cfg.Session, startedAt, a.logger),
		Journal:  handler.NewJournalHandler(deps.Journal, a.logger),
	}, hub, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	err := g.Wait()
	a.archiveSession(deps, c, startedAt)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HeadlessMode runs the tick loop and persistence only, with no HTTP or
// WebSocket surface. Useful for soak runs and journal backfills.
func (a *App) HeadlessMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting headless mode")

	startedAt := time.Now().UTC()
	g, ctx := errgroup.WithContext(ctx)

	c := a.buildCore(deps, nil)

	if deps.Journal != nil {
		flusher := service.NewJournalFlusher(deps.Journal, c.svc, a.logger)
		g.Go(func() error {
			return flusher.Run(ctx)
		})
	}

	c.driver.Restore(ctx)
	g.Go(func() error {
		return c.driver.Run(ctx)
	})

	err := g.Wait()
	a.archiveSession(deps, c, startedAt)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// archiveSession writes the end-of-session record to object storage,
// best-effort. Runs after the tick loop has fully stopped.
func (a *App) archiveSession(deps *Dependencies, c *core, startedAt time.Time) {
	if deps.Archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec := c.svc.Snapshot()
	arch := domain.SessionArchive{
		SessionID: fmt.Sprintf("%s-%s", a.cfg.Session, startedAt.Format("20060102T150405Z")),
		StartedAt: startedAt.Format(time.RFC3339),
		EndedAt:   time.Now().UTC().Format(time.RFC3339),
		Settings:  rec.Settings,
		Trades:    rec.Trades,
		LastPrice: domain.ToMicros(c.sim.Price()),
		TotalPnL:  domain.ToMicros(c.svc.PnL().Total),
	}

	key, err := deps.Archiver.Archive(ctx, arch)
	if err != nil {
		a.logger.Warn("session archive failed", slog.String("error", err.Error()))
		return
	}
	a.logger.Info("session archived",
		slog.String("key", key),
		slog.Int("trades", len(arch.Trades)),
	)
}
