// Package feed drives the engine: a periodic timer pulls the next simulated
// price and pushes it through one full tick pass. The timer is the only
// source of new input and its context is the only cancellation primitive; a
// tick pass in flight is never partially cancelled.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/quantline/ladderbot/internal/domain"
	"github.com/quantline/ladderbot/internal/market"
	"github.com/quantline/ladderbot/internal/service"
)

// Broadcaster pushes a frame to subscribed UI clients. The ws hub implements
// it; a nil Broadcaster disables streaming.
type Broadcaster interface {
	Broadcast(channel string, data []byte)
}

// Config tunes the tick loop.
type Config struct {
	Interval time.Duration // 20ms..200ms
	// SaveEvery persists a state snapshot every N ticks; 0 disables.
	SaveEvery int
}

// Driver owns the tick loop.
type Driver struct {
	cfg    Config
	sim    *market.Simulator
	svc    *service.EngineService
	store  domain.StateStore // may be nil
	hub    Broadcaster       // may be nil
	logger *slog.Logger
}

// NewDriver creates a Driver. store and hub are optional.
func NewDriver(cfg Config, sim *market.Simulator, svc *service.EngineService, store domain.StateStore, hub Broadcaster, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:    cfg,
		sim:    sim,
		svc:    svc,
		store:  store,
		hub:    hub,
		logger: logger.With(slog.String("component", "tick_driver")),
	}
}

// Restore loads any saved state record and applies it to the engine. Missing
// or stale state is not an error; the engine simply starts fresh.
func (d *Driver) Restore(ctx context.Context) {
	if d.store == nil {
		return
	}
	rec, err := d.store.Load(ctx)
	if err != nil {
		d.logger.Warn("state load failed, starting fresh", slog.String("error", err.Error()))
		return
	}
	if rec == nil {
		d.logger.Info("no saved state, starting fresh")
		return
	}
	d.svc.Restore(*rec)
}

// Run executes the tick loop until the context is cancelled. Each tick is
// processed to completion before the next fires.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	d.logger.Info("tick driver started",
		slog.Duration("interval", d.cfg.Interval),
		slog.Float64("price", d.sim.Price()),
	)
	defer d.logger.Info("tick driver stopped")

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			d.persist(context.Background())
			return ctx.Err()
		case now := <-ticker.C:
			if !d.sim.Running() {
				continue
			}
			price := d.sim.Next(now)
			res := d.svc.Tick(price)
			d.broadcast(res)

			ticks++
			if d.cfg.SaveEvery > 0 && ticks%d.cfg.SaveEvery == 0 {
				d.persist(ctx)
			}
		}
	}
}

func (d *Driver) broadcast(res service.TickResult) {
	if d.hub == nil {
		return
	}
	frame, err := json.Marshal(map[string]any{"type": "tick", "payload": res})
	if err != nil {
		return
	}
	d.hub.Broadcast("ticks", frame)

	if len(res.Executed) > 0 {
		frame, err := json.Marshal(map[string]any{"type": "trades", "payload": res.Executed})
		if err == nil {
			d.hub.Broadcast("trades", frame)
		}
	}
}

// persist snapshots engine state through the persistence adapter,
// best-effort.
func (d *Driver) persist(ctx context.Context) {
	if d.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.store.Save(ctx, d.svc.Snapshot()); err != nil {
		d.logger.Warn("state save failed", slog.String("error", err.Error()))
	}
}
