package market

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimConfig tunes the random-walk price source.
type SimConfig struct {
	InitialPrice    float64
	Volatility      float64 // per-tick relative move scale
	SpikeChance     float64
	SpikeMultiplier float64
	TrendChance     float64
	HistoryCap      int
}

// PricePoint records a single simulated price observation.
type PricePoint struct {
	Time  time.Time `json:"t"`
	Price float64   `json:"price"`
}

// Simulator is a random-walk tick source with occasional spikes and a slight
// intermittent trend bias. It keeps a bounded history of recent points for
// the chart API and supports pause/resume.
type Simulator struct {
	cfg SimConfig
	rng *rand.Rand

	mu      sync.Mutex
	price   float64
	history []PricePoint
	running bool
}

// NewSimulator creates a Simulator starting at cfg.InitialPrice.
func NewSimulator(cfg SimConfig, rng *rand.Rand) *Simulator {
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = 500
	}
	s := &Simulator{
		cfg:     cfg,
		rng:     rng,
		price:   cfg.InitialPrice,
		running: true,
	}
	s.history = append(s.history, PricePoint{Time: time.Now(), Price: cfg.InitialPrice})
	return s
}

// Next advances the walk one tick and returns the new price rounded to two
// decimals. While paused it returns the current price unchanged and records
// no history.
func (s *Simulator) Next(now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return s.price
	}

	last := s.price
	change := (s.rng.Float64() - 0.5) * 2 * s.cfg.Volatility * last

	if s.rng.Float64() < s.cfg.SpikeChance {
		sign := 1.0
		if s.rng.Float64() > 0.5 {
			sign = -1.0
		}
		change *= s.cfg.SpikeMultiplier * sign
	}
	if s.rng.Float64() < s.cfg.TrendChance {
		change += (s.rng.Float64() - 0.5) * s.cfg.Volatility * last * 2
	}

	// Floor at 50% of the previous price so a spike can never collapse the
	// walk to zero.
	next := math.Max(last+change, last*0.5)
	next = math.Round(next*100) / 100

	s.price = next
	s.history = append(s.history, PricePoint{Time: now, Price: next})
	if n := len(s.history); n > s.cfg.HistoryCap {
		s.history = s.history[n-s.cfg.HistoryCap:]
	}
	return next
}

// Price returns the current price without advancing the walk.
func (s *Simulator) Price() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price
}

// History returns a copy of the bounded price history, oldest first.
func (s *Simulator) History() []PricePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PricePoint, len(s.history))
	copy(out, s.history)
	return out
}

// Running reports whether the walk is advancing.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Pause stops the walk; Next becomes a no-op until Resume.
func (s *Simulator) Pause() { s.setRunning(false) }

// Resume restarts a paused walk.
func (s *Simulator) Resume() { s.setRunning(true) }

func (s *Simulator) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// Reset restarts the walk at price and clears the history.
func (s *Simulator) Reset(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = price
	s.history = []PricePoint{{Time: time.Now(), Price: price}}
}
