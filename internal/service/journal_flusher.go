package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/quantline/ladderbot/internal/domain"
)

const (
	flushBatchSize = 64
	flushInterval  = 2 * time.Second
)

// JournalFlusher drains executed trades from the engine service's sink
// channel and archives them to the trade journal in batches. Journal errors
// are logged and skipped; archival must never disturb tick processing.
type JournalFlusher struct {
	journal domain.TradeJournal
	in      chan domain.Trade
	logger  *slog.Logger
}

// NewJournalFlusher creates a flusher and returns it with its input channel
// already attached to svc.
func NewJournalFlusher(journal domain.TradeJournal, svc *EngineService, logger *slog.Logger) *JournalFlusher {
	in := make(chan domain.Trade, 256)
	svc.SetJournalSink(in)
	return &JournalFlusher{
		journal: journal,
		in:      in,
		logger:  logger.With(slog.String("component", "journal_flusher")),
	}
}

// Run flushes batches until the context is cancelled, then performs a final
// drain so shutdown loses nothing buffered.
func (f *JournalFlusher) Run(ctx context.Context) error {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]domain.Trade, 0, flushBatchSize)
	for {
		select {
		case <-ctx.Done():
			f.drain(&batch)
			f.flush(context.Background(), &batch)
			return ctx.Err()
		case t := <-f.in:
			batch = append(batch, t)
			if len(batch) >= flushBatchSize {
				f.flush(ctx, &batch)
			}
		case <-ticker.C:
			f.flush(ctx, &batch)
		}
	}
}

func (f *JournalFlusher) drain(batch *[]domain.Trade) {
	for {
		select {
		case t := <-f.in:
			*batch = append(*batch, t)
		default:
			return
		}
	}
}

func (f *JournalFlusher) flush(ctx context.Context, batch *[]domain.Trade) {
	if len(*batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := f.journal.InsertBatch(ctx, *batch); err != nil {
		f.logger.Error("journal flush failed",
			slog.Int("trades", len(*batch)),
			slog.String("error", err.Error()),
		)
	} else {
		f.logger.Debug("journal flushed", slog.Int("trades", len(*batch)))
	}
	*batch = (*batch)[:0]
}
