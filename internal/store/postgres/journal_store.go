package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantline/ladderbot/internal/domain"
)

// JournalStore implements domain.TradeJournal using PostgreSQL. It is an
// append-only archive of executed trades; the in-memory ledger remains the
// source of truth during a session.
type JournalStore struct {
	pool *pgxpool.Pool
}

// NewJournalStore creates a JournalStore backed by the given connection pool.
func NewJournalStore(pool *pgxpool.Pool) *JournalStore {
	return &JournalStore{pool: pool}
}

// InsertBatch archives multiple trades using a pgx Batch. Trades already
// archived (same id) are silently skipped via ON CONFLICT DO NOTHING.
func (s *JournalStore) InsertBatch(ctx context.Context, trades []domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO trades (
			id, timestamp, side, qty,
			target_price, exec_price, is_square_off, original_trade_id
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, NULLIF($8, '')
		) ON CONFLICT (id) DO NOTHING`

	for _, t := range trades {
		batch.Queue(query,
			t.ID, t.Timestamp, string(t.Side), t.Qty,
			t.TargetPrice, t.ExecPrice, t.IsSquareOff, t.OriginalTradeID,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range trades {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert trade batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListSince returns archived trades with a timestamp at or after the given
// time, in chronological order.
func (s *JournalStore) ListSince(ctx context.Context, since time.Time) ([]domain.Trade, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, timestamp, side, qty,
			target_price, exec_price, is_square_off, COALESCE(original_trade_id, '')
		FROM trades
		WHERE timestamp >= $1
		ORDER BY timestamp`, since)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var side string
		if err := rows.Scan(
			&t.ID, &t.Timestamp, &side, &t.Qty,
			&t.TargetPrice, &t.ExecPrice, &t.IsSquareOff, &t.OriginalTradeID,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan trade: %w", err)
		}
		t.Side = domain.Side(side)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
