package domain

import (
	"context"
	"time"
)

// StateStore is the persistence adapter boundary: best-effort snapshot and
// restore of engine state in a durable key-value store. Load returns
// (nil, nil) when no usable record exists: missing, malformed and stale
// records are all treated as "no saved state", never as a fatal error.
// Clear drops the saved record so the next start is a clean slate.
type StateStore interface {
	Save(ctx context.Context, rec StateRecord) error
	Load(ctx context.Context) (*StateRecord, error)
	Clear(ctx context.Context) error
}

// TradeJournal archives executed trades to durable storage. Journal failures
// must never disturb the engine; callers log and move on. ListSince reads
// the archived trades back, newest window first defined by the caller.
type TradeJournal interface {
	InsertBatch(ctx context.Context, trades []Trade) error
	ListSince(ctx context.Context, since time.Time) ([]Trade, error)
}

// SessionArchive is the final record of a simulation session written to blob
// storage when the session ends.
type SessionArchive struct {
	SessionID string      `json:"session_id"`
	StartedAt string      `json:"started_at"`
	EndedAt   string      `json:"ended_at"`
	Settings  Settings    `json:"settings"`
	Trades    []Trade     `json:"trades"`
	LastPrice int64       `json:"last_price"` // micros
	TotalPnL  int64       `json:"total_pnl"`  // micros
}

// SessionArchiver writes a completed session archive and returns the storage
// key it was written under.
type SessionArchiver interface {
	Archive(ctx context.Context, arch SessionArchive) (string, error)
}
