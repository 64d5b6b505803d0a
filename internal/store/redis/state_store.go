package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantline/ladderbot/internal/domain"
)

// defaultStaleness is the window within which a saved record is still usable
// on load. Records are also written with this TTL so Redis expires them on
// its own.
const defaultStaleness = time.Hour

// StateStore implements domain.StateStore on a single Redis key holding the
// JSON-encoded state record.
//
// Key schema:
//
//	ladderbot:state:{session} - JSON StateRecord, TTL = staleness window
type StateStore struct {
	rdb       *redis.Client
	key       string
	staleness time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewStateStore creates a StateStore persisting under the given session name.
func NewStateStore(c *Client, session string, logger *slog.Logger) *StateStore {
	if session == "" {
		session = "default"
	}
	return &StateStore{
		rdb:       c.Underlying(),
		key:       "ladderbot:state:" + session,
		staleness: defaultStaleness,
		logger:    logger.With(slog.String("component", "state_store")),
		now:       time.Now,
	}
}

// Save serializes the record and writes it with the staleness TTL.
func (s *StateStore) Save(ctx context.Context, rec domain.StateRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal state: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, s.staleness).Err(); err != nil {
		return fmt.Errorf("redis: save state: %w", err)
	}
	return nil
}

// Load returns the saved record, or (nil, nil) when none exists. A record
// that fails to parse or was saved outside the staleness window is discarded
// and reported as "no saved state"; such records are never fatal.
func (s *StateStore) Load(ctx context.Context) (*domain.StateRecord, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: load state: %w", err)
	}

	rec, reason := decodeRecord(data, s.now(), s.staleness)
	if rec == nil {
		s.logger.Warn("discarding saved state record",
			slog.String("reason", reason),
		)
		return nil, nil
	}
	return rec, nil
}

// decodeRecord parses a saved record and enforces the staleness window.
// It returns nil with a reason when the record must be discarded.
func decodeRecord(data []byte, now time.Time, staleness time.Duration) (*domain.StateRecord, string) {
	var rec domain.StateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, "malformed: " + err.Error()
	}
	if rec.SavedAt.IsZero() {
		return nil, "missing saved_at"
	}
	if age := now.Sub(rec.SavedAt); age > staleness {
		return nil, fmt.Sprintf("stale: saved %s ago", age.Round(time.Second))
	}
	return &rec, ""
}

// Clear removes the saved record.
func (s *StateStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis: clear state: %w", err)
	}
	return nil
}
