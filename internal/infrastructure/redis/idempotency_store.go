package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
)

const (
	keyPrefix = "origination:idempotency:"
	// How long a Confirm may hold the in-progress lock before another
	// request with the same key may take over.
	provisionalLockTTL = 60 * time.Second
)

type idempEntry struct {
	InProgress bool      `json:"in_progress"`
	LoanID     string    `json:"loan_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IdempotencyStore implements port.IdempotencyStore on Redis. A key is
// first written with SETNX as an in-progress lock and then overwritten with
// the resulting loan ID, kept for ttl.
type IdempotencyStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
	now func() time.Time
}

// NewIdempotencyStore creates a store keeping completed keys for ttl.
func NewIdempotencyStore(rdb goredis.Cmdable, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

var _ port.IdempotencyStore = (*IdempotencyStore)(nil)

func (s *IdempotencyStore) Acquire(ctx context.Context, key string) (string, bool, error) {
	lock, err := json.Marshal(idempEntry{InProgress: true, CreatedAt: s.now()})
	if err != nil {
		return "", false, fmt.Errorf("marshal idempotency entry: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, keyPrefix+key, lock, provisionalLockTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return "", false, nil
	}

	cur, err := s.load(ctx, key)
	if errors.Is(err, goredis.Nil) {
		// The holder released or the lock expired between the two calls.
		return "", false, port.ErrIdempotencyInFlight
	}
	if err != nil {
		return "", false, err
	}
	if cur.InProgress {
		return "", false, port.ErrIdempotencyInFlight
	}
	return cur.LoanID, true, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, loanID string) error {
	done, err := json.Marshal(idempEntry{LoanID: loanID, CreatedAt: s.now()})
	if err != nil {
		return fmt.Errorf("marshal idempotency entry: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, done, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) load(ctx context.Context, key string) (idempEntry, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return idempEntry{}, err
		}
		return idempEntry{}, fmt.Errorf("redis get: %w", err)
	}
	var e idempEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return idempEntry{}, fmt.Errorf("unmarshal idempotency entry: %w", err)
	}
	return e, nil
}
