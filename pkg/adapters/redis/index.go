package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Index implements ports.SessionIndex as a sorted set scored by expiry time.
type Index struct {
	client backend.UniversalClient
	key    string
	now    func() time.Time
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithPrefix sets the key prefix (the set lives at prefix + "sessions").
func WithPrefix(prefix string) IndexOption {
	return func(i *Index) {
		i.key = prefix + "sessions"
	}
}

// NewIndex creates a session index on client.
func NewIndex(client backend.UniversalClient, opts ...IndexOption) *Index {
	i := &Index{
		client: client,
		key:    DefaultPrefix + "sessions",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Touch records the session with its expiry.
func (i *Index) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	err := i.client.ZAdd(ctx, i.key, backend.Z{
		Score:  float64(expiresAt.UnixMilli()),
		Member: sessionID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to index session %s: %w", sessionID, err)
	}
	return nil
}

// Remove forgets the session.
func (i *Index) Remove(ctx context.Context, sessionID string) error {
	if err := i.client.ZRem(ctx, i.key, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to unindex session %s: %w", sessionID, err)
	}
	return nil
}

// List drops expired entries and returns the rest, soonest expiry first.
func (i *Index) List(ctx context.Context) ([]ports.SessionInfo, error) {
	now := strconv.FormatInt(i.now().UnixMilli(), 10)

	// Lazy cleanup: entries are never removed by Redis itself.
	if err := i.client.ZRemRangeByScore(ctx, i.key, "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune session index: %w", err)
	}

	entries, err := i.client.ZRangeByScoreWithScores(ctx, i.key, &backend.ZRangeBy{
		Min: now,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	out := make([]ports.SessionInfo, 0, len(entries))
	for _, z := range entries {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, ports.SessionInfo{
			ID:        id,
			ExpiresAt: time.UnixMilli(int64(z.Score)),
		})
	}
	return out, nil
}
