// Package redisarchive implements the durable session archive on Redis,
// for deployments where runs must survive restarts of the host as well as
// the process. Each snapshot is a JSON string key; a sorted set scored by
// update time serves List and Cleanup.
package redisarchive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vk/phasegridgo/internal/ctxlog"
	"github.com/vk/phasegridgo/internal/session"
)

const (
	keyPrefix = "phasegrid:session:"
	indexKey  = "phasegrid:sessions:index"
)

// Store archives session snapshots in Redis.
type Store struct {
	client *redis.Client
}

// New connects to Redis at addr and verifies the connection with a ping.
func New(ctx context.Context, addr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Save persists the snapshot and indexes it by update time.
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for session %s: %w", snap.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(snap.ID), data, 0)
	pipe.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(snap.UpdatedAt.UnixNano()),
		Member: snap.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to archive session %s: %w", snap.ID, err)
	}

	ctxlog.FromContext(ctx).Debug("Archived session snapshot to redis.", "sessionID", snap.ID)
	return nil
}

// Load returns the snapshot for id, or nil when Redis has no record. A
// malformed record is logged and treated as absent.
func (s *Store) Load(ctx context.Context, id string) (*session.Snapshot, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for session %s: %w", id, err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		ctxlog.FromContext(ctx).Warn("Skipping malformed archive record.", "sessionID", id, "error", err)
		return nil, nil
	}
	return &snap, nil
}

// List returns summaries most-recent-first, reading ids from the index in
// reverse score order.
func (s *Store) List(ctx context.Context, limit int) ([]session.Summary, error) {
	logger := ctxlog.FromContext(ctx)

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.client.ZRevRange(ctx, indexKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read archive index: %w", err)
	}

	summaries := make([]session.Summary, 0, len(ids))
	for _, id := range ids {
		snap, err := s.Load(ctx, id)
		if err != nil {
			logger.Warn("Skipping unreadable archive record.", "sessionID", id, "error", err)
			continue
		}
		if snap == nil {
			// Index entry without a body; drop it from the index.
			s.client.ZRem(ctx, indexKey, id)
			continue
		}
		summaries = append(summaries, snap.Summarize())
	}
	return summaries, nil
}

// Cleanup removes snapshots last updated before the age threshold.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	maxScore := fmt.Sprintf("%d", cutoff)

	ids, err := s.client.ZRangeByScore(ctx, indexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: maxScore,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to query archive index: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, sessionKey(id))
	}
	pipe.ZRemRangeByScore(ctx, indexKey, "-inf", maxScore)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to remove old archive records: %w", err)
	}

	ctxlog.FromContext(ctx).Info("Archive cleanup finished.", "removed", len(ids), "olderThan", olderThan.String())
	return len(ids), nil
}
