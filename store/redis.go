package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	moodtuner "github.com/paoloarmento-cloud/LLM-Mood-Tuner"
)

// RedisStore persists turn records in a Redis list, one JSON document
// per record, keyed "mood:{session}:turns". Append-only: records are
// only ever RPushed.
type RedisStore struct {
	client  *redis.Client
	session string
	maxKeep int
}

// RedisStoreConfig configures the Redis persistence backend.
type RedisStoreConfig struct {
	Addr    string
	DB      int
	Session string // session identifier used in the key
	MaxKeep int    // trim the list to this many records, 0 = unbounded
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisStoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, session: cfg.Session, maxKeep: cfg.MaxKeep}, nil
}

// newRedisStoreWithClient is used by tests to inject a miniredis-backed client.
func newRedisStoreWithClient(client *redis.Client, session string, maxKeep int) *RedisStore {
	return &RedisStore{client: client, session: session, maxKeep: maxKeep}
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("mood:%s:turns", s.session)
}

func (s *RedisStore) Append(ctx context.Context, record moodtuner.TurnRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.client.RPush(ctx, s.key(), data).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	if s.maxKeep > 0 {
		if err := s.client.LTrim(ctx, s.key(), int64(-s.maxKeep), -1).Err(); err != nil {
			return fmt.Errorf("ltrim: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) ReadRecent(ctx context.Context, n int) ([]moodtuner.TurnRecord, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}
	items, err := s.client.LRange(ctx, s.key(), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange: %w", err)
	}
	records := make([]moodtuner.TurnRecord, 0, len(items))
	for _, item := range items {
		var r moodtuner.TurnRecord
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("corrupt record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Compile-time interface check.
var _ moodtuner.Persistence = (*RedisStore)(nil)
