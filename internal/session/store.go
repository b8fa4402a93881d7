package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// ErrNotFound is returned when no server-side record exists for a
// session id, either because it expired or was destroyed at logout.
var ErrNotFound = errors.New("session not found")

// Data is the server-side session record. The role is a cached hint;
// authorization re-reads the user row before enforcing access.
type Data struct {
	UserID int64           `json:"user_id"`
	Role   models.UserRole `json:"role"`
}

// Store persists session records keyed by session id.
type Store interface {
	Save(ctx context.Context, id string, data Data, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Data, error)
	Delete(ctx context.Context, id string) error
}

const redisKeyPrefix = "session:"

// RedisStore keeps session records in Redis with a TTL matching the
// signed token's lifetime.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a Redis client as a session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save writes the session record under its id.
func (s *RedisStore) Save(ctx context.Context, id string, data Data, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the record for id, or ErrNotFound when absent.
func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

// Delete removes the record; deleting an absent id is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
