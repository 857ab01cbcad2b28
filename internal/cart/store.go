package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// Store persists carts by their opaque id.
type Store interface {
	Load(ctx context.Context, cartID string) (*Cart, error)
	Save(ctx context.Context, cartID string, c *Cart) error
	Delete(ctx context.Context, cartID string) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(cartID string) string
}

// RedisStore keeps carts as JSON documents with a sliding TTL.
type RedisStore struct {
	kv  kvStore
	ttl time.Duration
}

// NewRedisStore builds a Redis-backed cart store.
func NewRedisStore(kv kvStore, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

// Load returns the stored cart or an empty cart when none exists.
func (s *RedisStore) Load(ctx context.Context, cartID string) (*Cart, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(cartID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return New(), nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	c := New()
	if err := json.Unmarshal([]byte(raw), c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, cartID string, c *Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.kv.Set(ctx, s.kv.CartKey(cartID), string(raw), s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	return s.kv.Del(ctx, s.kv.CartKey(cartID))
}

// NewCartID issues a fresh opaque cart token.
func NewCartID() string {
	return uuid.NewString()
}

// ValidCartID reports whether id looks like a token issued by NewCartID.
func ValidCartID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}
