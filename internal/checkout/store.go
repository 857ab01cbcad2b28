package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	redislib "github.com/redis/go-redis/v9"
)

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	CheckoutKey(cartID string) string
}

type lockStore interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
	LockKey(scope, id string) string
}

// AttemptStore persists checkout attempts keyed by cart id.
type AttemptStore interface {
	Load(ctx context.Context, cartID string) (*Attempt, error)
	Save(ctx context.Context, cartID string, a *Attempt) error
}

// Locker guards a cart against concurrent submissions.
type Locker interface {
	Acquire(ctx context.Context, cartID string) (release func(), err error)
}

// RedisAttemptStore keeps attempts as JSON with the cart TTL.
type RedisAttemptStore struct {
	kv  kvStore
	ttl time.Duration
}

func NewRedisAttemptStore(kv kvStore, ttl time.Duration) (*RedisAttemptStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("attempt ttl must be positive")
	}
	return &RedisAttemptStore{kv: kv, ttl: ttl}, nil
}

// Load returns the stored attempt or a fresh editing attempt.
func (s *RedisAttemptStore) Load(ctx context.Context, cartID string) (*Attempt, error) {
	raw, err := s.kv.Get(ctx, s.kv.CheckoutKey(cartID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return NewAttempt(), nil
		}
		return nil, fmt.Errorf("load checkout attempt: %w", err)
	}
	var a Attempt
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("decode checkout attempt: %w", err)
	}
	return &a, nil
}

func (s *RedisAttemptStore) Save(ctx context.Context, cartID string, a *Attempt) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode checkout attempt: %w", err)
	}
	return s.kv.Set(ctx, s.kv.CheckoutKey(cartID), string(raw), s.ttl)
}

// RedisLocker takes a per-cart lock that expires on its own if the holder dies.
type RedisLocker struct {
	kv  lockStore
	ttl time.Duration
}

func NewRedisLocker(kv lockStore, ttl time.Duration) (*RedisLocker, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive")
	}
	return &RedisLocker{kv: kv, ttl: ttl}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, cartID string) (func(), error) {
	key := l.kv.LockKey("checkout", cartID)
	token, err := l.kv.AcquireLock(ctx, key, l.ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")
	}
	return func() {
		_, _ = l.kv.ReleaseLock(context.WithoutCancel(ctx), key, token)
	}, nil
}
