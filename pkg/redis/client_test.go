package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrWithTTLStartsWindowOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.RateLimitKey("login:ip:10.0.0.1")

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, time.Minute, mock.ttl[key])
	assert.Equal(t, 1, mock.ttlSets, "ExpireNX must not extend a running window")
}

func TestIncrWithTTLRepairsMissingExpiry(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.incr["its27:rate_limit:orphan"] = 7
	client := &Client{store: mock}

	got, err := client.IncrWithTTL(ctx, "its27:rate_limit:orphan", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got)
	assert.Equal(t, time.Minute, mock.ttl["its27:rate_limit:orphan"])
}

func TestLockAcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.LockKey("checkout", "cart-1")

	token, err := client.AcquireLock(ctx, key, 30*time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	second, err := client.AcquireLock(ctx, key, 30*time.Second)
	require.NoError(t, err)
	assert.Empty(t, second, "lock is already held")

	released, err := client.ReleaseLock(ctx, key, "not-the-owner")
	require.NoError(t, err)
	assert.False(t, released)

	released, err = client.ReleaseLock(ctx, key, token)
	require.NoError(t, err)
	assert.True(t, released)

	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestReleaseLockFallsBackToEval(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.noScriptCache = true
	client := &Client{store: mock}

	token, err := client.AcquireLock(ctx, "its27:lock:checkout:c", time.Second)
	require.NoError(t, err)
	released, err := client.ReleaseLock(ctx, "its27:lock:checkout:c", token)
	require.NoError(t, err)
	assert.True(t, released)
	assert.Equal(t, 1, mock.evals)
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	assert.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	_, err := client.Get(ctx, "k")
	assert.ErrorIs(t, err, errNotInitialized)
	_, err = client.AcquireLock(ctx, "k", time.Second)
	assert.ErrorIs(t, err, errNotInitialized)

	var nilClient *Client
	assert.NoError(t, nilClient.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 4})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 4, opts.DB)
}

func TestKeyspace(t *testing.T) {
	client := &Client{}
	cases := []struct{ got, want string }{
		{client.IdempotencyKey("scope", "id"), "its27:idempotency:scope:id"},
		{client.RateLimitKey("scope"), "its27:rate_limit:scope"},
		{client.AccessSessionKey("jti"), "its27:session:access:jti"},
		{client.CartKey("abc"), "its27:cart:abc"},
		{client.CheckoutKey("abc"), "its27:checkout:abc"},
		{client.LockKey("checkout", ""), "its27:lock:checkout"},
		{client.LockKey(" checkout ", " abc "), "its27:lock:checkout:abc"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.got)
	}
}

type noScriptError struct{}

func (noScriptError) Error() string { return "NOSCRIPT No matching script. Please use EVAL." }
func (noScriptError) RedisError()   {}

type mockCmdable struct {
	data          map[string]string
	incr          map[string]int64
	ttl           map[string]time.Duration
	ttlSets       int
	noScriptCache bool
	evals         int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
		ttl:  make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) ExpireNX(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if _, ok := m.ttl[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.ttl[key] = ttl
	m.ttlSets++
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
		delete(m.data, key)
	}
	return redis.NewIntResult(n, nil)
}

// compareAndDelete stands in for releaseScript.
func (m *mockCmdable) compareAndDelete(keys []string, args []any) *redis.Cmd {
	if len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, errors.New("unexpected script arguments"))
	}
	if m.data[keys[0]] != fmt.Sprint(args[0]) {
		return redis.NewCmdResult(int64(0), nil)
	}
	delete(m.data, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}

func (m *mockCmdable) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	m.evals++
	return m.compareAndDelete(keys, args)
}

func (m *mockCmdable) EvalSha(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	if m.noScriptCache {
		return redis.NewCmdResult(nil, noScriptError{})
	}
	return m.compareAndDelete(keys, args)
}

func (m *mockCmdable) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return m.Eval(ctx, script, keys, args...)
}

func (m *mockCmdable) EvalShaRO(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	return m.EvalSha(ctx, sha, keys, args...)
}

func (m *mockCmdable) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (m *mockCmdable) ScriptLoad(_ context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}
