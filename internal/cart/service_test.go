package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryKV) CartKey(cartID string) string { return "its27:cart:" + cartID }

type stubCatalog struct {
	items map[int64]models.CatalogItem
	err   error
}

func (s stubCatalog) GetItem(_ context.Context, id int64) (*models.CatalogItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return &item, nil
}

func newTestCartService(t *testing.T) (Service, *memoryKV, stubCatalog) {
	t.Helper()
	kv := newMemoryKV()
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)
	catalog := stubCatalog{items: map[int64]models.CatalogItem{
		4: {ID: 4, Name: "Anillo Sello Obsidiana", Category: "Anillo", Price: 62000, ImageID: 104},
		6: {ID: 6, Name: "Aretes Gota Nova", Category: "Aretes", Price: 48000, ImageID: 106},
	}}
	svc, err := NewService(store, catalog)
	require.NoError(t, err)
	return svc, kv, catalog
}

func TestServiceAddSnapshotsCatalogItem(t *testing.T) {
	svc, kv, catalog := newTestCartService(t)
	ctx := context.Background()
	cartID := NewCartID()

	c, err := svc.Add(ctx, cartID, 4, 1)
	require.NoError(t, err)
	require.Len(t, c.Lines(), 1)
	line := c.Lines()[0]
	assert.Equal(t, int64(62000), line.Item.Price)
	assert.Equal(t, "https://picsum.photos/800/1000?random=104", line.Item.Image)

	_, err = svc.Add(ctx, cartID, 4, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, cartID, 6, 1)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, int64(62000*3+48000), summary.Total)
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, int64(186000), summary.Lines[0].LineTotal)

	assert.Equal(t, time.Hour, kv.ttls["its27:cart:"+cartID])
	assert.Len(t, catalog.items, 2)
}

func TestServiceAddUnknownItem(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	_, err := svc.Add(context.Background(), NewCartID(), 99, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceAddKeepsCartWhenCatalogUnavailable(t *testing.T) {
	kv := newMemoryKV()
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)
	catalog := stubCatalog{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("i/o timeout"), "catalog unavailable")}
	svc, err := NewService(store, catalog)
	require.NoError(t, err)
	cartID := NewCartID()

	_, err = svc.Add(context.Background(), cartID, 4, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.NotContains(t, kv.data, "its27:cart:"+cartID)
}

func TestServiceRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "not-a-uuid", 4, 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Add(ctx, NewCartID(), 4, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceRemoveAndClear(t *testing.T) {
	svc, kv, _ := newTestCartService(t)
	ctx := context.Background()
	cartID := NewCartID()

	_, err := svc.Add(ctx, cartID, 4, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, cartID, 6, 1)
	require.NoError(t, err)

	c, err := svc.Remove(ctx, cartID, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, lineIDs(c))

	_, err = svc.Remove(ctx, cartID, 4)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, cartID))
	_, ok := kv.data["its27:cart:"+cartID]
	assert.False(t, ok)

	c, err = svc.Get(ctx, cartID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (*Cart, error) {
	return nil, errors.New("redis down")
}
func (failingStore) Save(context.Context, string, *Cart) error { return errors.New("redis down") }
func (failingStore) Delete(context.Context, string) error      { return errors.New("redis down") }

func TestServiceStoreFailure(t *testing.T) {
	svc, err := NewService(failingStore{}, stubCatalog{})
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), NewCartID())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	kv := newMemoryKV()
	store, err := NewRedisStore(kv, time.Minute)
	require.NoError(t, err)
	kv.data["its27:cart:abc"] = "{"
	_, err = store.Load(context.Background(), "abc")
	assert.Error(t, err)

	_, err = NewRedisStore(kv, 0)
	assert.Error(t, err)
}
