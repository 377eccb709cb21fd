package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Alert{}))
	return db
}

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		logger: zap.NewNop(),
	}
}

func TestStore_InsertAndListLive(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, nil)

	_, err := store.Insert(context.Background(), InsertParams{
		Severity:     SeverityHigh,
		Message:      "wind exceeds maximum",
		Location:     "KPAO",
		OriginalDate: time.Now(),
	})
	require.NoError(t, err)

	live, err := store.ListLive(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, SeverityHigh, live[0].Severity)
}

func TestStore_Dismiss_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, nil)

	a, err := store.Insert(context.Background(), InsertParams{Severity: SeverityLow, Message: "m", Location: "l", OriginalDate: time.Now()})
	require.NoError(t, err)

	require.NoError(t, store.Dismiss(context.Background(), a.ID))
	require.NoError(t, store.Dismiss(context.Background(), a.ID)) // second call is a no-op success

	live, err := store.ListLive(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, live, 0)
}

func TestStore_Dismiss_UnknownIDIsNotFound(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, nil)
	err := store.Dismiss(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestStore_ListLive_OrderedNewestFirst(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, nil)

	_, err := store.Insert(context.Background(), InsertParams{Severity: SeverityLow, Message: "first", OriginalDate: time.Now()})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = store.Insert(context.Background(), InsertParams{Severity: SeverityLow, Message: "second", OriginalDate: time.Now()})
	require.NoError(t, err)

	live, err := store.ListLive(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, "second", live[0].Message)
	assert.Equal(t, "first", live[1].Message)
}

func TestStore_ReadThroughCache_InvalidatedOnWrite(t *testing.T) {
	db := newTestDB(t)
	cache := newTestCache(t)
	store := NewStore(db, cache)

	_, err := store.Insert(context.Background(), InsertParams{Severity: SeverityModerate, Message: "one", OriginalDate: time.Now()})
	require.NoError(t, err)

	first, err := store.ListLive(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	a2, err := store.Insert(context.Background(), InsertParams{Severity: SeverityModerate, Message: "two", OriginalDate: time.Now()})
	require.NoError(t, err)

	// Read-after-write must see the new row even though ListLive reads
	// through the cache.
	second, err := store.ListLive(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, second, 2)

	require.NoError(t, store.Dismiss(context.Background(), a2.ID))
	third, err := store.ListLive(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, third, 1)
}
