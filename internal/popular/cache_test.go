package popular

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/search-service/pkg/logger"
)

// fakeQuerySource - источник со счетчиком обращений
type fakeQuerySource struct {
	mu    sync.Mutex
	stats []QueryStat
	err   error
	calls int
}

func (f *fakeQuerySource) TopQueries(_ context.Context, _ int64) ([]QueryStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.stats, f.err
}

func (f *fakeQuerySource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCacheWarm(t *testing.T) {
	source := &fakeQuerySource{stats: []QueryStat{
		{Text: "harvard", Count: 120},
		{Text: "mit", Count: 80},
	}}

	cache := NewCache(source, logger.NewNop())
	require.NoError(t, cache.Warm(context.Background()))

	queries := cache.Queries()
	require.Len(t, queries, 2)
	assert.Equal(t, "harvard", queries[0].Text)
	assert.Equal(t, int64(120), queries[0].Count)
}

func TestCacheWarmPropagatesError(t *testing.T) {
	source := &fakeQuerySource{err: errors.New("redis down")}
	cache := NewCache(source, logger.NewNop())
	assert.Error(t, cache.Warm(context.Background()))
}

func TestCacheFreshSnapshotSkipsRefresh(t *testing.T) {
	source := &fakeQuerySource{stats: []QueryStat{{Text: "harvard", Count: 1}}}
	cache := NewCache(source, logger.NewNop())
	require.NoError(t, cache.Warm(context.Background()))

	// Свежий снимок: повторные чтения не трогают источник
	for i := 0; i < 10; i++ {
		cache.Queries()
	}
	assert.Equal(t, 1, source.callCount())
}

func TestCacheStaleSnapshotRefreshesInBackground(t *testing.T) {
	source := &fakeQuerySource{stats: []QueryStat{{Text: "harvard", Count: 1}}}
	cache := NewCache(source, logger.NewNop()).WithRefreshInterval(time.Nanosecond)
	require.NoError(t, cache.Warm(context.Background()))

	// Чтение не блокируется: отдается устаревший снимок, обновление в фоне
	queries := cache.Queries()
	assert.Len(t, queries, 1)

	assert.Eventually(t, func() bool {
		return source.callCount() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestCacheEmptyBeforeWarm(t *testing.T) {
	source := &fakeQuerySource{stats: []QueryStat{{Text: "harvard", Count: 1}}}
	cache := NewCache(source, logger.NewNop())

	// До прогрева снимок пуст, но фоновое обновление уже запущено
	assert.Empty(t, cache.Queries())
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "harvard university", normalizeQuery("  Harvard University "))
	assert.Equal(t, "", normalizeQuery("   "))
}
