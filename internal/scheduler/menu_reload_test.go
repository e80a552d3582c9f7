package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/index"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
	"github.com/MrSnakeDoc/megamenu/internal/sources"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCollector struct {
	calls    atomic.Int32
	sitesErr error
}

func (f *fakeCollector) Collect(context.Context) sources.Snapshot {
	f.calls.Add(1)
	snap := sources.Snapshot{
		Records: []domain.NavRecord{
			{Title: "My Sites", Level: domain.LevelTop, Expandable: true},
		},
		Sites:     []domain.SiteEntry{{DisplayText: "Clinic", URL: "https://clinic"}},
		FetchedAt: time.Now(),
		Duration:  time.Millisecond,
	}
	if f.sitesErr != nil {
		snap.Sites = []domain.SiteEntry{}
		snap.SitesErr = f.sitesErr
	}
	return snap
}

type fakeStatusStore struct {
	mu       sync.Mutex
	statuses []domain.RefreshStatus
	err      error
}

func (f *fakeStatusStore) SaveRefreshStatus(_ context.Context, status domain.RefreshStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return f.err
}

func (f *fakeStatusStore) saved() []domain.RefreshStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.RefreshStatus(nil), f.statuses...)
}

func TestMenuReloaderReload(t *testing.T) {
	collector := &fakeCollector{}
	idx := index.NewMenuIndex()
	store := &fakeStatusStore{}

	mr := NewMenuReloader(collector, idx, store, "web-01", logger.NewNop(), time.Hour, make(chan struct{}, 1))
	status := mr.Reload(context.Background())

	assert.Equal(t, "web-01", status.Instance)
	assert.Equal(t, 1, status.NavRecords)
	assert.Equal(t, 1, status.Sites)
	assert.False(t, status.Degraded())

	assert.True(t, idx.Ready())
	tree := idx.Tree()
	require.Len(t, tree, 1)
	require.NotNil(t, tree[0].Branch)
	assert.Len(t, tree[0].Branch.Columns, 1)

	require.Len(t, store.saved(), 1)
	assert.Equal(t, status, store.saved()[0])
}

func TestMenuReloaderDegradedSource(t *testing.T) {
	collector := &fakeCollector{sitesErr: errors.New("discovery down")}
	idx := index.NewMenuIndex()

	mr := NewMenuReloader(collector, idx, nil, "web-01", logger.NewNop(), time.Hour, make(chan struct{}, 1))
	status := mr.Reload(context.Background())

	assert.True(t, status.Degraded())
	assert.Equal(t, "discovery down", status.SitesError)

	// My Sites still expands, with no columns.
	tree := idx.Tree()
	require.NotNil(t, tree[0].Branch)
	assert.Empty(t, tree[0].Branch.Columns)
}

func TestMenuReloaderStoreFailureIsBestEffort(t *testing.T) {
	store := &fakeStatusStore{err: errors.New("redis down")}
	idx := index.NewMenuIndex()

	mr := NewMenuReloader(&fakeCollector{}, idx, store, "web-01", logger.NewNop(), time.Hour, make(chan struct{}, 1))
	mr.Reload(context.Background())

	assert.True(t, idx.Ready())
	assert.Len(t, store.saved(), 1)
}

func TestMenuReloaderManualTrigger(t *testing.T) {
	collector := &fakeCollector{}
	trigger := make(chan struct{}, 1)

	mr := NewMenuReloader(collector, index.NewMenuIndex(), nil, "web-01", logger.NewNop(), time.Hour, trigger)
	mr.Start(context.Background())
	defer mr.Stop()

	require.Equal(t, int32(1), collector.calls.Load(), "Start should load immediately")

	trigger <- struct{}{}
	assert.Eventually(t, func() bool { return collector.calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestMenuReloaderTicker(t *testing.T) {
	collector := &fakeCollector{}

	mr := NewMenuReloader(collector, index.NewMenuIndex(), nil, "web-01", logger.NewNop(), 20*time.Millisecond, make(chan struct{}, 1))
	mr.Start(context.Background())
	defer mr.Stop()

	assert.Eventually(t, func() bool { return collector.calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestMenuReloaderStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	mr := NewMenuReloader(&fakeCollector{}, index.NewMenuIndex(), nil, "web-01", logger.NewNop(), time.Hour, make(chan struct{}, 1))
	mr.Start(ctx)
	cancel()

	select {
	case <-mr.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reloader did not stop on context cancellation")
	}
	mr.Stop()
}

func TestMenuReloaderStopWithoutStart(t *testing.T) {
	mr := NewMenuReloader(&fakeCollector{}, index.NewMenuIndex(), nil, "web-01", logger.NewNop(), time.Hour, make(chan struct{}, 1))

	start := time.Now()
	mr.Stop()
	mr.Stop()
	assert.Less(t, time.Since(start), time.Second)
}
