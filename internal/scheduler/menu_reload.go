package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/index"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
	"github.com/MrSnakeDoc/megamenu/internal/sources"
)

// Collector fetches one snapshot of both menu sources.
type Collector interface {
	Collect(ctx context.Context) sources.Snapshot
}

// StatusStore records refresh outcomes for the rest of the cluster.
type StatusStore interface {
	SaveRefreshStatus(ctx context.Context, status domain.RefreshStatus) error
}

// MenuReloader refreshes the menu index periodically and on demand.
type MenuReloader struct {
	collector     Collector
	index         *index.MenuIndex
	store         StatusStore // nil when Redis is disabled
	instance      string
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
	manualTrigger chan struct{}
}

// NewMenuReloader creates a new menu reloader. store may be nil.
func NewMenuReloader(
	collector Collector,
	idx *index.MenuIndex,
	store StatusStore,
	instance string,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *MenuReloader {
	return &MenuReloader{
		collector:     collector,
		index:         idx,
		store:         store,
		instance:      instance,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the menu once, then keeps refreshing in the background
// until Stop is called or ctx is cancelled.
func (mr *MenuReloader) Start(ctx context.Context) {
	mr.Reload(ctx)

	mr.started.Store(true)
	ticker := time.NewTicker(mr.interval)
	go func() {
		defer close(mr.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mr.Reload(ctx)
			case <-mr.manualTrigger:
				mr.logger.Info("manual reload triggered")
				mr.Reload(ctx)
			case <-mr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the reloader and waits for the loop to exit.
// Safe to call more than once, and before Start.
func (mr *MenuReloader) Stop() {
	mr.stopOnce.Do(func() { close(mr.stopCh) })
	if !mr.started.Load() {
		return
	}
	select {
	case <-mr.done:
	case <-time.After(5 * time.Second):
		mr.logger.Warn("menu reloader did not stop in time")
	}
}

// Reload collects both sources and swaps the snapshot into the index.
// Source failures are absorbed and reported in the returned status.
func (mr *MenuReloader) Reload(ctx context.Context) domain.RefreshStatus {
	snap := mr.collector.Collect(ctx)
	mr.index.Update(snap)

	status := domain.RefreshStatus{
		Instance:    mr.instance,
		RefreshedAt: snap.FetchedAt,
		Duration:    snap.Duration,
		NavRecords:  len(snap.Records),
		Sites:       len(snap.Sites),
	}
	if snap.NavErr != nil {
		status.NavError = snap.NavErr.Error()
	}
	if snap.SitesErr != nil {
		status.SitesError = snap.SitesErr.Error()
	}

	fields := []logger.Field{
		logger.Int("records", status.NavRecords),
		logger.Int("sites", status.Sites),
		logger.Duration("duration", status.Duration),
	}
	if status.Degraded() {
		mr.logger.Warn("menu reloaded with degraded sources", append(fields,
			logger.String("nav_error", status.NavError),
			logger.String("sites_error", status.SitesError))...)
	} else {
		mr.logger.Info("menu reloaded", fields...)
	}

	// Best effort: the index is the source of truth for this instance.
	if mr.store != nil {
		if err := mr.store.SaveRefreshStatus(ctx, status); err != nil {
			mr.logger.Warn("failed to save refresh status to redis", logger.Error(err))
		}
	}

	return status
}
