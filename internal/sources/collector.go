package sources

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
)

// NavSource yields navigation records ordered by Order ascending.
type NavSource interface {
	FetchNavigationRecords(ctx context.Context) ([]domain.NavRecord, error)
}

// SiteSource yields the site collections shown under My Sites.
type SiteSource interface {
	FetchSiteCollections(ctx context.Context) ([]domain.SiteEntry, error)
}

// Snapshot is the outcome of one refresh of both sources.
// A failed source leaves its slice empty and its error set.
type Snapshot struct {
	Records   []domain.NavRecord
	Sites     []domain.SiteEntry
	NavErr    error
	SitesErr  error
	FetchedAt time.Time
	Duration  time.Duration
}

// Degraded reports whether at least one source failed.
func (s Snapshot) Degraded() bool {
	return s.NavErr != nil || s.SitesErr != nil
}

// Tree assembles the menu from the snapshot.
func (s Snapshot) Tree() domain.NavTree {
	return domain.Build(s.Records, s.Sites)
}

// Collector fetches both sources concurrently.
type Collector struct {
	nav     NavSource
	sites   SiteSource
	timeout time.Duration
	log     logger.Logger
}

// NewCollector creates a collector. Each fetch gets its own timeout.
func NewCollector(nav NavSource, sites SiteSource, timeout time.Duration, log logger.Logger) *Collector {
	return &Collector{
		nav:     nav,
		sites:   sites,
		timeout: timeout,
		log:     log,
	}
}

// Collect runs both fetches and waits for them. It never fails as a whole:
// a source that errors or times out yields an empty list and a warning.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	start := time.Now()
	var snap Snapshot

	// Fetch goroutines always return nil so one failure never cancels the other.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, c.timeout)
		defer cancel()

		records, err := c.nav.FetchNavigationRecords(fctx)
		if err != nil {
			c.log.Warn("navigation source unavailable", logger.Error(err))
			snap.NavErr = err
			return nil
		}
		snap.Records = records
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, c.timeout)
		defer cancel()

		sites, err := c.sites.FetchSiteCollections(fctx)
		if err != nil {
			c.log.Warn("site discovery unavailable", logger.Error(err))
			snap.SitesErr = err
			return nil
		}
		snap.Sites = sites
		return nil
	})

	_ = g.Wait()

	if snap.Records == nil {
		snap.Records = []domain.NavRecord{}
	}
	if snap.Sites == nil {
		snap.Sites = []domain.SiteEntry{}
	}
	snap.FetchedAt = time.Now()
	snap.Duration = snap.FetchedAt.Sub(start)

	c.log.Debug("sources collected",
		logger.Int("records", len(snap.Records)),
		logger.Int("sites", len(snap.Sites)),
		logger.Duration("duration", snap.Duration),
	)
	return snap
}
