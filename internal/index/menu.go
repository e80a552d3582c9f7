package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/sources"
)

// MenuIndex holds the latest source snapshot in memory.
// The tree is assembled from it on every read, never cached.
type MenuIndex struct {
	mu      sync.RWMutex
	snap    sources.Snapshot
	ready   bool   // set by the first Update
	reloads uint64 // number of Update calls
}

// NewMenuIndex creates an empty index. It is not ready until the first Update.
func NewMenuIndex() *MenuIndex {
	return &MenuIndex{
		snap: sources.Snapshot{
			Records: []domain.NavRecord{},
			Sites:   []domain.SiteEntry{},
		},
	}
}

// Update replaces the snapshot.
func (idx *MenuIndex) Update(snap sources.Snapshot) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	idx.snap = snap
	idx.ready = true
	idx.reloads++
}

// Snapshot returns the current snapshot. Callers must not modify its slices.
func (idx *MenuIndex) Snapshot() sources.Snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.snap
}

// Tree assembles the menu from the current snapshot.
func (idx *MenuIndex) Tree() domain.NavTree {
	return idx.Snapshot().Tree()
}

// Ready reports whether at least one refresh has completed.
func (idx *MenuIndex) Ready() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.ready
}

// LastReload returns when the current snapshot was fetched, zero before the first refresh.
func (idx *MenuIndex) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.ready {
		return time.Time{}
	}
	return idx.snap.FetchedAt
}

// RecordCount returns the number of navigation records held.
func (idx *MenuIndex) RecordCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.snap.Records)
}

// SiteCount returns the number of site entries held, before filtering.
func (idx *MenuIndex) SiteCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.snap.Sites)
}

// Reloads returns how many snapshots have been applied.
func (idx *MenuIndex) Reloads() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.reloads
}
