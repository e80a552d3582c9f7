package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/megamenu/internal/logger"
)

// DefaultWatchDebounce absorbs the bursts of events editors emit on save.
const DefaultWatchDebounce = 500 * time.Millisecond

// NavFileWatcher triggers a reload when the local navigation file changes.
type NavFileWatcher struct {
	path     string
	trigger  chan struct{}
	logger   logger.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewNavFileWatcher creates a watcher for path. debounce <= 0 uses DefaultWatchDebounce.
func NewNavFileWatcher(path string, trigger chan struct{}, log logger.Logger, debounce time.Duration) *NavFileWatcher {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &NavFileWatcher{
		path:     filepath.Clean(path),
		trigger:  trigger,
		logger:   log,
		debounce: debounce,
		stopCh:   make(chan struct{}),
	}
}

// Start watches the file's directory, so that editors replacing the file
// through a rename are still seen.
func (fw *NavFileWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(fw.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.path, err)
	}
	fw.watcher = watcher

	fw.wg.Add(1)
	go fw.loop(ctx)

	fw.logger.Info("watching navigation file", logger.String("file", fw.path))
	return nil
}

func (fw *NavFileWatcher) loop(ctx context.Context) {
	defer fw.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path || event.Op == fsnotify.Chmod {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("navigation file watcher error", logger.Error(err))
		case <-fire:
			fire = nil
			select {
			case fw.trigger <- struct{}{}:
				fw.logger.Info("navigation file changed, reload triggered")
			default:
				fw.logger.Debug("navigation file changed, reload already pending")
			}
		case <-fw.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the watcher and waits for it. Safe to call before Start.
func (fw *NavFileWatcher) Stop() {
	fw.stopOnce.Do(func() { close(fw.stopCh) })
	fw.wg.Wait()
	if fw.watcher != nil {
		_ = fw.watcher.Close()
	}
}
