package app

import (
	"context"

	"github.com/MrSnakeDoc/megamenu/internal/config"
	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
	"github.com/MrSnakeDoc/megamenu/internal/sources"
)

// AssembleOnce runs a single fetch cycle and returns the assembled tree with
// the snapshot it came from. Source failures are reported through the snapshot.
func AssembleOnce(ctx context.Context, cfg *config.Config, log logger.Logger) (domain.NavTree, sources.Snapshot, error) {
	collector, err := NewCollector(cfg, log)
	if err != nil {
		return nil, sources.Snapshot{}, err
	}

	snap := collector.Collect(ctx)
	return snap.Tree(), snap, nil
}
