package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
)

// SaveRefreshStatus records the last refresh of an instance
func (s *Store) SaveRefreshStatus(ctx context.Context, status domain.RefreshStatus) error {
	if status.Instance == "" {
		return errors.New("refresh status has no instance")
	}

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh status: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, RefreshKey(status.Instance), data, s.statusTTL)
	pipe.SAdd(ctx, KeyRefreshInstances, status.Instance)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save refresh status: %w", err)
	}
	return nil
}

// GetRefreshStatuses returns the last refresh of every instance still known,
// sorted by instance. Expired entries are pruned from the instance set.
func (s *Store) GetRefreshStatuses(ctx context.Context) ([]domain.RefreshStatus, error) {
	instances, err := s.client.SMembers(ctx, KeyRefreshInstances).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh instances: %w", err)
	}

	statuses := make([]domain.RefreshStatus, 0, len(instances))
	for _, instance := range instances {
		data, err := s.client.Get(ctx, RefreshKey(instance)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				_ = s.client.SRem(ctx, KeyRefreshInstances, instance).Err()
				continue
			}
			return nil, fmt.Errorf("failed to get refresh status for %s: %w", instance, err)
		}

		var status domain.RefreshStatus
		if err := json.Unmarshal(data, &status); err != nil {
			// Skip entries that couldn't be decoded
			continue
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Instance < statuses[j].Instance
	})
	return statuses, nil
}
