package scheduler

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/megamenu/internal/logger"
	redisstore "github.com/MrSnakeDoc/megamenu/internal/store/redis"
)

// ReloadSubscriber opens a subscription to cluster-wide reload broadcasts.
type ReloadSubscriber interface {
	SubscribeReload(ctx context.Context) (*redisstore.ReloadSubscription, error)
}

// ReloadRelay forwards reload broadcasts from other instances into the
// local reload trigger.
type ReloadRelay struct {
	subscriber ReloadSubscriber
	instance   string
	trigger    chan struct{}
	logger     logger.Logger
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewReloadRelay creates a relay. Broadcasts whose origin is instance are ignored,
// since that instance already triggered itself.
func NewReloadRelay(subscriber ReloadSubscriber, instance string, trigger chan struct{}, log logger.Logger) *ReloadRelay {
	return &ReloadRelay{
		subscriber: subscriber,
		instance:   instance,
		trigger:    trigger,
		logger:     log,
		stopCh:     make(chan struct{}),
	}
}

// Start subscribes and relays in the background.
func (rr *ReloadRelay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	sub, err := rr.subscriber.SubscribeReload(ctx)
	if err != nil {
		cancel()
		return err
	}

	rr.wg.Add(1)
	go func() {
		defer rr.wg.Done()
		defer cancel()
		defer func() { _ = sub.Close() }()

		for {
			select {
			case origin, ok := <-sub.C():
				if !ok {
					return
				}
				if origin == rr.instance {
					continue
				}
				select {
				case rr.trigger <- struct{}{}:
					rr.logger.Info("cluster reload relayed", logger.String("origin", origin))
				default:
					rr.logger.Debug("reload already pending, broadcast dropped", logger.String("origin", origin))
				}
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	rr.logger.Info("listening for cluster reload broadcasts")
	return nil
}

// Stop ends the relay and waits for it.
func (rr *ReloadRelay) Stop() {
	rr.stopOnce.Do(func() { close(rr.stopCh) })
	rr.wg.Wait()
}
