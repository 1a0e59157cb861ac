package ports

import (
	"context"

	"github.com/samirrijal/flightgeo/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRegionCheck(ctx context.Context, check *domain.RegionCheck) error
}

// EventSubscriber subscribes to domain events from a message broker.
// An empty region subscribes to checks against every region.
type EventSubscriber interface {
	SubscribeRegionChecks(ctx context.Context, region string, handler func(ctx context.Context, check *domain.RegionCheck) error) (unsubscribe func() error, err error)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
