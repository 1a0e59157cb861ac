package http

import (
	"context"

	"github.com/samirrijal/flightgeo/internal/core/ports"
	"github.com/samirrijal/flightgeo/internal/core/usecases"
	"github.com/samirrijal/flightgeo/internal/pkg/config"
)

// Pinger is a dependency that can be probed for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerStatus reports message broker connectivity (*nats.Conn satisfies it).
type BrokerStatus interface {
	IsConnected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Locations *usecases.LocationService
	Regions   *usecases.RegionService
	Events    ports.EventSubscriber
	Service   config.ServiceConfig
	RateLimit int // requests per minute per IP; 0 disables limiting
	Cache     Pinger
	NATS      BrokerStatus
}
