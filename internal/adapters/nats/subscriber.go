package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/flightgeo/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using core NATS.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber creates a subscriber sharing a NATS connection.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// SubscribeRegionChecks delivers decoded checks for region (all regions when
// empty) to handler until the returned unsubscribe func is called.
func (s *Subscriber) SubscribeRegionChecks(ctx context.Context, region string, handler func(ctx context.Context, check *domain.RegionCheck) error) (func() error, error) {
	subject := RegionCheckFilter(region)
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		var check domain.RegionCheck
		if err := json.Unmarshal(msg.Data, &check); err != nil {
			slog.Warn("drop malformed region check", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, &check); err != nil {
			slog.Debug("region check handler", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return sub.Unsubscribe, nil
}
