package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/flightgeo/internal/core/domain"
)

// Publisher implements ports.EventPublisher using core NATS.
// Events are fire-and-forget; nothing is retained by the broker.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher creates a publisher over an open connection (see Connect).
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// PublishRegionCheck publishes check on the subject of its region.
func (p *Publisher) PublishRegionCheck(ctx context.Context, check *domain.RegionCheck) error {
	data, err := json.Marshal(check)
	if err != nil {
		return err
	}
	return p.conn.Publish(RegionCheckSubject(check.Region), data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect opens a NATS connection that keeps retrying in the background.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("flightgeo"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
