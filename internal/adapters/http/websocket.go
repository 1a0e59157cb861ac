package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/flightgeo/internal/core/domain"
	"github.com/samirrijal/flightgeo/internal/core/ports"
	"github.com/samirrijal/flightgeo/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to region checks.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Region string `json:"region"` // region name filter ("" = all regions)
}

// wsPingInterval is how often idle connections are pinged.
const wsPingInterval = 30 * time.Second

// WebSocketHandler returns a handler that relays region check events to
// connected clients.
// Clients send JSON: {"action":"subscribe","region":"central"}.
// Nothing is relayed until the client subscribes.
func WebSocketHandler(events ports.EventSubscriber) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		subs := make(map[string]func() error) // region -> unsubscribe

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		relay := func(_ context.Context, check *domain.RegionCheck) error {
			return writeJSON(check)
		}

		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[m.Region]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "region": m.Region})
					continue
				}
				unsubscribe, err := events.SubscribeRegionChecks(ctx, m.Region, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[m.Region] = unsubscribe
				_ = writeJSON(map[string]string{"status": "subscribed", "region": m.Region})

			case "unsubscribe":
				unsubscribe, exists := subs[m.Region]
				if !exists {
					_ = writeJSON(map[string]string{"error": "not subscribed to region " + m.Region})
					continue
				}
				_ = unsubscribe()
				delete(subs, m.Region)
				_ = writeJSON(map[string]string{"status": "unsubscribed", "region": m.Region})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		for _, unsubscribe := range subs {
			_ = unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
