// Command watcher follows region check events on NATS and logs them, with a
// periodic per-region summary. Pass a region name to follow a single region.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/flightgeo/internal/adapters/nats"
	"github.com/samirrijal/flightgeo/internal/core/domain"
	"github.com/samirrijal/flightgeo/internal/pkg/config"
	"github.com/samirrijal/flightgeo/internal/pkg/logging"
)

const summaryInterval = 30 * time.Second

// tally counts checks per region since the last summary.
type tally struct {
	mu     sync.Mutex
	counts map[string]*[2]int // region -> [outside, inside]
}

func (t *tally) add(check *domain.RegionCheck) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.counts[check.Region]
	if !ok {
		c = new([2]int)
		t.counts[check.Region] = c
	}
	if check.Inside {
		c[1]++
	} else {
		c[0]++
	}
}

func (t *tally) flush() {
	t.mu.Lock()
	counts := t.counts
	t.counts = make(map[string]*[2]int)
	t.mu.Unlock()

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		slog.Info("region summary", "region", name, "inside", counts[name][1], "outside", counts[name][0])
	}
}

func main() {
	cfg, err := config.Load("flightgeo-watcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	region := ""
	if len(os.Args) > 1 {
		region = os.Args[1]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, err := natsadapter.Connect(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Drain()

	t := &tally{counts: make(map[string]*[2]int)}
	sub := natsadapter.NewSubscriber(nc)
	unsubscribe, err := sub.SubscribeRegionChecks(ctx, region, func(_ context.Context, check *domain.RegionCheck) error {
		t.add(check)
		level := slog.LevelDebug
		if check.Inside {
			level = slog.LevelInfo
		}
		slog.Log(ctx, level, "region check",
			"region", check.Region,
			"inside", check.Inside,
			"lng", check.Position.Lng,
			"lat", check.Position.Lat,
			"checked_at", check.CheckedAt)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	slog.Info("watching region checks", "subject", natsadapter.RegionCheckFilter(region))

	ticker := time.NewTicker(summaryInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			t.flush()
		case sig := <-quit:
			slog.Info("shutting down watcher", "signal", sig.String())
			t.flush()
			return
		}
	}
}
