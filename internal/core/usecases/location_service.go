package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/flightgeo/internal/core/domain"
	"github.com/samirrijal/flightgeo/internal/core/ports"
	"github.com/samirrijal/flightgeo/internal/pkg/geospatial"
	"github.com/samirrijal/flightgeo/internal/pkg/metrics"
	"github.com/samirrijal/flightgeo/internal/pkg/telemetry"
)

// regionCacheTTL is how long a region check result is cached, in seconds.
// Results are deterministic, so the TTL only bounds cache growth.
const regionCacheTTL = 300

// LocationService exposes the geometry engine to transports.
type LocationService struct {
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewLocationService creates a new LocationService. cache and publisher may be nil.
func NewLocationService(cache ports.CacheService, publisher ports.EventPublisher) *LocationService {
	return &LocationService{cache: cache, publisher: publisher}
}

// Distance returns the planar distance between two positions.
func (s *LocationService) Distance(p1, p2 domain.Position) float64 {
	metrics.GeometryOperations.WithLabelValues("distance").Inc()
	return geospatial.Distance(p1.Point(), p2.Point())
}

// IsCloseTo reports whether two positions are within the closeness threshold.
func (s *LocationService) IsCloseTo(p1, p2 domain.Position) bool {
	metrics.GeometryOperations.WithLabelValues("is_close").Inc()
	return geospatial.IsClose(p1.Point(), p2.Point())
}

// NextPosition moves one fixed step from start towards angleDegrees.
func (s *LocationService) NextPosition(start domain.Position, angleDegrees float64) domain.Position {
	metrics.GeometryOperations.WithLabelValues("next_position").Inc()
	return domain.PositionFromPoint(geospatial.Step(start.Point(), angleDegrees))
}

// IsInRegion reports whether pos lies in region, boundary included.
// The region must have at least one vertex.
func (s *LocationService) IsInRegion(ctx context.Context, pos domain.Position, region domain.Region) bool {
	ctx, span := telemetry.Tracer().Start(ctx, "LocationService.IsInRegion")
	defer span.End()

	metrics.GeometryOperations.WithLabelValues("is_in_region").Inc()
	metrics.RegionVertices.Observe(float64(len(region.Vertices)))

	cacheKey := regionCacheKey(pos, region)
	inside, cached := s.cachedCheck(ctx, cacheKey)
	if !cached {
		inside = geospatial.IsInRegion(pos.Point(), region.Polygon())
		if s.cache != nil {
			_ = s.cache.Set(ctx, cacheKey, []byte(strconv.FormatBool(inside)), regionCacheTTL)
		}
	}

	span.SetAttributes(
		attribute.String("region.name", region.Name),
		attribute.Int("region.vertices", len(region.Vertices)),
		attribute.Bool("region.inside", inside),
		attribute.Bool("cache.hit", cached),
	)

	result := "outside"
	if inside {
		result = "inside"
	}
	metrics.RegionChecks.WithLabelValues(result).Inc()

	s.publish(ctx, &domain.RegionCheck{
		Region:    region.Name,
		Position:  pos,
		Inside:    inside,
		CheckedAt: time.Now().UTC(),
	})

	return inside
}

func (s *LocationService) cachedCheck(ctx context.Context, key string) (inside, ok bool) {
	if s.cache == nil {
		return false, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("region_check").Inc()
		return false, false
	}
	inside, err = strconv.ParseBool(string(data))
	if err != nil {
		metrics.CacheMisses.WithLabelValues("region_check").Inc()
		return false, false
	}
	metrics.CacheHits.WithLabelValues("region_check").Inc()
	return inside, true
}

func (s *LocationService) publish(ctx context.Context, check *domain.RegionCheck) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRegionCheck(ctx, check); err != nil {
		metrics.EventPublishErrors.WithLabelValues("region_check").Inc()
		slog.WarnContext(ctx, "publish region check", "region", check.Region, "error", err)
	}
}

// regionCacheKey hashes the exact inputs; JSON float encoding round-trips,
// so distinct inputs never share a key.
func regionCacheKey(pos domain.Position, region domain.Region) string {
	data, _ := json.Marshal(struct {
		P domain.Position   `json:"p"`
		V []domain.Position `json:"v"`
	}{pos, region.Vertices})
	sum := sha256.Sum256(data)
	return "geo:region:" + hex.EncodeToString(sum[:16])
}
