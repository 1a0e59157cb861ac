package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/samirrijal/flightgeo/internal/core/domain"
	"github.com/samirrijal/flightgeo/internal/core/ports"
)

// RegionService handles lookups and checks against catalog regions.
type RegionService struct {
	catalog   ports.RegionCatalog
	locations *LocationService
}

// NewRegionService creates a new RegionService.
func NewRegionService(catalog ports.RegionCatalog, locations *LocationService) *RegionService {
	return &RegionService{catalog: catalog, locations: locations}
}

// List returns all catalog regions ordered by name.
func (s *RegionService) List(ctx context.Context) ([]domain.Region, error) {
	regions, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })
	return regions, nil
}

// Get returns a single region by name.
func (s *RegionService) Get(ctx context.Context, name string) (*domain.Region, error) {
	if name == "" {
		return nil, fmt.Errorf("region name must not be empty")
	}
	return s.catalog.Get(ctx, name)
}

// Contains reports whether pos lies in the named region.
func (s *RegionService) Contains(ctx context.Context, name string, pos domain.Position) (bool, error) {
	region, err := s.Get(ctx, name)
	if err != nil {
		return false, err
	}
	return s.locations.IsInRegion(ctx, pos, *region), nil
}
