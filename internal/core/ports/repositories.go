package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/flightgeo/internal/core/domain"
)

// ErrRegionNotFound is returned when a named region is not in the catalog.
var ErrRegionNotFound = errors.New("region not found")

// RegionCatalog serves the named regions known to the service.
type RegionCatalog interface {
	List(ctx context.Context) ([]domain.Region, error)
	Get(ctx context.Context, name string) (*domain.Region, error)
}
