package regions

import (
	"context"
	"fmt"

	"github.com/samirrijal/flightgeo/internal/core/domain"
	"github.com/samirrijal/flightgeo/internal/core/ports"
	"github.com/samirrijal/flightgeo/internal/pkg/config"
)

// Catalog implements ports.RegionCatalog over regions declared in configuration.
// It is read-only after construction.
type Catalog struct {
	byName map[string]domain.Region
	order  []string
}

// New builds a catalog from region configs. Names must be unique and every
// region needs at least one vertex.
func New(cfgs []config.RegionConfig) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]domain.Region, len(cfgs))}
	for _, rc := range cfgs {
		if rc.Name == "" {
			return nil, fmt.Errorf("region without name")
		}
		if _, dup := c.byName[rc.Name]; dup {
			return nil, fmt.Errorf("duplicate region %q", rc.Name)
		}
		if len(rc.Vertices) == 0 {
			return nil, fmt.Errorf("region %q has no vertices", rc.Name)
		}

		r := domain.Region{Name: rc.Name, Vertices: make([]domain.Position, len(rc.Vertices))}
		for i, v := range rc.Vertices {
			r.Vertices[i] = domain.Position{Lng: v.Lng, Lat: v.Lat}
		}
		c.byName[rc.Name] = r
		c.order = append(c.order, rc.Name)
	}
	return c, nil
}

// List returns copies of all regions in declaration order.
func (c *Catalog) List(_ context.Context) ([]domain.Region, error) {
	out := make([]domain.Region, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, clone(c.byName[name]))
	}
	return out, nil
}

// Get returns a copy of the named region or ports.ErrRegionNotFound.
func (c *Catalog) Get(_ context.Context, name string) (*domain.Region, error) {
	r, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrRegionNotFound, name)
	}
	cp := clone(r)
	return &cp, nil
}

func clone(r domain.Region) domain.Region {
	return domain.Region{Name: r.Name, Vertices: append([]domain.Position(nil), r.Vertices...)}
}
