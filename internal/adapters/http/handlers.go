package http

import (
	"errors"
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/flightgeo/internal/core/domain"
	"github.com/samirrijal/flightgeo/internal/core/ports"
)

// IndexHandler serves a small HTML page linking the upstream service.
func IndexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := html.EscapeString(deps.Service.UpstreamURL)
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(fmt.Sprintf(
			`<html><body><h1>flightgeo</h1><h4>Upstream service URL:</h4> <a href="%s" target="_blank"> %s </a></body></html>`,
			u, u))
	}
}

// UIDHandler returns the configured service identifier.
func UIDHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString(deps.Service.UID)
	}
}

// DemoHandler is a connectivity probe kept for old clients.
func DemoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString("demo")
	}
}

// DistanceToHandler returns the planar distance between two positions.
func DistanceToHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.DistanceRequest
		if err := decode(c, distanceSchema, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(deps.Locations.Distance(req.Position1, req.Position2))
	}
}

// IsCloseToHandler reports whether two positions are within the closeness threshold.
func IsCloseToHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.DistanceRequest
		if err := decode(c, distanceSchema, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(deps.Locations.IsCloseTo(req.Position1, req.Position2))
	}
}

// NextPositionHandler returns the position one step from start towards angle.
func NextPositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.NextPositionRequest
		if err := decode(c, nextPositionSchema, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(deps.Locations.NextPosition(req.Start, req.Angle))
	}
}

// IsInRegionHandler tests a position against a region supplied in the body.
func IsInRegionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.RegionRequest
		if err := decode(c, regionSchema, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		if !req.Region.Polygon().Closed() {
			return errBadRequest(c, "region must be closed: the last vertex must repeat the first")
		}

		LoggerFromCtx(c.UserContext()).Info("checking region",
			"region", req.Region.Name, "lng", req.Position.Lng, "lat", req.Position.Lat)

		return c.JSON(deps.Locations.IsInRegion(c.UserContext(), req.Position, req.Region))
	}
}

// ListRegionsHandler returns the region catalog with offset/limit pagination.
func ListRegionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		regions, err := deps.Regions.List(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		total := len(regions)
		if offset >= total {
			regions = []domain.Region{}
		} else {
			regions = regions[offset:min(offset+limit, total)]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: regions, Pagination: pg})
	}
}

// GetRegionHandler returns one catalog region.
func GetRegionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		region, err := deps.Regions.Get(c.UserContext(), c.Params("name"))
		if errors.Is(err, ports.ErrRegionNotFound) {
			return errNotFound(c, "region not found")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(region)
	}
}

// RegionContainsHandler tests a position against a catalog region.
func RegionContainsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.RegionContainsRequest
		if err := decode(c, regionContainsSchema, &req); err != nil {
			return errBadRequest(c, err.Error())
		}

		inside, err := deps.Regions.Contains(c.UserContext(), c.Params("name"), req.Position)
		if errors.Is(err, ports.ErrRegionNotFound) {
			return errNotFound(c, "region not found")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(inside)
	}
}
