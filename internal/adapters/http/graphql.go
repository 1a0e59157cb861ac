package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/flightgeo/internal/core/domain"
)

// minRegionVertices matches the JSON Schema rule applied to REST bodies.
const minRegionVertices = 4

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"lng": &graphql.Field{Type: graphql.Float},
			"lat": &graphql.Field{Type: graphql.Float},
		},
	})

	regionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Region",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"vertices": &graphql.Field{Type: graphql.NewList(positionType)},
		},
	})

	positionInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PositionInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lng": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	regionInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "RegionInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.String, DefaultValue: ""},
			"vertices": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(positionInput)))},
		},
	})

	pairArgs := graphql.FieldConfigArgument{
		"position1": &graphql.ArgumentConfig{Type: graphql.NewNonNull(positionInput)},
		"position2": &graphql.ArgumentConfig{Type: graphql.NewNonNull(positionInput)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Planar distance between two positions",
				Args:        pairArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.Distance(positionArg(p.Args["position1"]), positionArg(p.Args["position2"])), nil
				},
			},
			"isCloseTo": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Whether two positions are within the closeness threshold",
				Args:        pairArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.IsCloseTo(positionArg(p.Args["position1"]), positionArg(p.Args["position2"])), nil
				},
			},
			"nextPosition": &graphql.Field{
				Type:        positionType,
				Description: "Position one step from start towards angle (degrees)",
				Args: graphql.FieldConfigArgument{
					"start": &graphql.ArgumentConfig{Type: graphql.NewNonNull(positionInput)},
					"angle": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					angle, _ := p.Args["angle"].(float64)
					return deps.Locations.NextPosition(positionArg(p.Args["start"]), angle), nil
				},
			},
			"isInRegion": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Whether a position lies in a closed region, boundary included",
				Args: graphql.FieldConfigArgument{
					"position": &graphql.ArgumentConfig{Type: graphql.NewNonNull(positionInput)},
					"region":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(regionInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					region, err := regionArg(p.Args["region"])
					if err != nil {
						return nil, err
					}
					return deps.Locations.IsInRegion(p.Context, positionArg(p.Args["position"]), region), nil
				},
			},
			"regions": &graphql.Field{
				Type:        graphql.NewList(regionType),
				Description: "List catalog regions",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Regions.List(p.Context)
				},
			},
			"region": &graphql.Field{
				Type:        regionType,
				Description: "Get a catalog region by name",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					return deps.Regions.Get(p.Context, name)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func positionArg(v interface{}) domain.Position {
	m, _ := v.(map[string]interface{})
	lng, _ := m["lng"].(float64)
	lat, _ := m["lat"].(float64)
	return domain.Position{Lng: lng, Lat: lat}
}

func regionArg(v interface{}) (domain.Region, error) {
	m, _ := v.(map[string]interface{})
	name, _ := m["name"].(string)
	raw, _ := m["vertices"].([]interface{})

	region := domain.Region{Name: name, Vertices: make([]domain.Position, 0, len(raw))}
	for _, r := range raw {
		region.Vertices = append(region.Vertices, positionArg(r))
	}

	if len(region.Vertices) < minRegionVertices {
		return domain.Region{}, fmt.Errorf("region needs at least %d vertices, got %d", minRegionVertices, len(region.Vertices))
	}
	if !region.Polygon().Closed() {
		return domain.Region{}, errors.New("region must be closed: the last vertex must repeat the first")
	}
	return region, nil
}

// GraphQLHandler returns a Fiber handler that executes GraphQL queries.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
