package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/xeipuuv/gojsonschema"
)

const positionSchema = `{
	"type": "object",
	"required": ["lng", "lat"],
	"properties": {
		"lng": {"type": "number", "minimum": -180, "maximum": 180},
		"lat": {"type": "number", "minimum": -90, "maximum": 90}
	}
}`

// Request body schemas. Every body must be a JSON object; unknown fields are ignored.
var (
	distanceSchema = mustSchema(`{
		"type": "object",
		"required": ["position1", "position2"],
		"properties": {
			"position1": {"$ref": "#/definitions/position"},
			"position2": {"$ref": "#/definitions/position"}
		},
		"definitions": {"position": ` + positionSchema + `}
	}`)

	nextPositionSchema = mustSchema(`{
		"type": "object",
		"required": ["start", "angle"],
		"properties": {
			"start": {"$ref": "#/definitions/position"},
			"angle": {"type": "number"}
		},
		"definitions": {"position": ` + positionSchema + `}
	}`)

	regionSchema = mustSchema(`{
		"type": "object",
		"required": ["position", "region"],
		"properties": {
			"position": {"$ref": "#/definitions/position"},
			"region": {
				"type": "object",
				"required": ["name", "vertices"],
				"properties": {
					"name": {"type": "string"},
					"vertices": {
						"type": "array",
						"minItems": 4,
						"items": {"$ref": "#/definitions/position"}
					}
				}
			}
		},
		"definitions": {"position": ` + positionSchema + `}
	}`)

	regionContainsSchema = mustSchema(`{
		"type": "object",
		"required": ["position"],
		"properties": {
			"position": {"$ref": "#/definitions/position"}
		},
		"definitions": {"position": ` + positionSchema + `}
	}`)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("request schema: " + err.Error())
	}
	return s
}

// validateBody checks a raw request body against schema and returns a
// client-facing description of every violation.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("request body is required")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}

// decode validates the request body against schema, then unmarshals it into v.
func decode(c *fiber.Ctx, schema *gojsonschema.Schema, v any) error {
	body := c.Body()
	if err := validateBody(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	return nil
}
