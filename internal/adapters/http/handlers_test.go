package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/flightgeo/internal/adapters/http"
	"github.com/samirrijal/flightgeo/internal/core/domain"
	"github.com/samirrijal/flightgeo/internal/core/ports"
	"github.com/samirrijal/flightgeo/internal/core/usecases"
	"github.com/samirrijal/flightgeo/internal/pkg/config"
)

// ---- Mocks ----

type mockCatalog struct {
	listFn func(ctx context.Context) ([]domain.Region, error)
	getFn  func(ctx context.Context, name string) (*domain.Region, error)
}

func (m *mockCatalog) List(ctx context.Context) ([]domain.Region, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalog) Get(ctx context.Context, name string) (*domain.Region, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name)
	}
	return nil, fmt.Errorf("%w: %s", ports.ErrRegionNotFound, name)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockBroker struct{ connected bool }

func (m *mockBroker) IsConnected() bool { return m.connected }

// ---- Test helpers ----

func square(name string) domain.Region {
	return domain.Region{
		Name: name,
		Vertices: []domain.Position{
			{Lng: 0, Lat: 0}, {Lng: 10, Lat: 0}, {Lng: 10, Lat: 10}, {Lng: 0, Lat: 10}, {Lng: 0, Lat: 0},
		},
	}
}

func catalogOf(regions ...domain.Region) *mockCatalog {
	return &mockCatalog{
		listFn: func(ctx context.Context) ([]domain.Region, error) {
			return append([]domain.Region(nil), regions...), nil
		},
		getFn: func(ctx context.Context, name string) (*domain.Region, error) {
			for _, r := range regions {
				if r.Name == name {
					r := r
					return &r, nil
				}
			}
			return nil, fmt.Errorf("%w: %s", ports.ErrRegionNotFound, name)
		},
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: handler.ErrorHandler})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	locations := usecases.NewLocationService(nil, nil)
	d := &handler.Dependencies{
		Locations: locations,
		Regions:   usecases.NewRegionService(catalogOf(square("central")), locations),
		Service:   config.ServiceConfig{UID: "s1234567", UpstreamURL: "https://example.org/ilp"},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func post(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

const squareJSON = `{"name":"sq","vertices":[{"lng":0,"lat":0},{"lng":10,"lat":0},{"lng":10,"lat":10},{"lng":0,"lat":10},{"lng":0,"lat":0}]}`

// ---- Service identity ----

func TestIndex_LinksUpstream(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %q", ct)
	}
	if body := string(readBody(t, resp.Body)); !strings.Contains(body, `href="https://example.org/ilp"`) {
		t.Errorf("index does not link upstream: %s", body)
	}
}

func TestUID(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/uid", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := string(readBody(t, resp.Body)); body != "s1234567" {
		t.Errorf("expected uid s1234567, got %q", body)
	}
}

func TestDemo_Deprecated(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/demo", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := string(readBody(t, resp.Body)); body != "demo" {
		t.Errorf("expected demo, got %q", body)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if resp.Header.Get("Sunset") == "" {
		t.Error("expected Sunset header")
	}

	// Non-deprecated siblings carry no deprecation headers.
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/uid", nil), -1)
	if resp.Header.Get("Deprecation") != "" {
		t.Error("uid should not be deprecated")
	}
}

// ---- Geometry endpoints ----

func TestDistanceTo(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := post(t, app, "/api/v1/distanceTo",
		`{"position1":{"lng":0,"lat":0},"position2":{"lng":3,"lat":4}}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var d float64
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatal(err)
	}
	if d != 5 {
		t.Errorf("expected 5, got %v", d)
	}
}

func TestIsCloseTo(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		body string
		want string
	}{
		{`{"position1":{"lng":-3.19,"lat":55.94},"position2":{"lng":-3.1901,"lat":55.94}}`, "true"},
		{`{"position1":{"lng":-3.19,"lat":55.94},"position2":{"lng":-3.191,"lat":55.94}}`, "false"},
	}
	for _, tt := range tests {
		status, body := post(t, app, "/api/v1/isCloseTo", tt.body)
		if status != 200 {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}
		if string(body) != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.body, tt.want, body)
		}
	}
}

func TestNextPosition(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := post(t, app, "/api/v1/nextPosition", `{"start":{"lng":1,"lat":2},"angle":90}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var p domain.Position
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Lng-1) > 1e-12 || math.Abs(p.Lat-2.00015) > 1e-12 {
		t.Errorf("expected (1, 2.00015), got (%v, %v)", p.Lng, p.Lat)
	}
}

func TestIsInRegion(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		name string
		pos  string
		want string
	}{
		{"center", `{"lng":5,"lat":5}`, "true"},
		{"vertex", `{"lng":10,"lat":10}`, "true"},
		{"edge", `{"lng":5,"lat":10}`, "true"},
		{"outside", `{"lng":20,"lat":20}`, "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, "/api/v1/isInRegion",
				`{"position":`+tt.pos+`,"region":`+squareJSON+`}`)
			if status != 200 {
				t.Fatalf("expected 200, got %d: %s", status, body)
			}
			if string(body) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, body)
			}
		})
	}
}

func TestGeometry_ValidationErrors(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		name string
		path string
		body string
	}{
		{"empty body", "/api/v1/distanceTo", ``},
		{"malformed json", "/api/v1/distanceTo", `{"position1":`},
		{"missing position", "/api/v1/distanceTo", `{"position1":{"lng":0,"lat":0}}`},
		{"lng out of range", "/api/v1/isCloseTo", `{"position1":{"lng":200,"lat":0},"position2":{"lng":0,"lat":0}}`},
		{"lat out of range", "/api/v1/isCloseTo", `{"position1":{"lng":0,"lat":-91},"position2":{"lng":0,"lat":0}}`},
		{"string coordinate", "/api/v1/distanceTo", `{"position1":{"lng":"0","lat":0},"position2":{"lng":0,"lat":0}}`},
		{"missing angle", "/api/v1/nextPosition", `{"start":{"lng":0,"lat":0}}`},
		{"too few vertices", "/api/v1/isInRegion",
			`{"position":{"lng":0,"lat":0},"region":{"name":"r","vertices":[{"lng":0,"lat":0},{"lng":1,"lat":0},{"lng":0,"lat":0}]}}`},
		{"empty vertices", "/api/v1/isInRegion", `{"position":{"lng":0,"lat":0},"region":{"name":"r","vertices":[]}}`},
		{"open ring", "/api/v1/isInRegion",
			`{"position":{"lng":0,"lat":0},"region":{"name":"r","vertices":[{"lng":0,"lat":0},{"lng":1,"lat":0},{"lng":1,"lat":1},{"lng":0,"lat":1}]}}`},
		{"missing region name", "/api/v1/isInRegion",
			`{"position":{"lng":0,"lat":0},"region":{"vertices":[{"lng":0,"lat":0},{"lng":1,"lat":0},{"lng":1,"lat":1},{"lng":0,"lat":0}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, tt.path, tt.body)
			if status != 400 {
				t.Fatalf("expected 400, got %d: %s", status, body)
			}
			var apiErr handler.APIError
			if err := json.Unmarshal(body, &apiErr); err != nil {
				t.Fatal(err)
			}
			if apiErr.Code != "bad_request" {
				t.Errorf("expected code bad_request, got %q", apiErr.Code)
			}
			if apiErr.RequestID == "" {
				t.Error("expected request_id in error body")
			}
		})
	}
}

// ---- Region catalog ----

func TestListRegions_Pagination(t *testing.T) {
	regions := make([]domain.Region, 5)
	for i := range regions {
		regions[i] = square(fmt.Sprintf("zone-%d", i))
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Regions = usecases.NewRegionService(catalogOf(regions...), d.Locations)
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/regions?offset=2&limit=2", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Region `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 || result.Data[0].Name != "zone-2" {
		t.Errorf("expected zone-2 and zone-3, got %+v", result.Data)
	}

	link := resp.Header.Get("Link")
	for _, rel := range []string{`rel="first"`, `rel="prev"`, `rel="next"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("Link header missing %s: %s", rel, link)
		}
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("expected long Cache-Control on regions, got %q", cc)
	}
}

func TestListRegions_OffsetPastEnd(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/regions?offset=10", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data []domain.Region `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Data == nil || len(result.Data) != 0 {
		t.Errorf("expected empty data array, got %+v", result.Data)
	}
}

func TestListRegions_CatalogError(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Regions = usecases.NewRegionService(&mockCatalog{
			listFn: func(ctx context.Context) ([]domain.Region, error) { return nil, errors.New("boom") },
		}, d.Locations)
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/regions", nil), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestGetRegion(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/regions/central", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var r domain.Region
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		t.Fatal(err)
	}
	if r.Name != "central" || len(r.Vertices) != 5 {
		t.Errorf("unexpected region %+v", r)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("expected ETag on region response")
	}
}

func TestGetRegion_NotModified(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/regions/central", nil), -1)
	etag := resp.Header.Get("ETag")

	req := httptest.NewRequest("GET", "/api/v1/regions/central", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

func TestGetRegion_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/regions/nowhere", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %q", apiErr.Code)
	}
}

func TestRegionContains(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := post(t, app, "/api/v1/regions/central/contains", `{"position":{"lng":5,"lat":5}}`)
	if status != 200 || string(body) != "true" {
		t.Errorf("expected 200 true, got %d %s", status, body)
	}

	status, body = post(t, app, "/api/v1/regions/central/contains", `{"position":{"lng":-5,"lat":5}}`)
	if status != 200 || string(body) != "false" {
		t.Errorf("expected 200 false, got %d %s", status, body)
	}

	status, _ = post(t, app, "/api/v1/regions/nowhere/contains", `{"position":{"lng":5,"lat":5}}`)
	if status != 404 {
		t.Errorf("expected 404 for unknown region, got %d", status)
	}

	status, _ = post(t, app, "/api/v1/regions/central/contains", `{"lng":5,"lat":5}`)
	if status != 400 {
		t.Errorf("expected 400 for missing position, got %d", status)
	}
}

// ---- GraphQL ----

func TestGraphQL_Geometry(t *testing.T) {
	app := setupApp(makeDeps())

	query := `{
		distance(position1: {lng: 0, lat: 0}, position2: {lng: 3, lat: 4})
		isCloseTo(position1: {lng: 0, lat: 0}, position2: {lng: 0.0001, lat: 0})
		inside: isInRegion(position: {lng: 5, lat: 5}, region: {name: "sq", vertices: [
			{lng: 0, lat: 0}, {lng: 10, lat: 0}, {lng: 10, lat: 10}, {lng: 0, lat: 10}, {lng: 0, lat: 0}]})
		region(name: "central") { name vertices { lng lat } }
	}`
	payload, _ := json.Marshal(map[string]string{"query": query})

	status, body := post(t, app, "/graphql", string(payload))
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var result struct {
		Data struct {
			Distance  float64 `json:"distance"`
			IsCloseTo bool    `json:"isCloseTo"`
			Inside    bool    `json:"inside"`
			Region    struct {
				Name     string            `json:"name"`
				Vertices []domain.Position `json:"vertices"`
			} `json:"region"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Data.Distance != 5 {
		t.Errorf("distance: expected 5, got %v", result.Data.Distance)
	}
	if !result.Data.IsCloseTo {
		t.Error("isCloseTo: expected true")
	}
	if !result.Data.Inside {
		t.Error("isInRegion: expected true")
	}
	if result.Data.Region.Name != "central" || len(result.Data.Region.Vertices) != 5 {
		t.Errorf("region: unexpected %+v", result.Data.Region)
	}
}

func TestGraphQL_OpenRegionRejected(t *testing.T) {
	app := setupApp(makeDeps())

	query := `{ isInRegion(position: {lng: 0, lat: 0}, region: {vertices: [
		{lng: 0, lat: 0}, {lng: 1, lat: 0}, {lng: 1, lat: 1}, {lng: 0, lat: 1}]}) }`
	payload, _ := json.Marshal(map[string]string{"query": query})

	_, body := post(t, app, "/graphql", string(payload))
	var result struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	json.Unmarshal(body, &result)
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0].Message, "closed") {
		t.Errorf("expected closed-ring error, got %s", body)
	}
}

func TestGraphQL_EmptyQuery(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := post(t, app, "/graphql", `{"query":""}`)
	if status != 400 {
		t.Errorf("expected 400, got %d", status)
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=10" {
		t.Errorf("expected short Cache-Control, got %q", cc)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name  string
		cache handler.Pinger
		nats  handler.BrokerStatus
		want  int
	}{
		{"nothing configured", nil, nil, 200},
		{"all up", &mockPinger{}, &mockBroker{connected: true}, 200},
		{"cache down", &mockPinger{err: errors.New("dial tcp: refused")}, &mockBroker{connected: true}, 503},
		{"nats down", &mockPinger{}, &mockBroker{connected: false}, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(makeDeps(func(d *handler.Dependencies) {
				d.Cache = tt.cache
				d.NATS = tt.nats
			}))
			resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

// ---- Docs & rate limit ----

func TestDocs_ServesOpenAPI(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := string(readBody(t, resp.Body)); !strings.HasPrefix(body, "openapi:") {
		t.Errorf("unexpected document start: %.40q", body)
	}
}

func TestRateLimit(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) { d.RateLimit = 2 }))

	for i := 0; i < 2; i++ {
		resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/uid", nil), -1)
		if resp.StatusCode != 200 {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}
	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/uid", nil), -1)
	if resp.StatusCode != 429 {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "rate_limited" {
		t.Errorf("expected rate_limited, got %q", apiErr.Code)
	}
}

func TestUnknownRoute_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/nope", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
