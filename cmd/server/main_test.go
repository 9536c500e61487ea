package main

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/luxsign/luxsign/internal/db"
	"github.com/luxsign/luxsign/internal/migrations"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "server-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return &server{db: database, jwtSecret: []byte("test-secret")}
}

// seedPricingFixtures installs the rate snapshot and catalogs the engine
// tests are written against and returns the seeded profile id.
func seedPricingFixtures(t *testing.T, s *server) int64 {
	t.Helper()

	_, err := s.db.Exec(`
		INSERT INTO system_settings (
			id, cable_fixed_cost, corner_piece_price, print_cost_per_m2,
			labor_rate_percent, profit_margin_percent, fabric_profit_margin_percent,
			amperes_per_meter, led_indoor_price_per_meter, led_outdoor_price_per_meter,
			default_led_spacing_cm, stand_price
		) VALUES (1, 100, 10, 300, 20, 30, 50, 0.6, 50, 80, 15, 250)
	`)
	if err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO profile_options (name, depth_cm, double_sided, price_per_meter, active)
		VALUES ('8cm single', 8, FALSE, 40, TRUE)
	`)
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	profileID, _ := result.LastInsertId()

	_, err = s.db.Exec(`
		INSERT INTO backing_materials (code, name, price_per_m2, led_spacing_cm, active)
		VALUES ('mdf', 'MDF', 200, 0, TRUE)
	`)
	if err != nil {
		t.Fatalf("seed backing: %v", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO adapter_prices (name, amperes, watts, price, active) VALUES
		('2A', 2, 24, 10, TRUE),
		('5A', 5, 60, 20, TRUE),
		('10A', 10, 120, 35, TRUE),
		('20A', 20, 240, 60, TRUE),
		('30A', 30, 360, 90, TRUE)
	`)
	if err != nil {
		t.Fatalf("seed adapters: %v", err)
	}

	return profileID
}

// withURLParam attaches a chi route parameter to a test request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withID(r *http.Request, id int64) *http.Request {
	return withURLParam(r, "id", strconv.FormatInt(id, 10))
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
