// Package seed installs the baseline data the service needs on first boot:
// the admin user, the settings singleton and starter catalogs. Every step is
// idempotent so the seed can run on each start.
package seed

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type profileRow struct {
	name          string
	depthCm       float64
	doubleSided   bool
	pricePerMeter float64
}

type backingRow struct {
	code       string
	name       string
	pricePerM2 float64
}

type adapterRow struct {
	name    string
	amperes float64
	watts   float64
	price   float64
}

type sliceRow struct {
	label      string
	percentage float64
	weight     float64
	isLoss     bool
}

var (
	defaultProfiles = []profileRow{
		{"7 cm single-sided", 7, false, 95},
		{"7 cm double-sided", 7, true, 150},
		{"9 cm single-sided", 9, false, 120},
		{"9 cm double-sided", 9, true, 185},
	}
	defaultBackings = []backingRow{
		{"mdf", "MDF panel", 220},
		{"composite", "Aluminum composite panel", 380},
	}
	defaultAdapters = []adapterRow{
		{"2A adapter", 2, 24, 120},
		{"5A adapter", 5, 60, 180},
		{"10A adapter", 10, 120, 260},
		{"16.5A adapter", 16.5, 200, 380},
		{"20A adapter", 20, 240, 450},
		{"30A adapter", 30, 360, 600},
	}
	defaultSlices = []sliceRow{
		{"5% discount", 5, 40, false},
		{"10% discount", 10, 25, false},
		{"15% discount", 15, 10, false},
		{"Better luck next time", 0, 25, true},
	}
)

// Run executes the startup seed in an idempotent way.
func Run(database *sql.DB, cfg Config) (Stats, error) {
	tx, err := database.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	steps := []func(*sql.Tx, *Stats) error{
		func(tx *sql.Tx, s *Stats) error { return seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, s) },
		ensureSettings,
		ensureProfiles,
		ensureBackings,
		ensureAdapters,
		ensureWheelSlices,
	}
	for _, step := range steps {
		if err := step(tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSettings(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM system_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO system_settings (
			id,
			cable_fixed_cost,
			corner_piece_price,
			print_cost_per_m2,
			labor_rate_percent,
			profit_margin_percent,
			fabric_profit_margin_percent,
			amperes_per_meter,
			led_indoor_price_per_meter,
			led_outdoor_price_per_meter,
			default_led_spacing_cm,
			stand_price
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, 150, 25, 450, 30, 25, 40, 0.6, 95, 140, 15, 350); err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureProfiles(tx *sql.Tx, stats *Stats) error {
	for _, p := range defaultProfiles {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM profile_options WHERE name = ? LIMIT 1)`, p.name).Scan(&exists); err != nil {
			return fmt.Errorf("check profile existence: %w", err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO profile_options (name, depth_cm, double_sided, price_per_meter, active)
			VALUES (?, ?, ?, ?, TRUE)
		`, p.name, p.depthCm, p.doubleSided, p.pricePerMeter); err != nil {
			return fmt.Errorf("insert profile %q: %w", p.name, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureBackings(tx *sql.Tx, stats *Stats) error {
	for _, b := range defaultBackings {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM backing_materials WHERE code = ? LIMIT 1)`, b.code).Scan(&exists); err != nil {
			return fmt.Errorf("check backing existence: %w", err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO backing_materials (code, name, price_per_m2, led_spacing_cm, active)
			VALUES (?, ?, ?, 0, TRUE)
		`, b.code, b.name, b.pricePerM2); err != nil {
			return fmt.Errorf("insert backing %q: %w", b.code, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureAdapters(tx *sql.Tx, stats *Stats) error {
	for _, a := range defaultAdapters {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM adapter_prices WHERE name = ? LIMIT 1)`, a.name).Scan(&exists); err != nil {
			return fmt.Errorf("check adapter existence: %w", err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO adapter_prices (name, amperes, watts, price, active)
			VALUES (?, ?, ?, ?, TRUE)
		`, a.name, a.amperes, a.watts, a.price); err != nil {
			return fmt.Errorf("insert adapter %q: %w", a.name, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureWheelSlices(tx *sql.Tx, stats *Stats) error {
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM wheel_slices`).Scan(&count); err != nil {
		return fmt.Errorf("count wheel slices: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, s := range defaultSlices {
		if _, err := tx.Exec(`
			INSERT INTO wheel_slices (label, percentage, weight, is_loss, active)
			VALUES (?, ?, ?, ?, TRUE)
		`, s.label, s.percentage, s.weight, s.isLoss); err != nil {
			return fmt.Errorf("insert wheel slice %q: %w", s.label, err)
		}
		stats.Inserts++
	}
	return nil
}
