package seed

import (
	"database/sql"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/luxsign/luxsign/internal/db"
	"github.com/luxsign/luxsign/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	cfg := Config{
		AdminEmail:    "admin@luxsign.co",
		AdminPassword: "12345",
	}

	// 1 admin + 1 settings + 4 profiles + 2 backings + 6 adapters + 4 slices.
	const firstRunInserts = 18

	for i := 0; i < 5; i++ {
		stats, err := Run(database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != firstRunInserts {
				t.Fatalf("expected %d inserts in first run, got %d", firstRunInserts, stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = 'admin@luxsign.co'`, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM system_settings WHERE id = 1`, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM profile_options`, 4)
	assertCount(t, database, `SELECT COUNT(*) FROM backing_materials`, 2)
	assertCount(t, database, `SELECT COUNT(*) FROM adapter_prices`, 6)
	assertCount(t, database, `SELECT COUNT(*) FROM wheel_slices`, 4)

	var hash string
	if err := database.QueryRow(`SELECT password_hash FROM users WHERE email = 'admin@luxsign.co'`).Scan(&hash); err != nil {
		t.Fatalf("query admin hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("12345")); err != nil {
		t.Fatalf("expected admin hash to match password: %v", err)
	}
}

func TestRunSkipsAdminWithoutCredentials(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seed-noadmin.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	stats, err := Run(database, Config{})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 17 {
		t.Fatalf("expected 17 inserts without admin, got %d", stats.Inserts)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM users`, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, expected int) {
	t.Helper()

	var count int
	if err := database.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d (query: %s)", expected, count, query)
	}
}
