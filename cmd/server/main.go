package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luxsign/luxsign/internal/config"
	"github.com/luxsign/luxsign/internal/db"
	"github.com/luxsign/luxsign/internal/migrations"
	"github.com/luxsign/luxsign/internal/seed"
)

type server struct {
	db        *sql.DB
	jwtSecret []byte
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seed inserted %d rows", stats.Inserts)
	}

	srv := &server{db: database, jwtSecret: []byte(cfg.JWTSecret)}

	r := chi.NewRouter()

	// Public configurator API.
	r.Post("/api/login", srv.handleLogin)
	r.Post("/api/calculate", srv.handleCalculate)
	r.Post("/api/calculate/fabric", srv.handleCalculateFabric)
	r.Post("/api/orders", srv.handleOrderCreate)
	r.Get("/api/orders/{id}", srv.handleOrderLookup)
	r.Post("/api/wheel/spin", srv.handleWheelSpin)
	r.Post("/api/discounts/validate", srv.handleDiscountValidate)

	// Admin API.
	r.Group(func(r chi.Router) {
		r.Use(srv.adminOnly)

		r.Get("/api/admin/settings", srv.handleSettingsGet)
		r.Put("/api/admin/settings", srv.handleSettingsUpdate)

		r.Get("/api/admin/profiles", srv.handleProfilesList)
		r.Post("/api/admin/profiles", srv.handleProfileCreate)
		r.Post("/api/admin/profiles/{id}", srv.handleProfileUpdate)

		r.Get("/api/admin/backings", srv.handleBackingsList)
		r.Post("/api/admin/backings", srv.handleBackingCreate)
		r.Post("/api/admin/backings/{id}", srv.handleBackingUpdate)

		r.Get("/api/admin/adapters", srv.handleAdaptersList)
		r.Post("/api/admin/adapters", srv.handleAdapterCreate)
		r.Post("/api/admin/adapters/{id}", srv.handleAdapterUpdate)

		r.Get("/api/admin/wheel", srv.handleWheelSlicesList)
		r.Post("/api/admin/wheel", srv.handleWheelSliceCreate)

		r.Get("/api/admin/orders", srv.handleOrdersList)
		r.Post("/api/admin/orders/{id}/status", srv.handleOrderStatusUpdate)

		r.Get("/api/admin/discounts", srv.handleDiscountsList)
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
