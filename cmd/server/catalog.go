package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luxsign/luxsign/internal/pricing"
)

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

//
// Profiles
//

type profilePayload struct {
	Name          string  `json:"name" validate:"required"`
	DepthCm       float64 `json:"depth_cm" validate:"gt=0"`
	DoubleSided   bool    `json:"double_sided"`
	PricePerMeter float64 `json:"price_per_meter" validate:"gt=0"`
	Active        *bool   `json:"active"`
}

func (p profilePayload) active() bool {
	return p.Active == nil || *p.Active
}

func (s *server) handleProfilesList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT id, name, depth_cm, double_sided, price_per_meter
		FROM profile_options
		WHERE active
		ORDER BY depth_cm, double_sided
	`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load profiles")
		return
	}
	defer rows.Close()

	profiles := make([]pricing.ProfileOption, 0)
	for rows.Next() {
		var p pricing.ProfileOption
		if err := rows.Scan(&p.ID, &p.Name, &p.DepthCm, &p.DoubleSided, &p.PricePerMeter); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load profiles")
			return
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load profiles")
		return
	}

	respondJSON(w, http.StatusOK, profiles)
}

func (s *server) handleProfileCreate(w http.ResponseWriter, r *http.Request) {
	var req profilePayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		INSERT INTO profile_options (name, depth_cm, double_sided, price_per_meter, active)
		VALUES (?, ?, ?, ?, ?)
	`, req.Name, req.DepthCm, req.DoubleSided, req.PricePerMeter, req.active())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	id, _ := result.LastInsertId()
	respondJSON(w, http.StatusCreated, pricing.ProfileOption{
		ID:            id,
		Name:          req.Name,
		DepthCm:       req.DepthCm,
		DoubleSided:   req.DoubleSided,
		PricePerMeter: req.PricePerMeter,
	})
}

func (s *server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	var req profilePayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		UPDATE profile_options
		SET
			name = ?,
			depth_cm = ?,
			double_sided = ?,
			price_per_meter = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, req.Name, req.DepthCm, req.DoubleSided, req.PricePerMeter, req.active(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *server) getProfile(id int64) (pricing.ProfileOption, error) {
	var p pricing.ProfileOption
	err := s.db.QueryRow(`
		SELECT id, name, depth_cm, double_sided, price_per_meter
		FROM profile_options
		WHERE id = ? AND active
	`, id).Scan(&p.ID, &p.Name, &p.DepthCm, &p.DoubleSided, &p.PricePerMeter)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.ProfileOption{}, fmt.Errorf("%w: profile %d not found", pricing.ErrValidation, id)
	}
	if err != nil {
		return pricing.ProfileOption{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

//
// Backing materials
//

type backingPayload struct {
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	PricePerM2   float64 `json:"price_per_m2" validate:"gt=0"`
	LedSpacingCm float64 `json:"led_spacing_cm" validate:"gte=0"`
	Active       *bool   `json:"active"`
}

func (p backingPayload) active() bool {
	return p.Active == nil || *p.Active
}

func (s *server) handleBackingsList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT id, code, name, price_per_m2, led_spacing_cm
		FROM backing_materials
		WHERE active
		ORDER BY name
	`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load backing materials")
		return
	}
	defer rows.Close()

	backings := make([]pricing.BackingOption, 0)
	for rows.Next() {
		var b pricing.BackingOption
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.PricePerM2, &b.LedSpacingCm); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load backing materials")
			return
		}
		backings = append(backings, b)
	}
	if err := rows.Err(); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load backing materials")
		return
	}

	respondJSON(w, http.StatusOK, backings)
}

func (s *server) handleBackingCreate(w http.ResponseWriter, r *http.Request) {
	var req backingPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		INSERT INTO backing_materials (code, name, price_per_m2, led_spacing_cm, active)
		VALUES (?, ?, ?, ?, ?)
	`, req.Code, req.Name, req.PricePerM2, req.LedSpacingCm, req.active())
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, fmt.Sprintf("backing material code %q already exists", req.Code))
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create backing material")
		return
	}

	id, _ := result.LastInsertId()
	respondJSON(w, http.StatusCreated, pricing.BackingOption{
		ID:           id,
		Code:         req.Code,
		Name:         req.Name,
		PricePerM2:   req.PricePerM2,
		LedSpacingCm: req.LedSpacingCm,
	})
}

func (s *server) handleBackingUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid backing material id")
		return
	}

	var req backingPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		UPDATE backing_materials
		SET
			code = ?,
			name = ?,
			price_per_m2 = ?,
			led_spacing_cm = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, req.Code, req.Name, req.PricePerM2, req.LedSpacingCm, req.active(), id)
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, fmt.Sprintf("backing material code %q already exists", req.Code))
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update backing material")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "backing material not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *server) getBacking(code string) (pricing.BackingOption, error) {
	var b pricing.BackingOption
	err := s.db.QueryRow(`
		SELECT id, code, name, price_per_m2, led_spacing_cm
		FROM backing_materials
		WHERE code = ? AND active
	`, code).Scan(&b.ID, &b.Code, &b.Name, &b.PricePerM2, &b.LedSpacingCm)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.BackingOption{}, fmt.Errorf("%w: backing material %q not found", pricing.ErrValidation, code)
	}
	if err != nil {
		return pricing.BackingOption{}, fmt.Errorf("query backing material: %w", err)
	}
	return b, nil
}

//
// Adapters
//

type adapterPayload struct {
	Name    string  `json:"name" validate:"required"`
	Amperes float64 `json:"amperes" validate:"gt=0"`
	Watts   float64 `json:"watts" validate:"gte=0"`
	Price   float64 `json:"price" validate:"gt=0"`
	Active  *bool   `json:"active"`
}

func (p adapterPayload) active() bool {
	return p.Active == nil || *p.Active
}

func (s *server) handleAdaptersList(w http.ResponseWriter, r *http.Request) {
	adapters, err := s.listActiveAdapters()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load adapters")
		return
	}
	respondJSON(w, http.StatusOK, adapters)
}

func (s *server) handleAdapterCreate(w http.ResponseWriter, r *http.Request) {
	var req adapterPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		INSERT INTO adapter_prices (name, amperes, watts, price, active)
		VALUES (?, ?, ?, ?, ?)
	`, req.Name, req.Amperes, req.Watts, req.Price, req.active())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create adapter")
		return
	}

	id, _ := result.LastInsertId()
	respondJSON(w, http.StatusCreated, pricing.AdapterOption{
		ID:      id,
		Name:    req.Name,
		Amperes: req.Amperes,
		Watts:   req.Watts,
		Price:   req.Price,
	})
}

func (s *server) handleAdapterUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid adapter id")
		return
	}

	var req adapterPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.Exec(`
		UPDATE adapter_prices
		SET
			name = ?,
			amperes = ?,
			watts = ?,
			price = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, req.Name, req.Amperes, req.Watts, req.Price, req.active(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update adapter")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "adapter not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *server) listActiveAdapters() ([]pricing.AdapterOption, error) {
	rows, err := s.db.Query(`
		SELECT id, name, amperes, watts, price
		FROM adapter_prices
		WHERE active
		ORDER BY amperes
	`)
	if err != nil {
		return nil, fmt.Errorf("query adapters: %w", err)
	}
	defer rows.Close()

	adapters := make([]pricing.AdapterOption, 0)
	for rows.Next() {
		var a pricing.AdapterOption
		if err := rows.Scan(&a.ID, &a.Name, &a.Amperes, &a.Watts, &a.Price); err != nil {
			return nil, fmt.Errorf("scan adapter: %w", err)
		}
		adapters = append(adapters, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adapters: %w", err)
	}

	return adapters, nil
}
