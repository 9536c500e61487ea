package main

import (
	"errors"
	"net/http"

	"github.com/luxsign/luxsign/internal/pricing"
)

type calcRequest struct {
	WidthCm     float64 `json:"width_cm" validate:"gt=0"`
	HeightCm    float64 `json:"height_cm" validate:"gt=0"`
	ProfileID   int64   `json:"profile_id" validate:"required"`
	BackingCode string  `json:"backing_code" validate:"required"`
	LedType     string  `json:"led_type" validate:"required,oneof=indoor outdoor"`
	DoubleSided bool    `json:"double_sided"`
}

// priceConfiguration loads the settings snapshot and catalogs and runs the
// engine. Both the calculate endpoint and checkout use it, so an order can
// never freeze a price the calculator would not have produced.
func (s *server) priceConfiguration(req calcRequest) (pricing.Breakdown, error) {
	settings, err := s.getSettings()
	if err != nil {
		return pricing.Breakdown{}, err
	}

	profile, err := s.getProfile(req.ProfileID)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	backing, err := s.getBacking(req.BackingCode)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	adapters, err := s.listActiveAdapters()
	if err != nil {
		return pricing.Breakdown{}, err
	}

	input := pricing.Input{
		WidthCm:     req.WidthCm,
		HeightCm:    req.HeightCm,
		DepthCm:     profile.DepthCm,
		DoubleSided: req.DoubleSided,
		LedType:     pricing.LedType(req.LedType),
		Profile:     profile,
		Backing:     backing,
	}

	return pricing.Calculate(input, settings, adapters)
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	breakdown, err := s.priceConfiguration(req)
	if err != nil {
		if errors.Is(err, pricing.ErrValidation) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to calculate price")
		return
	}

	respondJSON(w, http.StatusOK, breakdown)
}

type fabricCalcRequest struct {
	WidthCm     float64 `json:"width_cm" validate:"gt=0"`
	HeightCm    float64 `json:"height_cm" validate:"gt=0"`
	DoubleSided bool    `json:"double_sided"`
	WithStand   bool    `json:"with_stand"`
}

func (s *server) handleCalculateFabric(w http.ResponseWriter, r *http.Request) {
	var req fabricCalcRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := s.getSettings()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	breakdown, err := pricing.CalculateFabric(pricing.FabricInput{
		WidthCm:     req.WidthCm,
		HeightCm:    req.HeightCm,
		DoubleSided: req.DoubleSided,
		WithStand:   req.WithStand,
	}, settings)
	if err != nil {
		if errors.Is(err, pricing.ErrValidation) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to calculate price")
		return
	}

	respondJSON(w, http.StatusOK, breakdown)
}
