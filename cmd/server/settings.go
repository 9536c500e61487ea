package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/luxsign/luxsign/internal/pricing"
)

// ensureSettings lazily creates the settings singleton so a fresh database is
// immediately usable by the admin panel.
func (s *server) ensureSettings() error {
	_, err := s.db.Exec(`
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
		) VALUES (1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert default system_settings: %w", err)
	}
	return nil
}

func (s *server) getSettings() (pricing.Settings, error) {
	if err := s.ensureSettings(); err != nil {
		return pricing.Settings{}, err
	}

	var st pricing.Settings
	err := s.db.QueryRow(`
		SELECT
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
		FROM system_settings
		WHERE id = 1
	`).Scan(
		&st.CableFixedCost,
		&st.CornerPiecePrice,
		&st.PrintCostPerM2,
		&st.LaborRatePercent,
		&st.ProfitMarginPercent,
		&st.FabricProfitMarginPercent,
		&st.AmperesPerMeter,
		&st.LedIndoorPricePerMeter,
		&st.LedOutdoorPricePerMeter,
		&st.DefaultLedSpacingCm,
		&st.StandPrice,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.Settings{}, fmt.Errorf("system_settings singleton not found")
		}
		return pricing.Settings{}, fmt.Errorf("query system_settings: %w", err)
	}
	return st, nil
}

func (s *server) updateSettings(st pricing.Settings) error {
	if err := s.ensureSettings(); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		UPDATE system_settings
		SET
			cable_fixed_cost = ?,
			corner_piece_price = ?,
			print_cost_per_m2 = ?,
			labor_rate_percent = ?,
			profit_margin_percent = ?,
			fabric_profit_margin_percent = ?,
			amperes_per_meter = ?,
			led_indoor_price_per_meter = ?,
			led_outdoor_price_per_meter = ?,
			default_led_spacing_cm = ?,
			stand_price = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		st.CableFixedCost,
		st.CornerPiecePrice,
		st.PrintCostPerM2,
		st.LaborRatePercent,
		st.ProfitMarginPercent,
		st.FabricProfitMarginPercent,
		st.AmperesPerMeter,
		st.LedIndoorPricePerMeter,
		st.LedOutdoorPricePerMeter,
		st.DefaultLedSpacingCm,
		st.StandPrice,
	)
	if err != nil {
		return fmt.Errorf("update system_settings: %w", err)
	}

	return nil
}

func validateSettings(st pricing.Settings) error {
	nonNegative := map[string]float64{
		"cable_fixed_cost":            st.CableFixedCost,
		"corner_piece_price":          st.CornerPiecePrice,
		"print_cost_per_m2":           st.PrintCostPerM2,
		"amperes_per_meter":           st.AmperesPerMeter,
		"led_indoor_price_per_meter":  st.LedIndoorPricePerMeter,
		"led_outdoor_price_per_meter": st.LedOutdoorPricePerMeter,
		"default_led_spacing_cm":      st.DefaultLedSpacingCm,
		"stand_price":                 st.StandPrice,
	}
	for field, value := range nonNegative {
		if value < 0 {
			return fmt.Errorf("%s must be greater than or equal to 0", field)
		}
	}

	percents := map[string]float64{
		"labor_rate_percent":           st.LaborRatePercent,
		"profit_margin_percent":        st.ProfitMarginPercent,
		"fabric_profit_margin_percent": st.FabricProfitMarginPercent,
	}
	for field, value := range percents {
		if value < 0 || value > 100 {
			return fmt.Errorf("%s must be between 0 and 100", field)
		}
	}

	return nil
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	st, err := s.getSettings()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var st pricing.Settings
	if err := decodeJSON(r, &st); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateSettings(st); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.updateSettings(st); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	respondJSON(w, http.StatusOK, st)
}
