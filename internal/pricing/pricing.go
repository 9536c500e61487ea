// Package pricing contains the lightbox costing engine: LED layout planning,
// power adapter selection and the itemized price breakdown. Everything here is
// a pure function of its inputs; settings and catalogs are fetched by the
// caller and passed by value, so the package is safe for concurrent use.
package pricing

import (
	"errors"
	"fmt"
)

// ErrValidation marks input or catalog problems the caller should surface as
// a rejected request rather than a server fault.
var ErrValidation = errors.New("validation")

// LedType selects which per-meter LED rate applies.
type LedType string

const (
	LedIndoor  LedType = "indoor"
	LedOutdoor LedType = "outdoor"
)

// Valid reports whether t is one of the known LED types.
func (t LedType) Valid() bool {
	return t == LedIndoor || t == LedOutdoor
}

// Settings is the global rate snapshot, loaded once per request from the
// settings singleton.
type Settings struct {
	CableFixedCost            float64 `json:"cable_fixed_cost"`
	CornerPiecePrice          float64 `json:"corner_piece_price"`
	PrintCostPerM2            float64 `json:"print_cost_per_m2"`
	LaborRatePercent          float64 `json:"labor_rate_percent"`
	ProfitMarginPercent       float64 `json:"profit_margin_percent"`
	FabricProfitMarginPercent float64 `json:"fabric_profit_margin_percent"`
	AmperesPerMeter           float64 `json:"amperes_per_meter"`
	LedIndoorPricePerMeter    float64 `json:"led_indoor_price_per_meter"`
	LedOutdoorPricePerMeter   float64 `json:"led_outdoor_price_per_meter"`
	DefaultLedSpacingCm       float64 `json:"default_led_spacing_cm"`
	StandPrice                float64 `json:"stand_price"`
}

// ProfileOption is one frame profile row, keyed by depth and sidedness. The
// double-sided price already accounts for producing both faces.
type ProfileOption struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	DepthCm       float64 `json:"depth_cm"`
	DoubleSided   bool    `json:"double_sided"`
	PricePerMeter float64 `json:"price_per_meter"`
}

// BackingOption is one backing material row. LedSpacingCm of 0 means the
// material has no override and the default spacing from Settings applies.
type BackingOption struct {
	ID           int64   `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	PricePerM2   float64 `json:"price_per_m2"`
	LedSpacingCm float64 `json:"led_spacing_cm"`
}

// Input is one lightbox configuration to price.
type Input struct {
	WidthCm     float64
	HeightCm    float64
	DepthCm     float64
	DoubleSided bool
	LedType     LedType
	Profile     ProfileOption
	Backing     BackingOption
}

// Breakdown is the full itemized costing result. RawMaterialTotal is always
// the exact sum of the seven cost lines above it.
type Breakdown struct {
	ProfileCost     float64 `json:"profile_cost"`
	BackingCost     float64 `json:"backing_cost"`
	PrintCost       float64 `json:"print_cost"`
	LedCost         float64 `json:"led_cost"`
	AdapterCost     float64 `json:"adapter_cost"`
	CableCost       float64 `json:"cable_cost"`
	CornerPieceCost float64 `json:"corner_piece_cost"`

	RawMaterialTotal float64 `json:"raw_material_total"`
	LaborCost        float64 `json:"labor_cost"`
	ProfitMargin     float64 `json:"profit_margin"`
	FinalPrice       float64 `json:"final_price"`

	SelectedLayout    Layout  `json:"selected_layout"`
	AlternativeLayout Layout  `json:"alternative_layout"`
	AdapterName       string  `json:"adapter_name"`
	RequiredAmperes   float64 `json:"required_amperes"`
	SelectedAmperes   float64 `json:"selected_amperes"`
	AdapterUndersized bool    `json:"adapter_undersized"`

	PerimeterM float64 `json:"perimeter_m"`
	AreaM2     float64 `json:"area_m2"`
}

// Calculate prices one lightbox configuration against the settings snapshot
// and adapter catalog. It returns a validation error for non-positive
// dimensions and for zero-priced catalog rows; nothing is ever silently
// priced at zero.
func Calculate(in Input, settings Settings, adapters []AdapterOption) (Breakdown, error) {
	if in.WidthCm <= 0 || in.HeightCm <= 0 {
		return Breakdown{}, fmt.Errorf("%w: width and height must be greater than 0", ErrValidation)
	}
	if !in.LedType.Valid() {
		return Breakdown{}, fmt.Errorf("%w: unknown led type %q", ErrValidation, in.LedType)
	}
	if in.Profile.PricePerMeter <= 0 {
		return Breakdown{}, fmt.Errorf("%w: profile %q has no price per meter", ErrValidation, in.Profile.Name)
	}
	if in.Backing.PricePerM2 <= 0 {
		return Breakdown{}, fmt.Errorf("%w: backing material %q has no price per m2", ErrValidation, in.Backing.Code)
	}

	ledRate := settings.LedIndoorPricePerMeter
	if in.LedType == LedOutdoor {
		ledRate = settings.LedOutdoorPricePerMeter
	}
	if ledRate <= 0 {
		return Breakdown{}, fmt.Errorf("%w: led price per meter is not configured for type %q", ErrValidation, in.LedType)
	}

	perimeterM := 2 * (in.WidthCm + in.HeightCm) / 100.0
	areaM2 := in.WidthCm * in.HeightCm / 10000.0

	faces := 1.0
	if in.DoubleSided {
		faces = 2.0
	}

	spacing := in.Backing.LedSpacingCm
	if spacing <= 0 {
		spacing = settings.DefaultLedSpacingCm
	}

	selected, alternative, err := PlanLayouts(in.WidthCm, in.HeightCm, spacing, in.DoubleSided)
	if err != nil {
		return Breakdown{}, err
	}

	adapter, err := SelectAdapter(selected.TotalLedMeters, settings.AmperesPerMeter, adapters)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		ProfileCost:     perimeterM * in.Profile.PricePerMeter,
		BackingCost:     areaM2 * in.Backing.PricePerM2 * faces,
		PrintCost:       areaM2 * settings.PrintCostPerM2 * faces,
		LedCost:         selected.TotalLedMeters * ledRate,
		AdapterCost:     adapter.Price,
		CableCost:       settings.CableFixedCost,
		CornerPieceCost: settings.CornerPiecePrice * 4,

		SelectedLayout:    selected,
		AlternativeLayout: alternative,
		AdapterName:       adapter.Name,
		RequiredAmperes:   adapter.RequiredAmperes,
		SelectedAmperes:   adapter.Amperes,
		AdapterUndersized: adapter.Undersized,

		PerimeterM: perimeterM,
		AreaM2:     areaM2,
	}

	b.RawMaterialTotal = b.ProfileCost + b.BackingCost + b.PrintCost + b.LedCost +
		b.AdapterCost + b.CableCost + b.CornerPieceCost
	b.LaborCost = b.RawMaterialTotal * (settings.LaborRatePercent / 100.0)

	subtotal := b.RawMaterialTotal + b.LaborCost
	b.ProfitMargin = subtotal * (settings.ProfitMarginPercent / 100.0)
	b.FinalPrice = subtotal + b.ProfitMargin

	return b, nil
}
