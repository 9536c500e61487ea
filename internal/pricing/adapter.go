package pricing

import (
	"fmt"
	"sort"
)

// safetyFactor is the headroom applied on top of the computed LED current.
// The 20% figure is a BOM compatibility constant, do not tune it per order.
const safetyFactor = 1.2

// AdapterOption is one power supply row from the adapter catalog.
type AdapterOption struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Amperes float64 `json:"amperes"`
	Watts   float64 `json:"watts"`
	Price   float64 `json:"price"`
}

// AdapterChoice is the selection result, including the audit values callers
// persist alongside the breakdown.
type AdapterChoice struct {
	Name            string  `json:"name"`
	Amperes         float64 `json:"amperes"`
	Price           float64 `json:"price"`
	RequiredAmperes float64 `json:"required_amperes"`
	// Undersized is set when no catalog entry covers the safety current and
	// the largest available adapter was returned as a best effort.
	Undersized bool `json:"undersized"`
}

// SelectAdapter picks the cheapest catalog adapter whose rating covers the LED
// run plus safety headroom. When every adapter is too small it falls back to
// the highest-rated entry and flags the choice as undersized instead of
// failing, so callers can decide whether to warn.
func SelectAdapter(totalLedMeters, amperesPerMeter float64, catalog []AdapterOption) (AdapterChoice, error) {
	if len(catalog) == 0 {
		return AdapterChoice{}, fmt.Errorf("%w: adapter catalog is empty", ErrValidation)
	}
	if amperesPerMeter <= 0 {
		return AdapterChoice{}, fmt.Errorf("%w: amperes per meter must be greater than 0, got %.3f", ErrValidation, amperesPerMeter)
	}

	required := totalLedMeters * amperesPerMeter
	safety := required * safetyFactor

	sorted := make([]AdapterOption, len(catalog))
	copy(sorted, catalog)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amperes < sorted[j].Amperes })

	for _, adapter := range sorted {
		if adapter.Amperes >= safety {
			return AdapterChoice{
				Name:            adapter.Name,
				Amperes:         adapter.Amperes,
				Price:           adapter.Price,
				RequiredAmperes: required,
			}, nil
		}
	}

	largest := sorted[len(sorted)-1]
	return AdapterChoice{
		Name:            largest.Name,
		Amperes:         largest.Amperes,
		Price:           largest.Price,
		RequiredAmperes: required,
		Undersized:      true,
	}, nil
}
