package pricing

import "fmt"

// FabricInput is one fabric print configuration to price. Fabric prints have
// no frame, LEDs or adapter; only print area, margin and an optional stand.
type FabricInput struct {
	WidthCm     float64
	HeightCm    float64
	DoubleSided bool
	WithStand   bool
}

// FabricBreakdown is the itemized fabric print result.
type FabricBreakdown struct {
	AreaM2       float64 `json:"area_m2"`
	PrintCost    float64 `json:"print_cost"`
	ProfitMargin float64 `json:"profit_margin"`
	StandPrice   float64 `json:"stand_price"`
	FinalPrice   float64 `json:"final_price"`
}

// CalculateFabric prices a fabric print against the settings snapshot.
func CalculateFabric(in FabricInput, settings Settings) (FabricBreakdown, error) {
	if in.WidthCm <= 0 || in.HeightCm <= 0 {
		return FabricBreakdown{}, fmt.Errorf("%w: width and height must be greater than 0", ErrValidation)
	}
	if settings.PrintCostPerM2 <= 0 {
		return FabricBreakdown{}, fmt.Errorf("%w: print cost per m2 is not configured", ErrValidation)
	}

	faces := 1.0
	if in.DoubleSided {
		faces = 2.0
	}

	b := FabricBreakdown{
		AreaM2: in.WidthCm * in.HeightCm / 10000.0,
	}
	b.PrintCost = b.AreaM2 * settings.PrintCostPerM2 * faces
	b.ProfitMargin = b.PrintCost * (settings.FabricProfitMarginPercent / 100.0)
	if in.WithStand {
		b.StandPrice = settings.StandPrice
	}
	b.FinalPrice = b.PrintCost + b.ProfitMargin + b.StandPrice

	return b, nil
}
