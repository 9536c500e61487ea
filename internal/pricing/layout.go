package pricing

import (
	"fmt"
	"math"
)

// Direction indicates how LED strips run inside the box.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

const (
	// edgeMarginCm is the distance from the frame edge to the first strip.
	edgeMarginCm = 5.0
	// stripInsetCm keeps each strip end clear of the frame on both sides.
	stripInsetCm = 1.0
)

// Layout describes one candidate LED strip arrangement.
type Layout struct {
	Direction      Direction `json:"direction"`
	StripCount     int       `json:"strip_count"`
	TotalLedMeters float64   `json:"total_led_meters"`
}

// PlanLayouts computes the horizontal and vertical strip candidates for a box
// and returns the one consuming fewer LED meters first; the other candidate is
// kept so production documents can override the choice manually.
func PlanLayouts(widthCm, heightCm, spacingCm float64, doubleSided bool) (selected, alternative Layout, err error) {
	if spacingCm <= 0 {
		return Layout{}, Layout{}, fmt.Errorf("%w: led spacing must be greater than 0, got %.2f", ErrValidation, spacingCm)
	}
	if widthCm <= 0 || heightCm <= 0 {
		return Layout{}, Layout{}, fmt.Errorf("%w: width and height must be greater than 0", ErrValidation)
	}

	horizontal := planOrientation(Horizontal, widthCm, heightCm, spacingCm, doubleSided)
	vertical := planOrientation(Vertical, heightCm, widthCm, spacingCm, doubleSided)

	if vertical.TotalLedMeters < horizontal.TotalLedMeters {
		return vertical, horizontal, nil
	}
	return horizontal, vertical, nil
}

// planOrientation places strips running along runCm, stacked every spacingCm
// across stackCm starting at the edge margin. Boxes smaller than twice the
// margin still get a single strip.
func planOrientation(dir Direction, runCm, stackCm, spacingCm float64, doubleSided bool) Layout {
	strips := int(math.Floor((stackCm-2*edgeMarginCm)/spacingCm)) + 1
	if strips < 1 {
		strips = 1
	}

	usableCm := runCm - 2*stripInsetCm
	if usableCm < 0 {
		usableCm = 0
	}

	if doubleSided {
		strips *= 2
	}

	return Layout{
		Direction:      dir,
		StripCount:     strips,
		TotalLedMeters: float64(strips) * usableCm / 100.0,
	}
}
