// Package promo implements the prize-wheel draw and discount-code minting.
// Idempotency (one spin per phone, one redemption per code) is enforced by
// storage uniqueness constraints, not here; this package is pure.
package promo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNoSlices is returned when the wheel has no weight to draw from.
var ErrNoSlices = errors.New("wheel has no slices with positive weight")

// Slice is one wedge of the prize wheel.
type Slice struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
	Weight     float64 `json:"weight"`
	IsLoss     bool    `json:"is_loss"`
}

// Spin draws one slice from a uniform draw in [0, 1). Each slice wins with
// probability weight/totalWeight. Callers supply the draw (typically
// rand.Float64) so the outcome stays reproducible in tests.
func Spin(slices []Slice, draw float64) (Slice, error) {
	total := 0.0
	for _, s := range slices {
		if s.Weight > 0 {
			total += s.Weight
		}
	}
	if total <= 0 {
		return Slice{}, ErrNoSlices
	}

	return pick(slices, draw*total)
}

// pick walks cumulative weights until the drawn value falls inside a slice.
func pick(slices []Slice, value float64) (Slice, error) {
	cumulative := 0.0
	last := -1
	for i, s := range slices {
		if s.Weight <= 0 {
			continue
		}
		cumulative += s.Weight
		last = i
		if value < cumulative {
			return s, nil
		}
	}
	// Floating point can leave value == cumulative at the boundary.
	if last >= 0 {
		return slices[last], nil
	}
	return Slice{}, ErrNoSlices
}

// NewCode mints a short single-use discount code.
func NewCode() string {
	id := uuid.New().String()
	return fmt.Sprintf("SPIN-%s", strings.ToUpper(id[:8]))
}
