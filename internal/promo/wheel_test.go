package promo

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func testSlices() []Slice {
	return []Slice{
		{Label: "5% off", Percentage: 5, Weight: 50},
		{Label: "10% off", Percentage: 10, Weight: 30},
		{Label: "Try again", Weight: 20, IsLoss: true},
	}
}

func TestPick_WalksCumulativeWeights(t *testing.T) {
	slices := testSlices()

	cases := []struct {
		value float64
		label string
	}{
		{0, "5% off"},
		{49.999, "5% off"},
		{50, "10% off"},
		{79.999, "10% off"},
		{80, "Try again"},
		{99.999, "Try again"},
	}

	for _, tc := range cases {
		got, err := pick(slices, tc.value)
		if err != nil {
			t.Fatalf("pick(%v) returned error: %v", tc.value, err)
		}
		if got.Label != tc.label {
			t.Fatalf("pick(%v) = %q, want %q", tc.value, got.Label, tc.label)
		}
	}
}

func TestPick_BoundaryValueLandsOnLastSlice(t *testing.T) {
	got, err := pick(testSlices(), 100)
	if err != nil {
		t.Fatalf("pick at boundary returned error: %v", err)
	}
	if got.Label != "Try again" {
		t.Fatalf("boundary draw should land on last slice, got %q", got.Label)
	}
}

func TestPick_SkipsZeroWeightSlices(t *testing.T) {
	slices := []Slice{
		{Label: "disabled", Weight: 0},
		{Label: "only", Percentage: 15, Weight: 10},
	}

	got, err := pick(slices, 5)
	if err != nil {
		t.Fatalf("pick returned error: %v", err)
	}
	if got.Label != "only" {
		t.Fatalf("expected zero-weight slice to be skipped, got %q", got.Label)
	}
}

func TestSpin_ErrorsWithoutWeight(t *testing.T) {
	if _, err := Spin(nil, 0.5); !errors.Is(err, ErrNoSlices) {
		t.Fatalf("expected ErrNoSlices for empty wheel, got %v", err)
	}
	if _, err := Spin([]Slice{{Label: "x", Weight: 0}}, 0.5); !errors.Is(err, ErrNoSlices) {
		t.Fatalf("expected ErrNoSlices for zero-weight wheel, got %v", err)
	}
}

func TestSpin_RespectsWeightsRoughly(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	slices := testSlices()

	counts := map[string]int{}
	const draws = 10000
	for i := 0; i < draws; i++ {
		s, err := Spin(slices, rnd.Float64())
		if err != nil {
			t.Fatalf("Spin returned error: %v", err)
		}
		counts[s.Label]++
	}

	// 50/30/20 weights; allow a generous band around expectation.
	if got := counts["5% off"]; got < 4500 || got > 5500 {
		t.Fatalf("5%% slice drawn %d times out of %d, expected near 5000", got, draws)
	}
	if got := counts["Try again"]; got < 1600 || got > 2400 {
		t.Fatalf("loss slice drawn %d times out of %d, expected near 2000", got, draws)
	}
}

func TestNewCode_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewCode()
		if !strings.HasPrefix(code, "SPIN-") || len(code) != len("SPIN-")+8 {
			t.Fatalf("unexpected code format %q", code)
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("code %q is not uppercase", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}
