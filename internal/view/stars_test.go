package view

import (
	"reflect"
	"testing"
)

func countStars(stars []string) (full, half, empty int) {
	for _, s := range stars {
		switch s {
		case StarFull:
			full++
		case StarHalf:
			half++
		case StarEmpty:
			empty++
		}
	}
	return
}

func TestStars_AlwaysReturnsFiveGlyphs(t *testing.T) {
	ratings := []float64{0, 0.4, 0.5, 1, 2.3, 2.5, 3, 3.7, 4.9, 5}
	for _, rating := range ratings {
		if got := len(Stars(rating)); got != 5 {
			t.Errorf("Stars(%v) returned %d glyphs, want 5", rating, got)
		}
	}
}

func TestStars_IntegerRating_FullStarsOnly(t *testing.T) {
	full, half, empty := countStars(Stars(3))

	if full != 3 {
		t.Errorf("full = %d, want 3", full)
	}
	if half != 0 {
		t.Errorf("half = %d, want 0", half)
	}
	if empty != 2 {
		t.Errorf("empty = %d, want 2", empty)
	}
}

func TestStars_FractionAtLeastHalf_IncludesHalfStar(t *testing.T) {
	full, half, empty := countStars(Stars(2.5))

	if full != 2 {
		t.Errorf("full = %d, want 2", full)
	}
	if half != 1 {
		t.Errorf("half = %d, want 1", half)
	}
	if empty != 2 {
		t.Errorf("empty = %d, want 2", empty)
	}
}

func TestStars_FractionBelowHalf_NoHalfStar(t *testing.T) {
	full, half, empty := countStars(Stars(2.4))

	if full != 2 {
		t.Errorf("full = %d, want 2", full)
	}
	if half != 0 {
		t.Errorf("half = %d, want 0", half)
	}
	if empty != 3 {
		t.Errorf("empty = %d, want 3", empty)
	}
}

func TestStars_MaxRating_AllFull(t *testing.T) {
	want := []string{StarFull, StarFull, StarFull, StarFull, StarFull}
	if got := Stars(5); !reflect.DeepEqual(got, want) {
		t.Errorf("Stars(5) = %v, want %v", got, want)
	}
}

func TestStars_ZeroRating_AllEmpty(t *testing.T) {
	want := []string{StarEmpty, StarEmpty, StarEmpty, StarEmpty, StarEmpty}
	if got := Stars(0); !reflect.DeepEqual(got, want) {
		t.Errorf("Stars(0) = %v, want %v", got, want)
	}
}

func TestStars_OutOfRange_Clamped(t *testing.T) {
	if got := len(Stars(-1)); got != 5 {
		t.Errorf("Stars(-1) returned %d glyphs, want 5", got)
	}
	full, half, _ := countStars(Stars(7))
	if full != 5 || half != 0 {
		t.Errorf("Stars(7) = %d full %d half, want 5 full 0 half", full, half)
	}
}

func TestStars_OrderIsFullThenHalfThenEmpty(t *testing.T) {
	want := []string{StarFull, StarFull, StarFull, StarHalf, StarEmpty}
	if got := Stars(3.5); !reflect.DeepEqual(got, want) {
		t.Errorf("Stars(3.5) = %v, want %v", got, want)
	}
}
