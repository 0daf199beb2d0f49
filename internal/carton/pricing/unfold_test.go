package pricing

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// TestUnfoldNormal verifies the perimeter + flap unfolding of a standard glued carton
func TestUnfoldNormal(t *testing.T) {
	flat, err := Unfold(UnfoldInput{
		CartonType: CartonTypeNormal,
		LengthCM:   30,
		WidthCM:    20,
		HeightCM:   15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2*(300+200) + 40 + 40 = 1080
	if !almostEqual(flat.LengthMM, 1080) {
		t.Fatalf("expected flat length 1080, got %v", flat.LengthMM)
	}
	// 150 + 2*(100+10) + 2*20 = 410
	if !almostEqual(flat.WidthMM, 410) {
		t.Fatalf("expected flat width 410, got %v", flat.WidthMM)
	}
}

func TestUnfoldNormalMissingDimensions(t *testing.T) {
	flat, err := Unfold(UnfoldInput{
		CartonType: CartonTypeNormal,
		LengthCM:   30,
		WidthCM:    20,
		// height missing
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flat.IsZero() {
		t.Fatalf("expected zero flat size, got %+v", flat)
	}
}

func TestUnfoldSheet(t *testing.T) {
	flat, err := Unfold(UnfoldInput{
		CartonType: CartonTypeSheet,
		LengthCM:   100,
		WidthCM:    70,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(flat.LengthMM, 1040) {
		t.Fatalf("expected flat length 1040, got %v", flat.LengthMM)
	}
	if !almostEqual(flat.WidthMM, 740) {
		t.Fatalf("expected flat width 740, got %v", flat.WidthMM)
	}
}

// TestUnfoldDiecutPriority verifies blade dims win over manually entered blank dims
func TestUnfoldDiecutPriority(t *testing.T) {
	flat, err := Unfold(UnfoldInput{
		CartonType:    CartonTypeDiecut,
		BladeLengthMM: 500,
		BladeWidthMM:  400,
		BlankLengthMM: 600,
		BlankWidthMM:  450,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(flat.LengthMM, 540) || !almostEqual(flat.WidthMM, 440) {
		t.Fatalf("expected 540x440 from blade dims, got %+v", flat)
	}
}

func TestUnfoldDiecutBlankFallback(t *testing.T) {
	flat, err := Unfold(UnfoldInput{
		CartonType:    CartonTypeLaminated,
		BlankLengthMM: 600,
		BlankWidthMM:  450,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(flat.LengthMM, 640) || !almostEqual(flat.WidthMM, 490) {
		t.Fatalf("expected 640x490 from blank dims, got %+v", flat)
	}
}

// TestUnfoldDiecutStrict verifies the full-flow hard failure when no die/blank dims exist
func TestUnfoldDiecutStrict(t *testing.T) {
	_, err := Unfold(UnfoldInput{
		CartonType: CartonTypeDiecut,
		LengthCM:   30,
		WidthCM:    20,
		HeightCM:   15,
		Strict:     true,
	})
	if !errors.Is(err, ErrMissingDieDimensions) {
		t.Fatalf("expected ErrMissingDieDimensions, got %v", err)
	}
}

// TestUnfoldDiecutQuickEstimate verifies the quick-flow product-dimension fallback
func TestUnfoldDiecutQuickEstimate(t *testing.T) {
	flat, err := Unfold(UnfoldInput{
		CartonType: CartonTypeDiecut,
		LengthCM:   30,
		WidthCM:    20,
		HeightCM:   15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(flat.LengthMM, 340) || !almostEqual(flat.WidthMM, 240) {
		t.Fatalf("expected 340x240 estimate, got %+v", flat)
	}

	// 快速流程但成品尺寸也不全：返回零值
	flat, err = Unfold(UnfoldInput{
		CartonType: CartonTypeDiecut,
		LengthCM:   30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flat.IsZero() {
		t.Fatalf("expected zero flat size, got %+v", flat)
	}
}

func TestUnfoldUnknownTypeFallback(t *testing.T) {
	flat, err := Unfold(UnfoldInput{
		CartonType: "telescope",
		LengthCM:   30,
		WidthCM:    20,
		HeightCM:   15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2*(300+200)+40 = 1040, 150+200+40 = 390
	if !almostEqual(flat.LengthMM, 1040) || !almostEqual(flat.WidthMM, 390) {
		t.Fatalf("expected conservative 1040x390, got %+v", flat)
	}
}
