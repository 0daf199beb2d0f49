package pricing

import (
	"errors"
	"testing"
)

// TestCostNormal verifies flat-area costing and the 10% overhead rate
func TestCostNormal(t *testing.T) {
	res, err := ComputeCosts(CostInput{
		CartonType:      CartonTypeNormal,
		Flat:            FlatSize{LengthMM: 1080, WidthMM: 370},
		Quantity:        1000,
		PaperPricePerM2: 5.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1.08 * 0.37 = 0.3996 m²/只，×1000×5
	want := 0.3996 * 1000 * 5.0
	if !almostEqual(res.MaterialCost, want) {
		t.Fatalf("expected material %v, got %v", want, res.MaterialCost)
	}
	if !almostEqual(res.OverheadCost, want*0.10) {
		t.Fatalf("expected overhead %v, got %v", want*0.10, res.OverheadCost)
	}
}

// TestCostDiecut verifies diecut sheet costing with blade 500x400, 2 cavities, qty 1000
func TestCostDiecut(t *testing.T) {
	res, err := ComputeCosts(CostInput{
		CartonType:      CartonTypeDiecut,
		Quantity:        1000,
		PaperPricePerM2: 8.0,
		Die: &DieSpec{
			BladeLengthMM:    500,
			BladeWidthMM:     400,
			CavitiesPerSheet: 2,
			DieCost:          1500,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 500张 × 0.2m² = 100m²；材料 = 100×8 + 1500
	wantMaterial := 100*8.0 + 1500
	if !almostEqual(res.MaterialCost, wantMaterial) {
		t.Fatalf("expected material %v, got %v", wantMaterial, res.MaterialCost)
	}
	if !almostEqual(res.OverheadCost, wantMaterial*0.15) {
		t.Fatalf("expected overhead %v, got %v", wantMaterial*0.15, res.OverheadCost)
	}
}

func TestCostDiecutMissingDie(t *testing.T) {
	_, err := ComputeCosts(CostInput{
		CartonType:      CartonTypeDiecut,
		Quantity:        1000,
		PaperPricePerM2: 8.0,
	})
	if !errors.Is(err, ErrMissingDieDimensions) {
		t.Fatalf("expected ErrMissingDieDimensions, got %v", err)
	}

	_, err = ComputeCosts(CostInput{
		CartonType:      CartonTypeLaminated,
		Quantity:        1000,
		PaperPricePerM2: 8.0,
		Die:             &DieSpec{BladeLengthMM: 500}, // 缺宽
	})
	if !errors.Is(err, ErrMissingDieDimensions) {
		t.Fatalf("expected ErrMissingDieDimensions, got %v", err)
	}
}

// TestCostLaminated verifies lamination cost is folded into material before overhead
func TestCostLaminated(t *testing.T) {
	res, err := ComputeCosts(CostInput{
		CartonType:           CartonTypeLaminated,
		Quantity:             1000,
		PaperPricePerM2:      8.0,
		LaminationPricePerM2: 3.0,
		Die: &DieSpec{
			BladeLengthMM:    500,
			BladeWidthMM:     400,
			CavitiesPerSheet: 2,
			DieCost:          1500,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantMaterial := 100*8.0 + 100*3.0 + 1500
	if !almostEqual(res.MaterialCost, wantMaterial) {
		t.Fatalf("expected material %v, got %v", wantMaterial, res.MaterialCost)
	}
	if !almostEqual(res.OverheadCost, wantMaterial*0.15) {
		t.Fatalf("expected overhead %v, got %v", wantMaterial*0.15, res.OverheadCost)
	}
}

// TestCostDefaultsCavitiesToOne verifies cavities below 1 are treated as 1
func TestCostDefaultsCavitiesToOne(t *testing.T) {
	res, err := ComputeCosts(CostInput{
		CartonType:      CartonTypeDiecut,
		Quantity:        10,
		PaperPricePerM2: 1.0,
		Die:             &DieSpec{BladeLengthMM: 1000, BladeWidthMM: 1000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10张 × 1m² × 1元
	if !almostEqual(res.MaterialCost, 10) {
		t.Fatalf("expected material 10, got %v", res.MaterialCost)
	}
}

func TestComputePrices(t *testing.T) {
	res, err := ComputePrices(PriceInput{
		MaterialCost:        1000,
		OverheadCost:        100,
		DieCost:             200,
		ClicheCost:          100,
		DesignCost:          100,
		PunchCost:           200,
		PalletWrapCost:      100,
		ShippingCost:        200,
		Quantity:            1000,
		MarginCashPercent:   10,
		MarginCreditPercent: 15,
		TaxPercent:          9,
		PaymentType:         PaymentTypeCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 合计2000，单只2
	if !almostEqual(res.BaseCostPerCarton, 2.0) {
		t.Fatalf("expected base cost 2.0, got %v", res.BaseCostPerCarton)
	}
	if !almostEqual(res.SalePriceCash, 2.2) {
		t.Fatalf("expected cash price 2.2, got %v", res.SalePriceCash)
	}
	if !almostEqual(res.SalePriceCredit, 2.3) {
		t.Fatalf("expected credit price 2.3, got %v", res.SalePriceCredit)
	}
	if !almostEqual(res.UnitPriceWithTax, 2.2*1.09) {
		t.Fatalf("expected unit with tax %v, got %v", 2.2*1.09, res.UnitPriceWithTax)
	}
	if !almostEqual(res.TotalPriceWithTax, 2.2*1.09*1000) {
		t.Fatalf("expected total with tax %v, got %v", 2.2*1.09*1000, res.TotalPriceWithTax)
	}
}

func TestComputePricesCreditPayment(t *testing.T) {
	res, err := ComputePrices(PriceInput{
		MaterialCost:        2000,
		Quantity:            1000,
		MarginCashPercent:   10,
		MarginCreditPercent: 15,
		TaxPercent:          9,
		PaymentType:         PaymentTypeCredit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(res.UnitPriceWithTax, 2.3*1.09) {
		t.Fatalf("expected credit unit with tax %v, got %v", 2.3*1.09, res.UnitPriceWithTax)
	}
}

// TestComputePricesMarginMonotonic verifies raising the cash margin strictly raises cash prices
func TestComputePricesMarginMonotonic(t *testing.T) {
	base := PriceInput{
		MaterialCost:      1000,
		Quantity:          100,
		MarginCashPercent: 10,
		TaxPercent:        9,
		PaymentType:       PaymentTypeCash,
	}
	low, err := ComputePrices(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base.MarginCashPercent = 20
	high, err := ComputePrices(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if high.SalePriceCash <= low.SalePriceCash {
		t.Fatalf("cash price not monotonic: %v -> %v", low.SalePriceCash, high.SalePriceCash)
	}
	if high.UnitPriceWithTax <= low.UnitPriceWithTax {
		t.Fatalf("unit price with tax not monotonic: %v -> %v", low.UnitPriceWithTax, high.UnitPriceWithTax)
	}
}

func TestComputePricesInvalidQuantity(t *testing.T) {
	_, err := ComputePrices(PriceInput{MaterialCost: 100})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}
