package services

import (
	"math"
	"testing"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

func testDesign() *domain.NeonDesign {
	return &domain.NeonDesign{
		ID:              "design-1",
		Name:            "Open Late",
		OriginalWidthCM: 100,
		Elements:        4,
		LEDLengthM:      5,
	}
}

func TestBreakdownComputesItemisedCosts(t *testing.T) {
	calc := NewSignPriceCalculator(DefaultCostModelConfig())
	cfg := domain.SignConfiguration{
		ID:       "sign-1",
		Design:   testDesign(),
		WidthCM:  100,
		HeightCM: 40,
		Enabled:  true,
	}

	breakdown := calc.Breakdown(cfg, FallbackUnitPrices)

	if breakdown.AreaM2 != 0.4 {
		t.Errorf("unexpected area: %v", breakdown.AreaM2)
	}
	if breakdown.LEDLengthM != 5 {
		t.Errorf("unexpected led length: %v", breakdown.LEDLengthM)
	}
	if breakdown.PowerDrawW != 60 {
		t.Errorf("unexpected power draw: %d", breakdown.PowerDrawW)
	}
	if breakdown.Material != 38 {
		t.Errorf("unexpected material cost: %v", breakdown.Material)
	}
	if breakdown.LED != 45 {
		t.Errorf("unexpected led cost: %v", breakdown.LED)
	}
	if breakdown.Elements != 28 {
		t.Errorf("unexpected element cost: %v", breakdown.Elements)
	}
	if breakdown.Packaging != 4.8 {
		t.Errorf("unexpected packaging cost: %v", breakdown.Packaging)
	}
	if breakdown.Controller != 35 {
		t.Errorf("unexpected controller cost: %v", breakdown.Controller)
	}
	if breakdown.BaseSubtotal != 150.8 {
		t.Errorf("unexpected base subtotal: %v", breakdown.BaseSubtotal)
	}
	if breakdown.Labor != 42 {
		t.Errorf("unexpected labor cost: %v", breakdown.Labor)
	}
	if breakdown.AdministrativeFee != 7.54 {
		t.Errorf("unexpected administrative fee: %v", breakdown.AdministrativeFee)
	}
	if breakdown.Total != 200.34 {
		t.Errorf("unexpected total: %v", breakdown.Total)
	}
	if breakdown.UVPrint != 0 || breakdown.Waterproof != 0 || breakdown.HangingSystem != 0 {
		t.Error("disabled options must not be charged")
	}
}

func TestBreakdownMissingDesignPricesToZero(t *testing.T) {
	calc := NewSignPriceCalculator(DefaultCostModelConfig())
	cfg := domain.SignConfiguration{ID: "sign-1", WidthCM: 100, HeightCM: 40, Enabled: true}

	breakdown := calc.Breakdown(cfg, FallbackUnitPrices)
	if breakdown.Total != 0 {
		t.Fatalf("expected zero total for missing design, got %v", breakdown.Total)
	}
	if calc.Price(cfg, FallbackUnitPrices) != 0 {
		t.Fatal("expected zero price for missing design")
	}
}

func TestSurchargesApplyIndependently(t *testing.T) {
	calc := NewSignPriceCalculator(DefaultCostModelConfig())
	cfg := domain.SignConfiguration{
		ID:                "sign-1",
		Design:            testDesign(),
		WidthCM:           100,
		HeightCM:          40,
		IsWaterproof:      true,
		IsTwoPart:         true,
		ExpressProduction: true,
		HasHangingSystem:  true,
		Enabled:           true,
	}

	breakdown := calc.Breakdown(cfg, FallbackUnitPrices)

	base := 150.8
	if breakdown.Waterproof != domain.Round2(base*0.25) {
		t.Errorf("unexpected waterproof surcharge: %v", breakdown.Waterproof)
	}
	if breakdown.TwoPart != domain.Round2(base*0.15) {
		t.Errorf("unexpected two-part surcharge: %v", breakdown.TwoPart)
	}
	if breakdown.Express != domain.Round2(base*0.30) {
		t.Errorf("unexpected express surcharge: %v", breakdown.Express)
	}
	if breakdown.HangingSystem != 35 {
		t.Errorf("unexpected hanging fee: %v", breakdown.HangingSystem)
	}

	// Each surcharge is a fraction of the base subtotal, never of another
	// surcharge.
	expected := domain.Round2(base*(1+0.25+0.15+0.30+0.05) + 42 + 35)
	if breakdown.Total != expected {
		t.Errorf("expected total %v, got %v", expected, breakdown.Total)
	}
}

func TestTotalNeverBelowBaseSubtotal(t *testing.T) {
	calc := NewSignPriceCalculator(DefaultCostModelConfig())
	configs := []domain.SignConfiguration{
		{Design: testDesign(), WidthCM: 40, HeightCM: 20},
		{Design: testDesign(), WidthCM: 100, HeightCM: 40, HasUVPrint: true},
		{Design: testDesign(), WidthCM: 250, HeightCM: 120, IsWaterproof: true, ExpressProduction: true},
	}

	for _, cfg := range configs {
		breakdown := calc.Breakdown(cfg, FallbackUnitPrices)
		if breakdown.Total < breakdown.BaseSubtotal {
			t.Errorf("total %v below base subtotal %v for width %v", breakdown.Total, breakdown.BaseSubtotal, cfg.WidthCM)
		}
	}
}

func TestCalculateAreaScaleSymmetry(t *testing.T) {
	calc := NewSignPriceCalculator(DefaultCostModelConfig())

	for _, dims := range [][2]float64{{50, 30}, {75, 75}, {120, 33}} {
		small := calc.CalculateArea(dims[0], dims[1])
		large := calc.CalculateArea(2*dims[0], 2*dims[1])
		if math.Abs(large-4*small) > 1e-9 {
			t.Errorf("area(2w,2h)=%v, want 4*area(w,h)=%v", large, 4*small)
		}
	}
}

func TestControllerPriceTierLookupIsTotal(t *testing.T) {
	calc := NewSignPriceCalculator(DefaultCostModelConfig())

	cases := []struct {
		watts int
		want  float64
	}{
		{0, 25},
		{30, 25},
		{31, 35},
		{60, 35},
		{61, 45},
		{100, 45},
		{150, 60},
		{200, 75},
		{320, 95},
		// Above every band the highest tier is the catch-all.
		{321, 95},
		{5000, 95},
		{-5, 25},
	}
	for _, tc := range cases {
		if got := calc.ControllerPrice(tc.watts, FallbackUnitPrices); got != tc.want {
			t.Errorf("ControllerPrice(%d) = %v, want %v", tc.watts, got, tc.want)
		}
	}
}

func TestControllerPriceWithoutTiersUsesBasePrice(t *testing.T) {
	config := DefaultCostModelConfig()
	config.PowerTiers = nil
	calc := NewSignPriceCalculator(config)

	if got := calc.ControllerPrice(120, FallbackUnitPrices); got != FallbackUnitPrices.ControllerBase {
		t.Fatalf("expected controller base price, got %v", got)
	}
}

func TestScaledLEDLengthRoundsHalfUp(t *testing.T) {
	calc := NewSignPriceCalculator(DefaultCostModelConfig())
	design := testDesign()

	if got := calc.ScaledLEDLength(design, 75); got != 3.8 {
		t.Errorf("ScaledLEDLength(75) = %v, want 3.8", got)
	}
	if got := calc.ScaledLEDLength(design, 100); got != 5 {
		t.Errorf("ScaledLEDLength(100) = %v, want 5", got)
	}
	if got := calc.ScaledLEDLength(nil, 100); got != 0 {
		t.Errorf("missing design should scale to 0, got %v", got)
	}
}
