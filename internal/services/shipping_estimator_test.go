package services

import (
	"testing"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

func TestEstimateBands(t *testing.T) {
	estimator := NewTierShippingEstimator(DefaultShippingRates())

	cases := []struct {
		name        string
		longestSide float64
		wantMethod  domain.ShippingMethod
		wantCost    float64
	}{
		{"below pickup boundary", 59.9, domain.ShippingPickup, 0},
		{"small parcel lower bound", 60, domain.ShippingParcelSmall, 12},
		{"small parcel upper bound", 99.9, domain.ShippingParcelSmall, 12},
		{"medium parcel lower bound", 100, domain.ShippingParcelMedium, 19},
		{"large parcel lower bound", 120, domain.ShippingParcelLarge, 35},
		{"large parcel upper bound", 239.9, domain.ShippingParcelLarge, 35},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote := estimator.Estimate(tc.longestSide, nil)
			if quote.Method != tc.wantMethod {
				t.Errorf("method = %s, want %s", quote.Method, tc.wantMethod)
			}
			if quote.Cost != tc.wantCost {
				t.Errorf("cost = %v, want %v", quote.Cost, tc.wantCost)
			}
			if quote.RequiresPostalCode {
				t.Error("parcel bands must not require a postal code")
			}
		})
	}
}

func TestEstimateOversizeRequiresDistance(t *testing.T) {
	estimator := NewTierShippingEstimator(DefaultShippingRates())

	quote := estimator.Estimate(240, nil)
	if quote.Method != domain.ShippingPalletFreight {
		t.Errorf("expected provisional pallet freight, got %s", quote.Method)
	}
	if !quote.RequiresPostalCode {
		t.Error("expected RequiresPostalCode until a distance is supplied")
	}
	if quote.Cost != 180 {
		t.Errorf("expected provisional pallet rate, got %v", quote.Cost)
	}
}

func TestEstimateOversizeWithDistance(t *testing.T) {
	estimator := NewTierShippingEstimator(DefaultShippingRates())

	near := 80.0
	quote := estimator.Estimate(300, &near)
	if quote.Method != domain.ShippingPersonalDelivery {
		t.Errorf("expected personal delivery within radius, got %s", quote.Method)
	}
	if quote.Cost != 89 {
		t.Errorf("unexpected personal delivery cost: %v", quote.Cost)
	}
	if quote.RequiresPostalCode {
		t.Error("distance supplied, postal code no longer required")
	}

	far := 400.0
	quote = estimator.Estimate(300, &far)
	if quote.Method != domain.ShippingPalletFreight {
		t.Errorf("expected pallet freight beyond radius, got %s", quote.Method)
	}
	if quote.Cost != 180 {
		t.Errorf("unexpected pallet freight cost: %v", quote.Cost)
	}
}
