package services

import (
	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

// Longest-side band boundaries in centimeters.
const (
	pickupMaxCM       = 60
	parcelSmallMaxCM  = 100
	parcelMediumMaxCM = 120
	parcelLargeMaxCM  = 240
)

// ShippingRates lists the flat cost per shipping band plus the distance
// threshold separating personal delivery from palletised freight.
type ShippingRates struct {
	ParcelSmall           float64
	ParcelMedium          float64
	ParcelLarge           float64
	PersonalDelivery      float64
	PalletFreight         float64
	PersonalDeliveryMaxKM float64
}

// DefaultShippingRates returns the production carrier rates.
func DefaultShippingRates() ShippingRates {
	return ShippingRates{
		ParcelSmall:           12,
		ParcelMedium:          19,
		ParcelLarge:           35,
		PersonalDelivery:      89,
		PalletFreight:         180,
		PersonalDeliveryMaxKM: 150,
	}
}

// TierShippingEstimator maps a sign's longest side to a shipping band. Only
// oversize signs need a delivery distance; below the freight boundary the
// distance merely refines an informational label.
type TierShippingEstimator struct {
	rates ShippingRates
}

// NewTierShippingEstimator constructs an estimator with the given rates.
func NewTierShippingEstimator(rates ShippingRates) *TierShippingEstimator {
	return &TierShippingEstimator{rates: rates}
}

// Estimate returns the shipping method and cost for the given longest side.
// At or above the freight boundary the method depends on the delivery
// distance; until one is supplied the palletised rate is quoted
// provisionally and RequiresPostalCode is set.
func (e *TierShippingEstimator) Estimate(longestSideCM float64, distanceKM *float64) domain.ShippingQuote {
	switch {
	case longestSideCM < pickupMaxCM:
		return domain.ShippingQuote{
			Method:      domain.ShippingPickup,
			Cost:        0,
			Description: "free pickup, no shipping required",
		}
	case longestSideCM < parcelSmallMaxCM:
		return domain.ShippingQuote{
			Method:      domain.ShippingParcelSmall,
			Cost:        e.rates.ParcelSmall,
			Description: "small parcel carrier",
		}
	case longestSideCM < parcelMediumMaxCM:
		return domain.ShippingQuote{
			Method:      domain.ShippingParcelMedium,
			Cost:        e.rates.ParcelMedium,
			Description: "medium parcel carrier",
		}
	case longestSideCM < parcelLargeMaxCM:
		return domain.ShippingQuote{
			Method:      domain.ShippingParcelLarge,
			Cost:        e.rates.ParcelLarge,
			Description: "bulky parcel carrier",
		}
	}

	if distanceKM == nil {
		return domain.ShippingQuote{
			Method:             domain.ShippingPalletFreight,
			Cost:               e.rates.PalletFreight,
			RequiresPostalCode: true,
			Description:        "oversize freight, postal code required for a binding quote",
		}
	}
	if *distanceKM <= e.rates.PersonalDeliveryMaxKM {
		return domain.ShippingQuote{
			Method:      domain.ShippingPersonalDelivery,
			Cost:        e.rates.PersonalDelivery,
			Description: "personal delivery by our installation team",
		}
	}
	return domain.ShippingQuote{
		Method:      domain.ShippingPalletFreight,
		Cost:        e.rates.PalletFreight,
		Description: "palletised freight forwarding",
	}
}
