package domain

import "time"

// NeonDesign is the catalog template a configured sign is derived from. The
// reference dimensions and LED length describe the design at its original
// size; configured signs scale from them.
type NeonDesign struct {
	ID               string
	Name             string
	OriginalWidthCM  float64
	OriginalHeightCM float64
	// Elements counts the discrete fabricated units (letters, logo parts)
	// that contribute per-unit material and labor cost.
	Elements int
	// LEDLengthM is the LED strip length in meters consumed at the
	// original width.
	LEDLengthM float64
}

// SignConfiguration is a single cart line item: a design at a chosen size
// with its option flags. Disabled items stay in the cart but do not
// contribute to the order total.
type SignConfiguration struct {
	ID                string
	Design            *NeonDesign
	WidthCM           float64
	HeightCM          float64
	IsWaterproof      bool
	IsTwoPart         bool
	HasUVPrint        bool
	HasHangingSystem  bool
	ExpressProduction bool
	Enabled           bool
}

// LongestSideCM returns the larger of width and height; it drives shipping
// tier selection.
func (c SignConfiguration) LongestSideCM() float64 {
	if c.HeightCM > c.WidthCM {
		return c.HeightCM
	}
	return c.WidthCM
}

// ConfigurationState aggregates the cart as the session layer owns it. The
// pricing core only reads it and derives values; all mutation happens in the
// caller.
type ConfigurationState struct {
	Signs              []SignConfiguration
	WithInstallation   bool
	CustomerPostalCode string
	DistanceKM         *float64
}

// LongestSideCM returns the longest side across all enabled signs.
func (s ConfigurationState) LongestSideCM() float64 {
	longest := 0.0
	for _, sign := range s.Signs {
		if !sign.Enabled {
			continue
		}
		if side := sign.LongestSideCM(); side > longest {
			longest = side
		}
	}
	return longest
}

// UnitPriceComponents holds the externally sourced unit costs used by the
// cost model. One immutable snapshot per cache epoch.
type UnitPriceComponents struct {
	MaterialPerM2  float64
	UVPrintPerM2   float64
	LEDPerM        float64
	ControllerBase float64
	PackagingPerM2 float64
	ElementCost    float64
}

// Component identifiers used by the external price source.
const (
	ComponentMaterial       = "material"
	ComponentUVPrint        = "uv_print"
	ComponentLED            = "led"
	ComponentControllerBase = "controller_base"
	ComponentPackaging      = "packaging"
	ComponentElement        = "element"
)

// PowerSupplyTier maps an inclusive wattage band to a fixed controller
// price. Tiers are ordered, non-overlapping, and cover [0, ∞) with the last
// tier acting as catch-all above its max.
type PowerSupplyTier struct {
	MinWatt int
	MaxWatt int
	Price   float64
}

// CostBreakdown itemises a single sign's price for presentation.
type CostBreakdown struct {
	AreaM2            float64
	LEDLengthM        float64
	PowerDrawW        int
	Material          float64
	UVPrint           float64
	LED               float64
	Elements          float64
	Packaging         float64
	Controller        float64
	BaseSubtotal      float64
	Labor             float64
	HangingSystem     float64
	Waterproof        float64
	TwoPart           float64
	Express           float64
	AdministrativeFee float64
	Total             float64
}

// DiscountType distinguishes percentage discounts from fixed amounts.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

// Discount is a persisted promotional discount record. A blank code marks an
// auto-apply discount the engine may select without user input.
type Discount struct {
	ID                string
	Code              string
	Name              string
	Type              DiscountType
	Value             float64
	MinOrderValue     *float64
	MaxDiscountAmount *float64
	StartsAt          time.Time
	EndsAt            time.Time
	Active            bool
	UsageCount        int
	UsageLimit        *int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidAt reports whether the discount may be applied at the given instant:
// active flag set, validity window containing t, and usage below the limit
// when one is set.
func (d Discount) ValidAt(t time.Time) bool {
	if !d.Active {
		return false
	}
	if !d.StartsAt.IsZero() && t.Before(d.StartsAt) {
		return false
	}
	if !d.EndsAt.IsZero() && t.After(d.EndsAt) {
		return false
	}
	if d.UsageLimit != nil && d.UsageCount >= *d.UsageLimit {
		return false
	}
	return true
}

// AmountFor computes the discount amount for the given order total.
// Percentage discounts are capped by MaxDiscountAmount when set; both types
// never exceed the order total.
func (d Discount) AmountFor(orderTotal float64) float64 {
	if orderTotal <= 0 {
		return 0
	}
	var amount float64
	switch d.Type {
	case DiscountTypePercentage:
		amount = orderTotal * d.Value / 100
		if d.MaxDiscountAmount != nil && amount > *d.MaxDiscountAmount {
			amount = *d.MaxDiscountAmount
		}
	case DiscountTypeFixedAmount:
		amount = d.Value
	default:
		return 0
	}
	if amount > orderTotal {
		amount = orderTotal
	}
	if amount < 0 {
		amount = 0
	}
	return Round2(amount)
}

// Reason codes attached to invalid discount applications.
const (
	DiscountReasonNotFound       = "not_found"
	DiscountReasonMinOrderNotMet = "min_order_not_met"
)

// DiscountApplication is the promo engine's verdict for one evaluation. It
// is ephemeral and recomputed per evaluation, never persisted.
type DiscountApplication struct {
	Discount       *Discount
	DiscountAmount float64
	FinalPrice     float64
	IsValid        bool
	Reason         string
	Message        string
}

// FlashDiscount is the single globally active, time-boxed marketing
// discount. At most one is current at any instant.
type FlashDiscount struct {
	ID         string
	Name       string
	Percentage float64
	StartsAt   time.Time
	EndsAt     time.Time
}

// Duration returns the configured window length.
func (f FlashDiscount) Duration() time.Duration {
	return f.EndsAt.Sub(f.StartsAt)
}

// DiscountTimer is the derived countdown view pushed to subscribers on every
// tick. It is recomputed each second and never stored.
type DiscountTimer struct {
	Active       bool
	Urgent       bool
	Name         string
	Percentage   float64
	Days         int
	Hours        int
	Minutes      int
	Seconds      int
	TotalSeconds int64
	EndsAt       time.Time
}

// FlashPrice is the display-only price overlay: the inflated "was" price
// next to the real price. It never changes the amount charged.
type FlashPrice struct {
	DisplayPrice       float64
	FinalPrice         float64
	DiscountAmount     float64
	DiscountPercentage float64
}

// ShippingMethod identifies a carrier tier.
type ShippingMethod string

const (
	ShippingPickup           ShippingMethod = "pickup"
	ShippingParcelSmall      ShippingMethod = "parcel_small"
	ShippingParcelMedium     ShippingMethod = "parcel_medium"
	ShippingParcelLarge      ShippingMethod = "parcel_large"
	ShippingPersonalDelivery ShippingMethod = "personal_delivery"
	ShippingPalletFreight    ShippingMethod = "pallet_freight"
)

// ShippingQuote is the estimator's verdict for one cart.
type ShippingQuote struct {
	Method             ShippingMethod
	Cost               float64
	RequiresPostalCode bool
	Description        string
}

// LineItem is one priced, assembled order position.
type LineItem struct {
	ID      string
	Label   string
	Price   float64
	Enabled bool
}

// OrderTotal is the consumer-facing price breakdown. Display carries the
// flash discount overlay when one is active and never feeds back into the
// arithmetic fields.
type OrderTotal struct {
	ItemsTotal      float64
	AdditionalCosts float64
	DiscountAmount  float64
	Subtotal        float64
	Tax             float64
	Total           float64
	Display         *FlashPrice
}
