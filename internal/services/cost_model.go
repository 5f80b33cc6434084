package services

import (
	"math"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

// wattsPerLEDMeter is the power draw of one meter of LED strip.
const wattsPerLEDMeter = 12

// CostModelConfig carries the manufacturing parameters of the cost model.
// All rates are fractions of the base subtotal and apply independently,
// never compounding.
type CostModelConfig struct {
	TimePerM2Hours      float64
	TimePerElementHours float64
	HourlyWage          float64
	WaterproofRate      float64
	TwoPartRate         float64
	ExpressRate         float64
	AdministrativeRate  float64
	HangingSystemFee    float64
	PowerTiers          []domain.PowerSupplyTier
}

// DefaultCostModelConfig returns the production manufacturing parameters.
func DefaultCostModelConfig() CostModelConfig {
	return CostModelConfig{
		TimePerM2Hours:      0.5,
		TimePerElementHours: 0.25,
		HourlyWage:          35,
		WaterproofRate:      0.25,
		TwoPartRate:         0.15,
		ExpressRate:         0.30,
		AdministrativeRate:  0.05,
		HangingSystemFee:    35,
		PowerTiers: []domain.PowerSupplyTier{
			{MinWatt: 0, MaxWatt: 30, Price: 25},
			{MinWatt: 31, MaxWatt: 60, Price: 35},
			{MinWatt: 61, MaxWatt: 100, Price: 45},
			{MinWatt: 101, MaxWatt: 150, Price: 60},
			{MinWatt: 151, MaxWatt: 200, Price: 75},
			{MinWatt: 201, MaxWatt: 320, Price: 95},
		},
	}
}

// SignPriceCalculator is the pure cost model: deterministic for fixed inputs
// and a fixed unit price snapshot, never negative, no side effects.
type SignPriceCalculator struct {
	config CostModelConfig
}

// NewSignPriceCalculator constructs a calculator with the given parameters.
func NewSignPriceCalculator(config CostModelConfig) *SignPriceCalculator {
	return &SignPriceCalculator{config: config}
}

// CalculateArea returns the sign face area in square meters.
func (c *SignPriceCalculator) CalculateArea(widthCM, heightCM float64) float64 {
	if widthCM <= 0 || heightCM <= 0 {
		return 0
	}
	return widthCM * heightCM / 10000
}

// ScaledLEDLength scales the design's reference LED length to the configured
// width, rounded to one decimal.
func (c *SignPriceCalculator) ScaledLEDLength(design *domain.NeonDesign, widthCM float64) float64 {
	if design == nil || widthCM <= 0 {
		return 0
	}
	if design.OriginalWidthCM <= 0 {
		return domain.Round1(design.LEDLengthM)
	}
	return domain.Round1(design.LEDLengthM * widthCM / design.OriginalWidthCM)
}

// PowerDraw returns the wattage drawn by the given LED strip length.
func (c *SignPriceCalculator) PowerDraw(ledLengthM float64) int {
	if ledLengthM <= 0 {
		return 0
	}
	return int(math.Round(ledLengthM * wattsPerLEDMeter))
}

// ControllerPrice looks up the power supply price for the given wattage. The
// first tier whose band contains the wattage wins; wattage above every band
// resolves to the highest tier. Without a tier table the external
// controller base price is charged.
func (c *SignPriceCalculator) ControllerPrice(watts int, prices domain.UnitPriceComponents) float64 {
	if watts < 0 {
		watts = 0
	}
	tiers := c.config.PowerTiers
	if len(tiers) == 0 {
		return prices.ControllerBase
	}
	for _, tier := range tiers {
		if watts >= tier.MinWatt && watts <= tier.MaxWatt {
			return tier.Price
		}
	}
	return tiers[len(tiers)-1].Price
}

// Breakdown computes the full itemised price for one configured sign. A
// missing design reference prices to zero so incomplete input stays usable.
func (c *SignPriceCalculator) Breakdown(cfg domain.SignConfiguration, prices domain.UnitPriceComponents) domain.CostBreakdown {
	if cfg.Design == nil {
		return domain.CostBreakdown{}
	}

	area := c.CalculateArea(cfg.WidthCM, cfg.HeightCM)
	ledLength := c.ScaledLEDLength(cfg.Design, cfg.WidthCM)
	watts := c.PowerDraw(ledLength)

	material := area * prices.MaterialPerM2
	uvPrint := 0.0
	if cfg.HasUVPrint {
		uvPrint = area * prices.UVPrintPerM2
	}
	led := ledLength * prices.LEDPerM
	elements := float64(cfg.Design.Elements) * prices.ElementCost
	packaging := area * prices.PackagingPerM2
	controller := c.ControllerPrice(watts, prices)

	baseSubtotal := material + uvPrint + led + elements + packaging + controller

	labor := (area*c.config.TimePerM2Hours + float64(cfg.Design.Elements)*c.config.TimePerElementHours) * c.config.HourlyWage

	hanging := 0.0
	if cfg.HasHangingSystem {
		hanging = c.config.HangingSystemFee
	}
	waterproof := 0.0
	if cfg.IsWaterproof {
		waterproof = baseSubtotal * c.config.WaterproofRate
	}
	twoPart := 0.0
	if cfg.IsTwoPart {
		twoPart = baseSubtotal * c.config.TwoPartRate
	}
	express := 0.0
	if cfg.ExpressProduction {
		express = baseSubtotal * c.config.ExpressRate
	}
	administrative := baseSubtotal * c.config.AdministrativeRate

	total := baseSubtotal + labor + hanging + waterproof + twoPart + express + administrative

	return domain.CostBreakdown{
		AreaM2:            area,
		LEDLengthM:        ledLength,
		PowerDrawW:        watts,
		Material:          domain.Round2(material),
		UVPrint:           domain.Round2(uvPrint),
		LED:               domain.Round2(led),
		Elements:          domain.Round2(elements),
		Packaging:         domain.Round2(packaging),
		Controller:        domain.Round2(controller),
		BaseSubtotal:      domain.Round2(baseSubtotal),
		Labor:             domain.Round2(labor),
		HangingSystem:     domain.Round2(hanging),
		Waterproof:        domain.Round2(waterproof),
		TwoPart:           domain.Round2(twoPart),
		Express:           domain.Round2(express),
		AdministrativeFee: domain.Round2(administrative),
		Total:             domain.Round2(total),
	}
}

// Price returns the rounded total for one configured sign.
func (c *SignPriceCalculator) Price(cfg domain.SignConfiguration, prices domain.UnitPriceComponents) float64 {
	return c.Breakdown(cfg, prices).Total
}
