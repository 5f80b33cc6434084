package services

import (
	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

// DefaultTaxRate is the single fixed VAT rate applied to every order.
const DefaultTaxRate = 0.19

// StandardOrderCalculator assembles the final order total. The flash
// discount only decorates the displayed total; it never participates in the
// arithmetic.
type StandardOrderCalculator struct {
	taxRate float64
	flash   FlashDiscountService
}

// NewOrderCalculator constructs a calculator with the given tax rate. The
// flash service is optional; without one totals carry no display overlay.
func NewOrderCalculator(taxRate float64, flash FlashDiscountService) *StandardOrderCalculator {
	if taxRate <= 0 || taxRate >= 1 {
		taxRate = DefaultTaxRate
	}
	return &StandardOrderCalculator{taxRate: taxRate, flash: flash}
}

// Assemble combines enabled line items, additional costs, and an optional
// promo application into the order total.
func (c *StandardOrderCalculator) Assemble(items []domain.LineItem, additionalCosts float64, promo *domain.DiscountApplication) domain.OrderTotal {
	itemsTotal := 0.0
	for _, item := range items {
		if item.Enabled {
			itemsTotal += item.Price
		}
	}
	itemsTotal = domain.Round2(itemsTotal)

	subtotalBeforeDiscount := itemsTotal + additionalCosts

	discountAmount := 0.0
	if promo != nil && promo.IsValid {
		discountAmount = promo.DiscountAmount
	}

	subtotal := domain.Round2(subtotalBeforeDiscount - discountAmount)
	if subtotal < 0 {
		subtotal = 0
	}
	tax := domain.Round2(subtotal * c.taxRate)
	total := domain.Round2(subtotal + tax)

	order := domain.OrderTotal{
		ItemsTotal:      itemsTotal,
		AdditionalCosts: domain.Round2(additionalCosts),
		DiscountAmount:  domain.Round2(discountAmount),
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           total,
	}

	if c.flash != nil {
		if overlay := c.flash.DisplayPrice(total); overlay.DiscountPercentage > 0 {
			order.Display = &overlay
		}
	}
	return order
}
