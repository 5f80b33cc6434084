package services

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

// SignQuoteServiceDeps bundles the collaborators of the quote service.
// Discounts is optional; without it quotes carry no promo application.
type SignQuoteServiceDeps struct {
	Prices          UnitPriceService
	Pricer          SignPricer
	Shipping        ShippingEstimator
	Discounts       DiscountService
	Order           OrderCalculator
	InstallationFee float64
	Now             func() time.Time
	NewID           func() string
}

// SignQuoteService orchestrates a full quote: per-item cost breakdowns,
// shipping, promo resolution, and the assembled order total.
type SignQuoteService struct {
	prices          UnitPriceService
	pricer          SignPricer
	shipping        ShippingEstimator
	discounts       DiscountService
	order           OrderCalculator
	installationFee float64
	now             func() time.Time
	newID           func() string
}

// NewSignQuoteService wires a SignQuoteService from its collaborators.
func NewSignQuoteService(deps SignQuoteServiceDeps) (*SignQuoteService, error) {
	if deps.Prices == nil || deps.Pricer == nil || deps.Shipping == nil || deps.Order == nil {
		return nil, ErrQuoteDependenciesMissing
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &SignQuoteService{
		prices:          deps.Prices,
		pricer:          deps.Pricer,
		shipping:        deps.Shipping,
		discounts:       deps.Discounts,
		order:           deps.Order,
		installationFee: deps.InstallationFee,
		now:             func() time.Time { return now().UTC() },
		newID:           newID,
	}, nil
}

// Quote prices the submitted configuration state. Degraded inputs (missing
// designs, unreachable price source) cost to zero or fall back; the caller
// always receives a usable number.
func (s *SignQuoteService) Quote(ctx context.Context, cmd QuoteCommand) (Quote, error) {
	components := s.prices.Components(ctx)

	items := make([]QuoteItem, 0, len(cmd.State.Signs))
	lineItems := make([]domain.LineItem, 0, len(cmd.State.Signs))
	for _, sign := range cmd.State.Signs {
		breakdown := s.pricer.Breakdown(sign, components)
		label := sign.ID
		if sign.Design != nil && strings.TrimSpace(sign.Design.Name) != "" {
			label = sign.Design.Name
		}
		items = append(items, QuoteItem{
			ID:        sign.ID,
			Label:     label,
			Enabled:   sign.Enabled,
			Breakdown: breakdown,
		})
		lineItems = append(lineItems, domain.LineItem{
			ID:      sign.ID,
			Label:   label,
			Price:   breakdown.Total,
			Enabled: sign.Enabled,
		})
	}

	shipping := s.shipping.Estimate(cmd.State.LongestSideCM(), cmd.State.DistanceKM)

	additional := shipping.Cost
	if cmd.State.WithInstallation {
		additional += s.installationFee
	}

	var promo *domain.DiscountApplication
	if s.discounts != nil {
		orderTotal := additional
		for _, item := range lineItems {
			if item.Enabled {
				orderTotal += item.Price
			}
		}
		promo = s.discounts.Resolve(ctx, domain.Round2(orderTotal), cmd.PromoCode)
	}

	order := s.order.Assemble(lineItems, additional, promo)

	return Quote{
		ID:        s.newID(),
		Items:     items,
		Shipping:  shipping,
		Promo:     promo,
		Order:     order,
		CreatedAt: s.now(),
	}, nil
}
