package services

import (
	"context"
	"time"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

// UnitPriceService serves the current unit cost component snapshot. Reads are
// synchronous and never touch the network; refreshes happen in the
// background and callers tolerate eventually consistent prices.
type UnitPriceService interface {
	// Components returns the cached snapshot, triggering an asynchronous
	// refresh when the snapshot is older than the TTL.
	Components(ctx context.Context) domain.UnitPriceComponents
	// Refresh fetches fresh components synchronously and replaces the
	// snapshot. On fetch failure the fallback table is installed and
	// returned.
	Refresh(ctx context.Context) domain.UnitPriceComponents
}

// SignPricer computes a full cost breakdown for a configured sign.
type SignPricer interface {
	Breakdown(cfg domain.SignConfiguration, prices domain.UnitPriceComponents) domain.CostBreakdown
	Price(cfg domain.SignConfiguration, prices domain.UnitPriceComponents) float64
}

// ShippingEstimator maps a cart's longest side and optional delivery
// distance to a shipping method and cost.
type ShippingEstimator interface {
	Estimate(longestSideCM float64, distanceKM *float64) domain.ShippingQuote
}

// DiscountService loads the promotional discount catalog and resolves promo
// applications against it.
type DiscountService interface {
	// Catalog returns the currently valid, active discounts, newest first.
	// Upstream failures degrade to the last cached catalog, or an empty
	// list, never an error surfaced to pricing callers.
	Catalog(ctx context.Context) []domain.Discount
	// Resolve evaluates a user supplied code, or selects the best
	// auto-apply discount when code is empty. A nil application means no
	// discount qualified, which is not an error.
	Resolve(ctx context.Context, orderTotal float64, code string) *domain.DiscountApplication
	// Redeem increments the usage counter for a confirmed discount use and
	// invalidates the catalog cache.
	Redeem(ctx context.Context, cmd RedeemDiscountCommand) (domain.Discount, error)
	// Invalidate drops the cached catalog so the next load hits the store.
	Invalidate()
}

// RedeemDiscountCommand captures one confirmed discount redemption.
type RedeemDiscountCommand struct {
	DiscountID     string
	OrderID        string
	OrderTotal     float64
	DiscountAmount float64
}

// TimerHandler receives countdown updates. Handlers are invoked
// synchronously on the ticker goroutine and must not block.
type TimerHandler func(timer domain.DiscountTimer)

// FlashDiscountService runs the time-boxed marketing discount countdown and
// computes its display-only price overlay.
type FlashDiscountService interface {
	// Subscribe registers a handler for countdown ticks and returns an
	// idempotent unsubscribe. Subscribing after Close returns a no-op
	// unsubscribe.
	Subscribe(handler TimerHandler) (unsubscribe func())
	// Snapshot recomputes the countdown view for the current instant.
	Snapshot() domain.DiscountTimer
	// DisplayPrice inflates a real price for presentation. The returned
	// FinalPrice always equals realPrice.
	DisplayPrice(realPrice float64) domain.FlashPrice
	// Refresh replaces the current configuration from the store.
	Refresh(ctx context.Context) error
	// Start launches the shared ticker. Close stops it and releases all
	// subscribers.
	Start(ctx context.Context)
	Close()
}

// OrderCalculator combines priced line items, additional costs, and an
// optional promo application into the final order total.
type OrderCalculator interface {
	Assemble(items []domain.LineItem, additionalCosts float64, promo *domain.DiscountApplication) domain.OrderTotal
}

// QuoteService orchestrates the full quote: per-item prices, shipping,
// promo resolution, tax, and the flash overlay.
type QuoteService interface {
	Quote(ctx context.Context, cmd QuoteCommand) (Quote, error)
}

// QuoteCommand carries the configuration state submitted for pricing.
type QuoteCommand struct {
	State     domain.ConfigurationState
	PromoCode string
}

// QuoteItem is one priced cart position inside a quote.
type QuoteItem struct {
	ID        string
	Label     string
	Enabled   bool
	Breakdown domain.CostBreakdown
}

// Quote is the consumer-facing pricing result.
type Quote struct {
	ID        string
	Items     []QuoteItem
	Shipping  domain.ShippingQuote
	Promo     *domain.DiscountApplication
	Order     domain.OrderTotal
	CreatedAt time.Time
}

// DiscountRedeemedEvent is published after a successful redemption so
// downstream sync jobs can observe usage.
type DiscountRedeemedEvent struct {
	DiscountID     string    `json:"discountId"`
	Code           string    `json:"code,omitempty"`
	OrderID        string    `json:"orderId,omitempty"`
	OrderTotal     float64   `json:"orderTotal"`
	DiscountAmount float64   `json:"discountAmount"`
	UsageCount     int       `json:"usageCount"`
	RedeemedAt     time.Time `json:"redeemedAt"`
}

// DiscountEventPublisher enqueues redemption events for out-of-band
// consumers. Implementations return the broker message id.
type DiscountEventPublisher interface {
	PublishDiscountRedeemed(ctx context.Context, event DiscountRedeemedEvent) (string, error)
}
