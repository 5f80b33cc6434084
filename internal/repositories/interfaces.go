package repositories

import (
	"context"
	"time"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for
// dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Discounts() DiscountRepository
	PriceComponents() PriceComponentRepository
	FlashDiscounts() FlashDiscountRepository
}

// RepositoryError wraps low-level persistence failures with the
// categorisation services act on.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// DiscountRepository maintains promotional discount records and their usage
// counters.
type DiscountRepository interface {
	// ListActive returns discounts flagged active, ordered by creation
	// date descending. Records that fail to decode are skipped, not
	// propagated as errors.
	ListActive(ctx context.Context) ([]domain.Discount, error)
	// FindByCode looks up a discount by its exact (normalised) code.
	FindByCode(ctx context.Context, code string) (domain.Discount, error)
	// IncrementUsage applies the partial update {usage_count, updated_at}
	// for a redeemed discount and returns the updated record. Retrying
	// with the same target count is idempotent.
	IncrementUsage(ctx context.Context, discountID string, now time.Time) (domain.Discount, error)
}

// PriceComponentRepository reads the externally synchronised unit cost
// components. Unknown or malformed entries are skipped; absent keys mean
// "use the fallback constant".
type PriceComponentRepository interface {
	GetComponents(ctx context.Context) (map[string]float64, error)
}

// FlashDiscountRepository reads the single current marketing discount
// configuration, if one exists.
type FlashDiscountRepository interface {
	Current(ctx context.Context) (domain.FlashDiscount, error)
}
