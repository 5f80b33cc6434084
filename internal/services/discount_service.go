package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/repositories"
)

const defaultDiscountCacheTTL = 10 * time.Minute

// PromoDiscountServiceDeps bundles dependencies required to construct the
// promo discount service. Publisher is optional; without one redemptions are
// simply not announced.
type PromoDiscountServiceDeps struct {
	Discounts repositories.DiscountRepository
	Publisher DiscountEventPublisher
	CacheTTL  time.Duration
	Now       func() time.Time
	Logger    *zap.Logger
}

type catalogSnapshot struct {
	discounts []domain.Discount
	fetchedAt time.Time
}

// PromoDiscountService implements DiscountService: a 10 minute catalog
// cache, code resolution, auto-apply selection, and usage redemption.
type PromoDiscountService struct {
	repo      repositories.DiscountRepository
	publisher DiscountEventPublisher
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger

	catalog atomic.Pointer[catalogSnapshot]
}

// NewPromoDiscountService wires a PromoDiscountService backed by the
// discount repository.
func NewPromoDiscountService(deps PromoDiscountServiceDeps) (*PromoDiscountService, error) {
	if deps.Discounts == nil {
		return nil, ErrDiscountRepositoryMissing
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = defaultDiscountCacheTTL
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromoDiscountService{
		repo:      deps.Discounts,
		publisher: deps.Publisher,
		ttl:       ttl,
		now:       func() time.Time { return now().UTC() },
		logger:    logger,
	}, nil
}

// Catalog returns the currently valid discounts, newest first. Store
// failures degrade to the last cached catalog or an empty list; pricing
// callers never see them as errors.
func (s *PromoDiscountService) Catalog(ctx context.Context) []domain.Discount {
	current := s.catalog.Load()
	if current != nil && s.now().Sub(current.fetchedAt) < s.ttl {
		return current.discounts
	}

	loadedAt := s.now()
	records, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Warn("discount catalog load failed", zap.Error(err))
		if current != nil {
			return current.discounts
		}
		return nil
	}

	valid := make([]domain.Discount, 0, len(records))
	for _, discount := range records {
		if discount.ValidAt(loadedAt) {
			valid = append(valid, discount)
		}
	}
	s.catalog.Store(&catalogSnapshot{discounts: valid, fetchedAt: loadedAt})
	return valid
}

// Resolve evaluates a promo code against the catalog, or selects the best
// auto-apply discount when no code is given. A nil result means no discount
// qualified, which is not an error.
func (s *PromoDiscountService) Resolve(ctx context.Context, orderTotal float64, code string) *domain.DiscountApplication {
	catalog := s.Catalog(ctx)

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized != "" {
		for i := range catalog {
			if strings.ToUpper(catalog[i].Code) == normalized {
				return s.apply(catalog[i], orderTotal)
			}
		}
		return &domain.DiscountApplication{
			IsValid: false,
			Reason:  domain.DiscountReasonNotFound,
			Message: fmt.Sprintf("discount code %q is not valid", normalized),
		}
	}

	// Auto-apply: best codeless discount by amount, catalog order breaking
	// ties.
	var best *domain.DiscountApplication
	for i := range catalog {
		if catalog[i].Code != "" {
			continue
		}
		candidate := s.apply(catalog[i], orderTotal)
		if !candidate.IsValid {
			continue
		}
		if best == nil || candidate.DiscountAmount > best.DiscountAmount {
			best = candidate
		}
	}
	return best
}

func (s *PromoDiscountService) apply(discount domain.Discount, orderTotal float64) *domain.DiscountApplication {
	if discount.MinOrderValue != nil && orderTotal < *discount.MinOrderValue {
		return &domain.DiscountApplication{
			Discount: &discount,
			IsValid:  false,
			Reason:   domain.DiscountReasonMinOrderNotMet,
			Message:  fmt.Sprintf("order total must be at least %.2f", *discount.MinOrderValue),
		}
	}

	amount := discount.AmountFor(orderTotal)
	final := domain.Round2(orderTotal - amount)
	if final < 0 {
		final = 0
	}
	return &domain.DiscountApplication{
		Discount:       &discount,
		DiscountAmount: amount,
		FinalPrice:     final,
		IsValid:        true,
	}
}

// Redeem increments the usage counter for a confirmed use, invalidates the
// catalog cache, and announces the redemption when a publisher is wired.
func (s *PromoDiscountService) Redeem(ctx context.Context, cmd RedeemDiscountCommand) (domain.Discount, error) {
	if strings.TrimSpace(cmd.DiscountID) == "" {
		return domain.Discount{}, ErrDiscountInvalidCommand
	}

	redeemedAt := s.now()
	updated, err := s.repo.IncrementUsage(ctx, cmd.DiscountID, redeemedAt)
	if err != nil {
		if repoErr, ok := err.(repositories.RepositoryError); ok {
			switch {
			case repoErr.IsNotFound():
				return domain.Discount{}, ErrDiscountNotFound
			case repoErr.IsUnavailable():
				return domain.Discount{}, fmt.Errorf("%w: %v", ErrDiscountStoreUnavailable, err)
			}
		}
		return domain.Discount{}, err
	}

	s.Invalidate()

	if s.publisher != nil {
		event := DiscountRedeemedEvent{
			DiscountID:     updated.ID,
			Code:           updated.Code,
			OrderID:        cmd.OrderID,
			OrderTotal:     cmd.OrderTotal,
			DiscountAmount: cmd.DiscountAmount,
			UsageCount:     updated.UsageCount,
			RedeemedAt:     redeemedAt,
		}
		if _, err := s.publisher.PublishDiscountRedeemed(ctx, event); err != nil {
			s.logger.Warn("discount redemption event publish failed",
				zap.String("discount_id", updated.ID),
				zap.Error(err))
		}
	}

	return updated, nil
}

// Invalidate drops the cached catalog so the next load hits the store.
func (s *PromoDiscountService) Invalidate() {
	s.catalog.Store(nil)
}
