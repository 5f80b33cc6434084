package firestore

import (
	"context"
	"errors"

	"go.uber.org/zap"

	pfirestore "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/firestore"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/repositories"
)

// Registry bundles the Firestore-backed repositories behind the
// repositories.Registry interface.
type Registry struct {
	provider *pfirestore.Provider

	discounts       *DiscountRepository
	priceComponents *PriceComponentRepository
	flashDiscounts  *FlashDiscountRepository
}

// NewRegistry constructs all Firestore repositories over a shared provider.
func NewRegistry(provider *pfirestore.Provider, logger *zap.Logger) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	discounts, err := NewDiscountRepository(provider, logger)
	if err != nil {
		return nil, err
	}
	priceComponents, err := NewPriceComponentRepository(provider, logger)
	if err != nil {
		return nil, err
	}
	flashDiscounts, err := NewFlashDiscountRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider:        provider,
		discounts:       discounts,
		priceComponents: priceComponents,
		flashDiscounts:  flashDiscounts,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

// Discounts returns the discount repository.
func (r *Registry) Discounts() repositories.DiscountRepository {
	return r.discounts
}

// PriceComponents returns the price component repository.
func (r *Registry) PriceComponents() repositories.PriceComponentRepository {
	return r.priceComponents
}

// FlashDiscounts returns the flash discount repository.
func (r *Registry) FlashDiscounts() repositories.FlashDiscountRepository {
	return r.flashDiscounts
}
