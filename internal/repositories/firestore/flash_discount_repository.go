package firestore

import (
	"context"
	"errors"
	"time"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	pfirestore "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/firestore"
)

const (
	flashDiscountsCollection = "flash_discounts"
	// currentFlashDocumentID is the fixed document holding the single
	// current configuration. At most one flash discount exists at a time.
	currentFlashDocumentID = "current"
)

type flashDiscountDocument struct {
	Name       string    `firestore:"name"`
	Percentage float64   `firestore:"percentage"`
	StartDate  time.Time `firestore:"start_date"`
	EndDate    time.Time `firestore:"end_date"`
}

// FlashDiscountRepository implements repositories.FlashDiscountRepository
// backed by Firestore.
type FlashDiscountRepository struct {
	flash *pfirestore.BaseRepository[flashDiscountDocument]
}

// NewFlashDiscountRepository constructs a Firestore-backed flash discount repository.
func NewFlashDiscountRepository(provider *pfirestore.Provider) (*FlashDiscountRepository, error) {
	if provider == nil {
		return nil, errors.New("flash discount repository requires firestore provider")
	}
	return &FlashDiscountRepository{
		flash: pfirestore.NewBaseRepository[flashDiscountDocument](provider, flashDiscountsCollection),
	}, nil
}

// Current returns the single current configuration. A missing document
// surfaces as a not-found repository error the engine treats as "no flash
// discount configured".
func (r *FlashDiscountRepository) Current(ctx context.Context) (domain.FlashDiscount, error) {
	doc, err := r.flash.Get(ctx, currentFlashDocumentID)
	if err != nil {
		return domain.FlashDiscount{}, err
	}
	return domain.FlashDiscount{
		ID:         doc.ID,
		Name:       doc.Data.Name,
		Percentage: doc.Data.Percentage,
		StartsAt:   doc.Data.StartDate.UTC(),
		EndsAt:     doc.Data.EndDate.UTC(),
	}, nil
}
