package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	pfirestore "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/firestore"
)

const discountsCollection = "discounts"

type discountDocument struct {
	Code              string     `firestore:"code"`
	Name              string     `firestore:"name"`
	Type              string     `firestore:"type"`
	Value             float64    `firestore:"value"`
	MinOrderValue     *float64   `firestore:"min_order_value,omitempty"`
	MaxDiscountAmount *float64   `firestore:"max_discount_amount,omitempty"`
	StartDate         *time.Time `firestore:"start_date,omitempty"`
	EndDate           *time.Time `firestore:"end_date,omitempty"`
	IsActive          bool       `firestore:"is_active"`
	UsageCount        int        `firestore:"usage_count"`
	UsageLimit        *int       `firestore:"usage_limit,omitempty"`
	CreatedAt         time.Time  `firestore:"created_at"`
	UpdatedAt         time.Time  `firestore:"updated_at"`
}

// DiscountRepository implements repositories.DiscountRepository backed by
// Firestore. Records are written out of band by the catalog sync; this side
// only reads them and increments usage counters.
type DiscountRepository struct {
	provider  *pfirestore.Provider
	discounts *pfirestore.BaseRepository[discountDocument]
	logger    *zap.Logger
}

// NewDiscountRepository constructs a Firestore-backed discount repository.
func NewDiscountRepository(provider *pfirestore.Provider, logger *zap.Logger) (*DiscountRepository, error) {
	if provider == nil {
		return nil, errors.New("discount repository requires firestore provider")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscountRepository{
		provider:  provider,
		discounts: pfirestore.NewBaseRepository[discountDocument](provider, discountsCollection),
		logger:    logger,
	}, nil
}

// ListActive returns discounts flagged active, newest first. Documents that
// fail to decode are logged and skipped so one malformed record from the
// external sync cannot take down the whole catalog.
func (r *DiscountRepository) ListActive(ctx context.Context) ([]domain.Discount, error) {
	docs, err := r.discounts.QueryLenient(ctx, func(query firestore.Query) firestore.Query {
		return query.
			Where("is_active", "==", true).
			OrderBy("created_at", firestore.Desc)
	}, func(id string, decodeErr error) {
		r.logger.Warn("skipping malformed discount record",
			zap.String("discount_id", id),
			zap.Error(decodeErr))
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Discount, 0, len(docs))
	for _, doc := range docs {
		out = append(out, discountFromDocument(doc.ID, doc.Data))
	}
	return out, nil
}

// FindByCode looks up a discount by its exact code.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (domain.Discount, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return domain.Discount{}, pfirestore.WrapError("discounts.find_by_code",
			status.Error(codes.NotFound, "discount code is empty"))
	}

	docs, err := r.discounts.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("code", "==", trimmed).Limit(1)
	})
	if err != nil {
		return domain.Discount{}, err
	}
	if len(docs) == 0 {
		return domain.Discount{}, pfirestore.WrapError("discounts.find_by_code",
			status.Errorf(codes.NotFound, "discount code %s not found", trimmed))
	}
	return discountFromDocument(docs[0].ID, docs[0].Data), nil
}

// IncrementUsage applies the partial update {usage_count, updated_at} inside
// a transaction and returns the updated record. Retrying with the same
// target count is idempotent because the counter is recomputed from the
// stored document.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, discountID string, now time.Time) (domain.Discount, error) {
	id := strings.TrimSpace(discountID)
	if id == "" {
		return domain.Discount{}, pfirestore.WrapError("discounts.increment_usage",
			status.Error(codes.NotFound, "discount id is empty"))
	}

	var updated domain.Discount
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.discounts.DocumentRef(ctx, id)
		if err != nil {
			return err
		}

		snapshot, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var doc discountDocument
		if err := snapshot.DataTo(&doc); err != nil {
			return fmt.Errorf("firestore discounts decode %s: %w", id, err)
		}

		doc.UsageCount++
		doc.UpdatedAt = now.UTC()
		if err := tx.Update(ref, []firestore.Update{
			{Path: "usage_count", Value: doc.UsageCount},
			{Path: "updated_at", Value: doc.UpdatedAt},
		}); err != nil {
			return err
		}

		updated = discountFromDocument(id, doc)
		return nil
	})
	if err != nil {
		return domain.Discount{}, pfirestore.WrapError("discounts.increment_usage", err)
	}
	return updated, nil
}

func discountFromDocument(id string, doc discountDocument) domain.Discount {
	discount := domain.Discount{
		ID:                id,
		Code:              strings.TrimSpace(doc.Code),
		Name:              doc.Name,
		Type:              domain.DiscountType(doc.Type),
		Value:             doc.Value,
		MinOrderValue:     doc.MinOrderValue,
		MaxDiscountAmount: doc.MaxDiscountAmount,
		Active:            doc.IsActive,
		UsageCount:        doc.UsageCount,
		UsageLimit:        doc.UsageLimit,
		CreatedAt:         doc.CreatedAt.UTC(),
		UpdatedAt:         doc.UpdatedAt.UTC(),
	}
	if doc.StartDate != nil {
		discount.StartsAt = doc.StartDate.UTC()
	}
	if doc.EndDate != nil {
		discount.EndsAt = doc.EndDate.UTC()
	}
	return discount
}
