package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	pfirestore "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/firestore"
)

const priceComponentsCollection = "price_components"

// One document per cost component; the document id is the component key.
type priceComponentDocument struct {
	Value float64 `firestore:"value"`
}

// PriceComponentRepository implements repositories.PriceComponentRepository
// backed by Firestore. The collection is populated by the external price
// sync; unknown keys are returned as-is and the cache decides what to use.
type PriceComponentRepository struct {
	components *pfirestore.BaseRepository[priceComponentDocument]
	logger     *zap.Logger
}

// NewPriceComponentRepository constructs a Firestore-backed price component repository.
func NewPriceComponentRepository(provider *pfirestore.Provider, logger *zap.Logger) (*PriceComponentRepository, error) {
	if provider == nil {
		return nil, errors.New("price component repository requires firestore provider")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceComponentRepository{
		components: pfirestore.NewBaseRepository[priceComponentDocument](provider, priceComponentsCollection),
		logger:     logger,
	}, nil
}

// GetComponents returns the unit price per component key. Malformed
// documents are logged and skipped; absent keys mean "use the fallback
// constant".
func (r *PriceComponentRepository) GetComponents(ctx context.Context) (map[string]float64, error) {
	docs, err := r.components.QueryLenient(ctx, func(query firestore.Query) firestore.Query {
		return query
	}, func(id string, decodeErr error) {
		r.logger.Warn("skipping malformed price component",
			zap.String("component", id),
			zap.Error(decodeErr))
	})
	if err != nil {
		return nil, err
	}

	components := make(map[string]float64, len(docs))
	for _, doc := range docs {
		if doc.Data.Value <= 0 {
			r.logger.Warn("skipping non-positive price component",
				zap.String("component", doc.ID),
				zap.Float64("value", doc.Data.Value))
			continue
		}
		components[doc.ID] = doc.Data.Value
	}
	return components, nil
}
