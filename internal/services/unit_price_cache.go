package services

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/repositories"
)

const defaultUnitPriceTTL = 5 * time.Minute

// FallbackUnitPrices is the constant table served when the external price
// source is unreachable or a component key is absent.
var FallbackUnitPrices = domain.UnitPriceComponents{
	MaterialPerM2:  95,
	UVPrintPerM2:   45,
	LEDPerM:        9,
	ControllerBase: 25,
	PackagingPerM2: 12,
	ElementCost:    7,
}

// UnitPriceCacheDeps bundles dependencies required to construct a UnitPriceCache.
type UnitPriceCacheDeps struct {
	Components repositories.PriceComponentRepository
	TTL        time.Duration
	Now        func() time.Time
	Logger     *zap.Logger
}

type priceSnapshot struct {
	components domain.UnitPriceComponents
	fetchedAt  time.Time
	fallback   bool
}

// UnitPriceCache serves unit cost components with a TTL-bounded snapshot.
// Reads never block on the network; stale snapshots trigger a background
// refresh and the slot is replaced wholesale, last writer wins.
type UnitPriceCache struct {
	repo   repositories.PriceComponentRepository
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	snapshot   atomic.Pointer[priceSnapshot]
	refreshing atomic.Bool
}

// NewUnitPriceCache wires a UnitPriceCache backed by the component repository.
func NewUnitPriceCache(deps UnitPriceCacheDeps) (*UnitPriceCache, error) {
	if deps.Components == nil {
		return nil, ErrPriceRepositoryMissing
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = defaultUnitPriceTTL
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitPriceCache{
		repo:   deps.Components,
		ttl:    ttl,
		now:    func() time.Time { return now().UTC() },
		logger: logger,
	}, nil
}

// Components returns the cached snapshot. A missing snapshot is fetched
// synchronously; a stale one is served as-is while a background refresh
// replaces it.
func (c *UnitPriceCache) Components(ctx context.Context) domain.UnitPriceComponents {
	current := c.snapshot.Load()
	if current == nil {
		return c.Refresh(ctx)
	}
	if c.now().Sub(current.fetchedAt) >= c.ttl {
		c.refreshAsync(ctx)
	}
	return current.components
}

// Refresh fetches fresh components and replaces the snapshot. A fetch
// failure installs the fallback table as if it were fresh, so failing calls
// are not repeated within the TTL.
func (c *UnitPriceCache) Refresh(ctx context.Context) domain.UnitPriceComponents {
	fetchedAt := c.now()

	raw, err := c.repo.GetComponents(ctx)
	if err != nil {
		c.logger.Warn("unit price fetch failed, serving fallback table", zap.Error(err))
		fallback := &priceSnapshot{components: FallbackUnitPrices, fetchedAt: fetchedAt, fallback: true}
		c.snapshot.Store(fallback)
		return fallback.components
	}

	fresh := &priceSnapshot{
		components: componentsFromMap(raw),
		fetchedAt:  fetchedAt,
	}
	c.snapshot.Store(fresh)
	return fresh.components
}

// Stale reports whether the current snapshot is past the TTL or absent.
func (c *UnitPriceCache) Stale() bool {
	current := c.snapshot.Load()
	return current == nil || c.now().Sub(current.fetchedAt) >= c.ttl
}

func (c *UnitPriceCache) refreshAsync(ctx context.Context) {
	if !c.refreshing.CompareAndSwap(false, true) {
		return
	}
	refreshCtx := context.WithoutCancel(ctx)
	go func() {
		defer c.refreshing.Store(false)
		c.Refresh(refreshCtx)
	}()
}

func componentsFromMap(raw map[string]float64) domain.UnitPriceComponents {
	components := FallbackUnitPrices
	assign := func(key string, target *float64) {
		if value, ok := raw[key]; ok && value > 0 {
			*target = value
		}
	}
	assign(domain.ComponentMaterial, &components.MaterialPerM2)
	assign(domain.ComponentUVPrint, &components.UVPrintPerM2)
	assign(domain.ComponentLED, &components.LEDPerM)
	assign(domain.ComponentControllerBase, &components.ControllerBase)
	assign(domain.ComponentPackaging, &components.PackagingPerM2)
	assign(domain.ComponentElement, &components.ElementCost)
	return components
}
