package di

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/config"
	pfirestore "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/firestore"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/jobs"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/repositories"
	fsrepo "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/repositories/firestore"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

const closeTimeout = 10 * time.Second

// Container wires configuration, storage, messaging, and the pricing
// services into one graph with a single Close.
type Container struct {
	Config config.Config
	Logger *zap.Logger

	Provider *pfirestore.Provider
	Registry repositories.Registry

	UnitPrices services.UnitPriceService
	Pricer     services.SignPricer
	Shipping   services.ShippingEstimator
	Discounts  services.DiscountService
	Flash      services.FlashDiscountService
	Order      services.OrderCalculator
	Quotes     services.QuoteService

	flashEngine  *services.FlashDiscountEngine
	pubsubClient *pubsub.Client
	pubsubTopic  *pubsub.Topic
}

// NewContainer builds the full service graph from configuration. Optional
// collaborators (event publisher, flash engine) degrade to nil when their
// feature flag is off or their backend is unreachable.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider := pfirestore.NewProvider(pfirestore.Settings{
		ProjectID:    cfg.Firestore.ProjectID,
		EmulatorHost: cfg.Firestore.EmulatorHost,
	})

	registry, err := fsrepo.NewRegistry(provider, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Provider: provider,
		Registry: registry,
	}

	unitPrices, err := services.NewUnitPriceCache(services.UnitPriceCacheDeps{
		Components: registry.PriceComponents(),
		TTL:        cfg.Pricing.UnitPriceTTL,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	c.UnitPrices = unitPrices

	c.Pricer = services.NewSignPriceCalculator(services.DefaultCostModelConfig())
	c.Shipping = services.NewTierShippingEstimator(services.ShippingRates{
		ParcelSmall:           cfg.Shipping.ParcelSmallCost,
		ParcelMedium:          cfg.Shipping.ParcelMediumCost,
		ParcelLarge:           cfg.Shipping.ParcelLargeCost,
		PersonalDelivery:      cfg.Shipping.PersonalDeliveryCost,
		PalletFreight:         cfg.Shipping.PalletFreightCost,
		PersonalDeliveryMaxKM: cfg.Shipping.PersonalDeliveryMaxKM,
	})

	if cfg.Features.EnablePromotions {
		publisher := c.buildEventPublisher(ctx, cfg, logger)
		discounts, err := services.NewPromoDiscountService(services.PromoDiscountServiceDeps{
			Discounts: registry.Discounts(),
			Publisher: publisher,
			CacheTTL:  cfg.Pricing.DiscountCacheTTL,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		c.Discounts = discounts
	}

	if cfg.Features.EnableFlashDiscounts {
		engine, err := services.NewFlashDiscountEngine(services.FlashDiscountEngineDeps{
			FlashDiscounts: registry.FlashDiscounts(),
			TickInterval:   cfg.Flash.TickInterval,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		c.flashEngine = engine
		c.Flash = engine
	}

	order := services.NewOrderCalculator(cfg.Pricing.TaxRate, c.Flash)
	c.Order = order

	quotes, err := services.NewSignQuoteService(services.SignQuoteServiceDeps{
		Prices:          c.UnitPrices,
		Pricer:          c.Pricer,
		Shipping:        c.Shipping,
		Discounts:       c.Discounts,
		Order:           order,
		InstallationFee: cfg.Pricing.InstallationFee,
	})
	if err != nil {
		return nil, err
	}
	c.Quotes = quotes

	return c, nil
}

// buildEventPublisher connects the Pub/Sub topic for redemption events. A
// broken messaging backend is logged and skipped; redemptions still work
// without downstream events.
func (c *Container) buildEventPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) services.DiscountEventPublisher {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.DiscountEventsTopic == "" {
		return nil
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		logger.Warn("pubsub client unavailable, discount events disabled",
			zap.String("project_id", cfg.PubSub.ProjectID),
			zap.Error(err))
		return nil
	}

	topic := client.Topic(cfg.PubSub.DiscountEventsTopic)
	publisher, err := jobs.NewPubSubDiscountEventPublisher(topic)
	if err != nil {
		logger.Warn("discount event publisher not wired", zap.Error(err))
		topic.Stop()
		_ = client.Close()
		return nil
	}

	c.pubsubClient = client
	c.pubsubTopic = topic
	return publisher
}

// Start launches the background components of the graph: the flash
// countdown ticker with an initial configuration load.
func (c *Container) Start(ctx context.Context) {
	if c.flashEngine == nil {
		return
	}
	if err := c.flashEngine.Refresh(ctx); err != nil {
		c.Logger.Warn("flash discount initial load failed", zap.Error(err))
	}
	c.flashEngine.Start(ctx)
}

// Close tears the graph down in reverse construction order.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, closeTimeout)
	defer cancel()

	var errs []error

	if c.flashEngine != nil {
		c.flashEngine.Close()
	}

	if c.pubsubTopic != nil {
		c.pubsubTopic.Stop()
	}
	if c.pubsubClient != nil {
		if err := c.pubsubClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Registry != nil {
		if err := c.Registry.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
