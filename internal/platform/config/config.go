package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile            = ".env"
	defaultPort               = "8080"
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultIdleTimeout        = 120 * time.Second
	defaultTaxRate            = 0.19
	defaultUnitPriceTTL       = 5 * time.Minute
	defaultDiscountCacheTTL   = 10 * time.Minute
	defaultInstallationFee    = 120.0
	defaultFlashTick          = time.Second
	defaultParcelSmallCost    = 12.0
	defaultParcelMediumCost   = 19.0
	defaultParcelLargeCost    = 35.0
	defaultPersonalDelivery   = 89.0
	defaultPalletFreightCost  = 180.0
	defaultPersonalDeliveryKM = 150.0
	defaultDiscountTopic      = "discount-events"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Firestore FirestoreConfig
	PubSub    PubSubConfig
	Pricing   PricingConfig
	Shipping  ShippingConfig
	Flash     FlashConfig
	Features  FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// PubSubConfig stores messaging parameters for discount redemption events.
type PubSubConfig struct {
	ProjectID           string
	DiscountEventsTopic string
}

// PricingConfig controls tax and cache behaviour of the pricing engine.
type PricingConfig struct {
	TaxRate          float64
	UnitPriceTTL     time.Duration
	DiscountCacheTTL time.Duration
	InstallationFee  float64
}

// ShippingConfig lists the flat rates charged per shipping method.
type ShippingConfig struct {
	ParcelSmallCost       float64
	ParcelMediumCost      float64
	ParcelLargeCost       float64
	PersonalDeliveryCost  float64
	PalletFreightCost     float64
	PersonalDeliveryMaxKM float64
}

// FlashConfig controls the countdown discount engine.
type FlashConfig struct {
	TickInterval time.Duration
}

// FeatureFlags toggle optional behaviour without redeploying.
type FeatureFlags struct {
	EnablePromotions     bool
	EnableFlashDiscounts bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values
// in the map take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env
// overrides, and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "API_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "API_FIRESTORE_EMULATOR_HOST", ""),
		},
		PubSub: PubSubConfig{
			ProjectID:           stringWithDefault(lookup, "API_PUBSUB_PROJECT_ID", ""),
			DiscountEventsTopic: stringWithDefault(lookup, "API_PUBSUB_DISCOUNT_EVENTS_TOPIC", defaultDiscountTopic),
		},
		Pricing: PricingConfig{
			TaxRate:          floatWithDefault(lookup, "API_PRICING_TAX_RATE", defaultTaxRate),
			UnitPriceTTL:     durationWithDefault(lookup, "API_PRICING_UNIT_PRICE_TTL", defaultUnitPriceTTL),
			DiscountCacheTTL: durationWithDefault(lookup, "API_PRICING_DISCOUNT_CACHE_TTL", defaultDiscountCacheTTL),
			InstallationFee:  floatWithDefault(lookup, "API_PRICING_INSTALLATION_FEE", defaultInstallationFee),
		},
		Shipping: ShippingConfig{
			ParcelSmallCost:       floatWithDefault(lookup, "API_SHIPPING_PARCEL_SMALL_COST", defaultParcelSmallCost),
			ParcelMediumCost:      floatWithDefault(lookup, "API_SHIPPING_PARCEL_MEDIUM_COST", defaultParcelMediumCost),
			ParcelLargeCost:       floatWithDefault(lookup, "API_SHIPPING_PARCEL_LARGE_COST", defaultParcelLargeCost),
			PersonalDeliveryCost:  floatWithDefault(lookup, "API_SHIPPING_PERSONAL_DELIVERY_COST", defaultPersonalDelivery),
			PalletFreightCost:     floatWithDefault(lookup, "API_SHIPPING_PALLET_FREIGHT_COST", defaultPalletFreightCost),
			PersonalDeliveryMaxKM: floatWithDefault(lookup, "API_SHIPPING_PERSONAL_DELIVERY_MAX_KM", defaultPersonalDeliveryKM),
		},
		Flash: FlashConfig{
			TickInterval: durationWithDefault(lookup, "API_FLASH_TICK_INTERVAL", defaultFlashTick),
		},
		Features: FeatureFlags{
			EnablePromotions:     boolWithDefault(lookup, "API_FEATURE_PROMOTIONS", true),
			EnableFlashDiscounts: boolWithDefault(lookup, "API_FEATURE_FLASH_DISCOUNTS", true),
		},
	}

	// Pub/Sub project defaults to the Firestore project when unspecified.
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Firestore.ProjectID == "" {
		missing = append(missing, "Firestore.ProjectID")
	}
	if cfg.Pricing.TaxRate < 0 || cfg.Pricing.TaxRate >= 1 {
		missing = append(missing, "Pricing.TaxRate")
	}
	if cfg.Pricing.UnitPriceTTL <= 0 {
		missing = append(missing, "Pricing.UnitPriceTTL")
	}
	if cfg.Pricing.DiscountCacheTTL <= 0 {
		missing = append(missing, "Pricing.DiscountCacheTTL")
	}
	if cfg.Flash.TickInterval <= 0 {
		missing = append(missing, "Flash.TickInterval")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
