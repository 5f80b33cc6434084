package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/httpx"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

const maxQuoteBodySize = 64 * 1024

// PricingHandlers exposes the quote endpoint.
type PricingHandlers struct {
	quotes services.QuoteService
}

// NewPricingHandlers constructs a new PricingHandlers instance.
func NewPricingHandlers(quotes services.QuoteService) *PricingHandlers {
	return &PricingHandlers{quotes: quotes}
}

// Routes registers the /pricing endpoints.
func (h *PricingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/quote", h.createQuote)
}

func (h *PricingHandlers) createQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_service_unavailable", "quote service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxQuoteBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errEmptyBody):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	var req quoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	quote, err := h.quotes.Quote(ctx, services.QuoteCommand{
		State:     buildConfigurationState(req),
		PromoCode: strings.TrimSpace(req.PromoCode),
	})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_failed", "unable to price configuration", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, buildQuotePayload(quote))
}

type quoteRequest struct {
	Signs              []signPayload `json:"signs"`
	WithInstallation   bool          `json:"with_installation"`
	CustomerPostalCode string        `json:"customer_postal_code"`
	DistanceKm         *float64      `json:"distance_km,omitempty"`
	PromoCode          string        `json:"promo_code"`
}

type signPayload struct {
	ID                string         `json:"id"`
	Design            *designPayload `json:"design,omitempty"`
	WidthCm           float64        `json:"width_cm"`
	HeightCm          float64        `json:"height_cm"`
	IsWaterproof      bool           `json:"is_waterproof"`
	IsTwoPart         bool           `json:"is_two_part"`
	HasUvPrint        bool           `json:"has_uv_print"`
	HasHangingSystem  bool           `json:"has_hanging_system"`
	ExpressProduction bool           `json:"express_production"`
	Enabled           bool           `json:"enabled"`
}

type designPayload struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	OriginalWidthCm  float64 `json:"original_width_cm"`
	OriginalHeightCm float64 `json:"original_height_cm"`
	Elements         int     `json:"elements"`
	LedLengthM       float64 `json:"led_length_m"`
}

type quoteResponse struct {
	ID        string               `json:"id"`
	Items     []quoteItemPayload   `json:"items"`
	Shipping  shippingQuotePayload `json:"shipping"`
	Promo     *promoPayload        `json:"promo,omitempty"`
	Order     orderTotalPayload    `json:"order"`
	CreatedAt string               `json:"created_at"`
}

type quoteItemPayload struct {
	ID        string           `json:"id"`
	Label     string           `json:"label"`
	Enabled   bool             `json:"enabled"`
	Breakdown breakdownPayload `json:"breakdown"`
}

type breakdownPayload struct {
	AreaM2            float64 `json:"area_m2"`
	LedLengthM        float64 `json:"led_length_m"`
	PowerDrawW        int     `json:"power_draw_w"`
	Material          float64 `json:"material"`
	UvPrint           float64 `json:"uv_print"`
	Led               float64 `json:"led"`
	Elements          float64 `json:"elements"`
	Packaging         float64 `json:"packaging"`
	Controller        float64 `json:"controller"`
	BaseSubtotal      float64 `json:"base_subtotal"`
	Labor             float64 `json:"labor"`
	HangingSystem     float64 `json:"hanging_system"`
	Waterproof        float64 `json:"waterproof"`
	TwoPart           float64 `json:"two_part"`
	Express           float64 `json:"express"`
	AdministrativeFee float64 `json:"administrative_fee"`
	Total             float64 `json:"total"`
}

type shippingQuotePayload struct {
	Method             string  `json:"method"`
	Cost               float64 `json:"cost"`
	RequiresPostalCode bool    `json:"requires_postal_code"`
	Description        string  `json:"description,omitempty"`
}

type promoPayload struct {
	DiscountID     string  `json:"discount_id,omitempty"`
	Code           string  `json:"code,omitempty"`
	Name           string  `json:"name,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalPrice     float64 `json:"final_price"`
	IsValid        bool    `json:"is_valid"`
	Reason         string  `json:"reason,omitempty"`
	Message        string  `json:"message,omitempty"`
}

type orderTotalPayload struct {
	ItemsTotal      float64            `json:"items_total"`
	AdditionalCosts float64            `json:"additional_costs"`
	DiscountAmount  float64            `json:"discount_amount"`
	Subtotal        float64            `json:"subtotal"`
	Tax             float64            `json:"tax"`
	Total           float64            `json:"total"`
	Display         *flashPricePayload `json:"display,omitempty"`
}

type flashPricePayload struct {
	DisplayPrice       float64 `json:"display_price"`
	FinalPrice         float64 `json:"final_price"`
	DiscountAmount     float64 `json:"discount_amount"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

func buildConfigurationState(req quoteRequest) domain.ConfigurationState {
	signs := make([]domain.SignConfiguration, 0, len(req.Signs))
	for _, sign := range req.Signs {
		cfg := domain.SignConfiguration{
			ID:                strings.TrimSpace(sign.ID),
			WidthCM:           sign.WidthCm,
			HeightCM:          sign.HeightCm,
			IsWaterproof:      sign.IsWaterproof,
			IsTwoPart:         sign.IsTwoPart,
			HasUVPrint:        sign.HasUvPrint,
			HasHangingSystem:  sign.HasHangingSystem,
			ExpressProduction: sign.ExpressProduction,
			Enabled:           sign.Enabled,
		}
		if sign.Design != nil {
			cfg.Design = &domain.NeonDesign{
				ID:               strings.TrimSpace(sign.Design.ID),
				Name:             sign.Design.Name,
				OriginalWidthCM:  sign.Design.OriginalWidthCm,
				OriginalHeightCM: sign.Design.OriginalHeightCm,
				Elements:         sign.Design.Elements,
				LEDLengthM:       sign.Design.LedLengthM,
			}
		}
		signs = append(signs, cfg)
	}
	return domain.ConfigurationState{
		Signs:              signs,
		WithInstallation:   req.WithInstallation,
		CustomerPostalCode: strings.TrimSpace(req.CustomerPostalCode),
		DistanceKM:         req.DistanceKm,
	}
}

func buildQuotePayload(quote services.Quote) quoteResponse {
	items := make([]quoteItemPayload, 0, len(quote.Items))
	for _, item := range quote.Items {
		items = append(items, quoteItemPayload{
			ID:        item.ID,
			Label:     item.Label,
			Enabled:   item.Enabled,
			Breakdown: buildBreakdownPayload(item.Breakdown),
		})
	}
	return quoteResponse{
		ID:        quote.ID,
		Items:     items,
		Shipping:  buildShippingPayload(quote.Shipping),
		Promo:     buildPromoPayload(quote.Promo),
		Order:     buildOrderPayload(quote.Order),
		CreatedAt: formatTime(quote.CreatedAt),
	}
}

func buildBreakdownPayload(b domain.CostBreakdown) breakdownPayload {
	return breakdownPayload{
		AreaM2:            b.AreaM2,
		LedLengthM:        b.LEDLengthM,
		PowerDrawW:        b.PowerDrawW,
		Material:          b.Material,
		UvPrint:           b.UVPrint,
		Led:               b.LED,
		Elements:          b.Elements,
		Packaging:         b.Packaging,
		Controller:        b.Controller,
		BaseSubtotal:      b.BaseSubtotal,
		Labor:             b.Labor,
		HangingSystem:     b.HangingSystem,
		Waterproof:        b.Waterproof,
		TwoPart:           b.TwoPart,
		Express:           b.Express,
		AdministrativeFee: b.AdministrativeFee,
		Total:             b.Total,
	}
}

func buildShippingPayload(quote domain.ShippingQuote) shippingQuotePayload {
	return shippingQuotePayload{
		Method:             string(quote.Method),
		Cost:               quote.Cost,
		RequiresPostalCode: quote.RequiresPostalCode,
		Description:        quote.Description,
	}
}

func buildPromoPayload(app *domain.DiscountApplication) *promoPayload {
	if app == nil {
		return nil
	}
	payload := &promoPayload{
		DiscountAmount: app.DiscountAmount,
		FinalPrice:     app.FinalPrice,
		IsValid:        app.IsValid,
		Reason:         app.Reason,
		Message:        app.Message,
	}
	if app.Discount != nil {
		payload.DiscountID = app.Discount.ID
		payload.Code = app.Discount.Code
		payload.Name = app.Discount.Name
	}
	return payload
}

func buildOrderPayload(order domain.OrderTotal) orderTotalPayload {
	payload := orderTotalPayload{
		ItemsTotal:      order.ItemsTotal,
		AdditionalCosts: order.AdditionalCosts,
		DiscountAmount:  order.DiscountAmount,
		Subtotal:        order.Subtotal,
		Tax:             order.Tax,
		Total:           order.Total,
	}
	if order.Display != nil {
		payload.Display = &flashPricePayload{
			DisplayPrice:       order.Display.DisplayPrice,
			FinalPrice:         order.Display.FinalPrice,
			DiscountAmount:     order.Display.DiscountAmount,
			DiscountPercentage: order.Display.DiscountPercentage,
		}
	}
	return payload
}
