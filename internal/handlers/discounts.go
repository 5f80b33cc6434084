package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/httpx"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/observability"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/requestctx"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

const maxRedeemBodySize = 16 * 1024

// DiscountHandlers exposes the promo validation, redemption, and flash
// discount endpoints.
type DiscountHandlers struct {
	discounts services.DiscountService
	flash     services.FlashDiscountService
	stream    *FlashStreamHandler
}

// DiscountHandlersDeps lists the services the discount endpoints depend on.
type DiscountHandlersDeps struct {
	Discounts services.DiscountService
	Flash     services.FlashDiscountService
	Stream    *FlashStreamHandler
}

// NewDiscountHandlers constructs a new DiscountHandlers instance.
func NewDiscountHandlers(deps DiscountHandlersDeps) *DiscountHandlers {
	return &DiscountHandlers{
		discounts: deps.Discounts,
		flash:     deps.Flash,
		stream:    deps.Stream,
	}
}

// Routes registers the /discounts endpoints.
func (h *DiscountHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/validate", h.validate)
	r.Post("/redeem", h.redeem)
	r.Get("/flash", h.flashSnapshot)
	if h.stream != nil {
		r.Get("/flash/stream", h.stream.Stream)
	}
}

func (h *DiscountHandlers) validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.discounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("discounts_unavailable", "discount service unavailable", http.StatusServiceUnavailable))
		return
	}

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	rawTotal := strings.TrimSpace(r.URL.Query().Get("orderTotal"))
	if rawTotal == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "orderTotal query parameter is required", http.StatusBadRequest))
		return
	}
	orderTotal, err := strconv.ParseFloat(rawTotal, 64)
	if err != nil || orderTotal < 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "orderTotal must be a non-negative number", http.StatusBadRequest))
		return
	}

	app := h.discounts.Resolve(ctx, orderTotal, code)
	if app != nil && !app.IsValid && code != "" {
		requestctx.Logger(ctx).Debug("promo code rejected",
			zap.String("code", observability.SanitizeCode(code)),
			zap.String("reason", app.Reason))
	}
	if app == nil {
		writeJSONResponse(w, http.StatusOK, validateResponse{
			IsValid:    false,
			FinalPrice: orderTotal,
		})
		return
	}
	writeJSONResponse(w, http.StatusOK, buildValidateResponse(app))
}

type validateResponse struct {
	IsValid        bool    `json:"is_valid"`
	DiscountID     string  `json:"discount_id,omitempty"`
	Code           string  `json:"code,omitempty"`
	Name           string  `json:"name,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalPrice     float64 `json:"final_price"`
	Reason         string  `json:"reason,omitempty"`
	Message        string  `json:"message,omitempty"`
}

func buildValidateResponse(app *domain.DiscountApplication) validateResponse {
	resp := validateResponse{
		IsValid:        app.IsValid,
		DiscountAmount: app.DiscountAmount,
		FinalPrice:     app.FinalPrice,
		Reason:         app.Reason,
		Message:        app.Message,
	}
	if app.Discount != nil {
		resp.DiscountID = app.Discount.ID
		resp.Code = app.Discount.Code
		resp.Name = app.Discount.Name
	}
	return resp
}

type redeemRequest struct {
	DiscountID     string  `json:"discount_id"`
	OrderID        string  `json:"order_id"`
	OrderTotal     float64 `json:"order_total"`
	DiscountAmount float64 `json:"discount_amount"`
}

type redeemResponse struct {
	DiscountID string `json:"discount_id"`
	Code       string `json:"code,omitempty"`
	UsageCount int    `json:"usage_count"`
}

func (h *DiscountHandlers) redeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.discounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("discounts_unavailable", "discount service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxRedeemBodySize)
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

	var req redeemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	discount, err := h.discounts.Redeem(ctx, services.RedeemDiscountCommand{
		DiscountID:     strings.TrimSpace(req.DiscountID),
		OrderID:        strings.TrimSpace(req.OrderID),
		OrderTotal:     req.OrderTotal,
		DiscountAmount: req.DiscountAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDiscountInvalidCommand):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "discount_id is required", http.StatusBadRequest))
		case errors.Is(err, services.ErrDiscountNotFound):
			httpx.WriteError(ctx, w, httpx.NewError("discount_not_found", "discount not found", http.StatusNotFound))
		case errors.Is(err, services.ErrDiscountStoreUnavailable):
			httpx.WriteError(ctx, w, httpx.NewError("discounts_unavailable", "discount store unavailable", http.StatusServiceUnavailable))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("redeem_failed", "unable to redeem discount", http.StatusInternalServerError))
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, redeemResponse{
		DiscountID: discount.ID,
		Code:       discount.Code,
		UsageCount: discount.UsageCount,
	})
}

type flashSnapshotResponse struct {
	Timer timerPayload       `json:"timer"`
	Price *flashPricePayload `json:"price,omitempty"`
}

type timerPayload struct {
	Active       bool    `json:"active"`
	Urgent       bool    `json:"urgent"`
	Name         string  `json:"name,omitempty"`
	Percentage   float64 `json:"percentage"`
	Days         int     `json:"days"`
	Hours        int     `json:"hours"`
	Minutes      int     `json:"minutes"`
	Seconds      int     `json:"seconds"`
	TotalSeconds int64   `json:"total_seconds"`
	EndsAt       string  `json:"ends_at,omitempty"`
}

func buildTimerPayload(timer domain.DiscountTimer) timerPayload {
	return timerPayload{
		Active:       timer.Active,
		Urgent:       timer.Urgent,
		Name:         timer.Name,
		Percentage:   timer.Percentage,
		Days:         timer.Days,
		Hours:        timer.Hours,
		Minutes:      timer.Minutes,
		Seconds:      timer.Seconds,
		TotalSeconds: timer.TotalSeconds,
		EndsAt:       formatTime(timer.EndsAt),
	}
}

func (h *DiscountHandlers) flashSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.flash == nil {
		httpx.WriteError(ctx, w, httpx.NewError("flash_unavailable", "flash discount service unavailable", http.StatusServiceUnavailable))
		return
	}

	resp := flashSnapshotResponse{Timer: buildTimerPayload(h.flash.Snapshot())}

	if rawPrice := strings.TrimSpace(r.URL.Query().Get("price")); rawPrice != "" {
		price, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil || price < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "price must be a non-negative number", http.StatusBadRequest))
			return
		}
		flashPrice := h.flash.DisplayPrice(price)
		resp.Price = &flashPricePayload{
			DisplayPrice:       flashPrice.DisplayPrice,
			FinalPrice:         flashPrice.FinalPrice,
			DiscountAmount:     flashPrice.DiscountAmount,
			DiscountPercentage: flashPrice.DiscountPercentage,
		}
	}

	writeJSONResponse(w, http.StatusOK, resp)
}
