package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/httpx"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

// ShippingHandlers exposes the shipping estimate endpoint.
type ShippingHandlers struct {
	estimator services.ShippingEstimator
}

// NewShippingHandlers constructs a new ShippingHandlers instance.
func NewShippingHandlers(estimator services.ShippingEstimator) *ShippingHandlers {
	return &ShippingHandlers{estimator: estimator}
}

// Routes registers the /shipping endpoints.
func (h *ShippingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/estimate", h.estimate)
}

func (h *ShippingHandlers) estimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.estimator == nil {
		httpx.WriteError(ctx, w, httpx.NewError("shipping_unavailable", "shipping estimator unavailable", http.StatusServiceUnavailable))
		return
	}

	rawSide := strings.TrimSpace(r.URL.Query().Get("longestSide"))
	if rawSide == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "longestSide query parameter is required", http.StatusBadRequest))
		return
	}
	longestSide, err := strconv.ParseFloat(rawSide, 64)
	if err != nil || longestSide < 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "longestSide must be a non-negative number", http.StatusBadRequest))
		return
	}

	var distanceKM *float64
	if rawDistance := strings.TrimSpace(r.URL.Query().Get("distanceKm")); rawDistance != "" {
		distance, err := strconv.ParseFloat(rawDistance, 64)
		if err != nil || distance < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "distanceKm must be a non-negative number", http.StatusBadRequest))
			return
		}
		distanceKM = &distance
	}

	quote := h.estimator.Estimate(longestSide, distanceKM)
	writeJSONResponse(w, http.StatusOK, buildShippingPayload(quote))
}
