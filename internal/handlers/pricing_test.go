package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

func newPricingRouter(quotes *fakeQuoteService) http.Handler {
	return NewRouter(WithPricingRoutes(NewPricingHandlers(quotes).Routes))
}

func TestCreateQuoteSuccess(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	quotes := &fakeQuoteService{quote: services.Quote{
		ID: "01JD0QUOTE",
		Items: []services.QuoteItem{{
			ID:        "sign-1",
			Label:     "Open Late",
			Enabled:   true,
			Breakdown: domain.CostBreakdown{Total: 250},
		}},
		Shipping:  domain.ShippingQuote{Method: domain.ShippingPickup, Cost: 0},
		Order:     domain.OrderTotal{ItemsTotal: 250, Subtotal: 250, Tax: 47.5, Total: 297.5},
		CreatedAt: created,
	}}
	router := newPricingRouter(quotes)

	body := `{
		"signs": [{
			"id": " sign-1 ",
			"design": {"id": "d1", "name": "Open Late", "original_width_cm": 100, "original_height_cm": 40, "elements": 4, "led_length_m": 5},
			"width_cm": 100,
			"height_cm": 40,
			"enabled": true
		}],
		"with_installation": true,
		"distance_km": 42.5,
		"promo_code": " sommer20 "
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp quoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "01JD0QUOTE" {
		t.Fatalf("expected quote id 01JD0QUOTE, got %q", resp.ID)
	}
	if len(resp.Items) != 1 || resp.Items[0].Breakdown.Total != 250 {
		t.Fatalf("unexpected items payload: %+v", resp.Items)
	}
	if resp.Order.Total != 297.5 {
		t.Fatalf("expected order total 297.5, got %v", resp.Order.Total)
	}
	if resp.CreatedAt != created.Format(time.RFC3339Nano) {
		t.Fatalf("expected created_at %s, got %s", created.Format(time.RFC3339Nano), resp.CreatedAt)
	}

	if quotes.calls != 1 {
		t.Fatalf("expected one service call, got %d", quotes.calls)
	}
	cmd := quotes.lastCmd
	if cmd.PromoCode != "sommer20" {
		t.Fatalf("expected trimmed promo code, got %q", cmd.PromoCode)
	}
	if len(cmd.State.Signs) != 1 {
		t.Fatalf("expected one sign in state, got %d", len(cmd.State.Signs))
	}
	sign := cmd.State.Signs[0]
	if sign.ID != "sign-1" {
		t.Fatalf("expected trimmed sign id, got %q", sign.ID)
	}
	if sign.Design == nil || sign.Design.Elements != 4 || sign.Design.LEDLengthM != 5 {
		t.Fatalf("design not mapped: %+v", sign.Design)
	}
	if !cmd.State.WithInstallation {
		t.Fatal("expected with_installation to carry over")
	}
	if cmd.State.DistanceKM == nil || *cmd.State.DistanceKM != 42.5 {
		t.Fatalf("expected distance 42.5, got %v", cmd.State.DistanceKM)
	}
}

func TestCreateQuoteEmptyBody(t *testing.T) {
	router := newPricingRouter(&fakeQuoteService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader("   "))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope["error"] != "invalid_request" {
		t.Fatalf("expected invalid_request, got %v", envelope["error"])
	}
}

func TestCreateQuoteInvalidJSON(t *testing.T) {
	router := newPricingRouter(&fakeQuoteService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader("{not-json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateQuoteServiceError(t *testing.T) {
	quotes := &fakeQuoteService{err: errors.New("boom")}
	router := newPricingRouter(quotes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(`{"signs":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope["error"] != "quote_failed" {
		t.Fatalf("expected quote_failed, got %v", envelope["error"])
	}
}
