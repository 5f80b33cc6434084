package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

func newDiscountRouter(discounts *fakeDiscountService, flash *fakeFlashService) http.Handler {
	deps := DiscountHandlersDeps{Discounts: discounts, Flash: flash}
	return NewRouter(WithDiscountRoutes(NewDiscountHandlers(deps).Routes))
}

func TestValidateDiscountValidCode(t *testing.T) {
	discounts := &fakeDiscountService{app: &domain.DiscountApplication{
		Discount:       &domain.Discount{ID: "d1", Code: "SOMMER20", Name: "Sommeraktion"},
		DiscountAmount: 50,
		FinalPrice:     200,
		IsValid:        true,
	}}
	router := newDiscountRouter(discounts, &fakeFlashService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts/validate?code=sommer20&orderTotal=250", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp validateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsValid || resp.Code != "SOMMER20" || resp.DiscountAmount != 50 || resp.FinalPrice != 200 {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	if discounts.lastTotal != 250 || discounts.lastCode != "sommer20" {
		t.Fatalf("unexpected resolve args: total=%v code=%q", discounts.lastTotal, discounts.lastCode)
	}
}

func TestValidateDiscountNoCandidate(t *testing.T) {
	router := newDiscountRouter(&fakeDiscountService{}, &fakeFlashService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts/validate?orderTotal=80", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp validateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsValid {
		t.Fatal("expected is_valid false without a candidate")
	}
	if resp.FinalPrice != 80 {
		t.Fatalf("expected final price 80, got %v", resp.FinalPrice)
	}
}

func TestValidateDiscountMissingOrderTotal(t *testing.T) {
	router := newDiscountRouter(&fakeDiscountService{}, &fakeFlashService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts/validate?code=X", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRedeemDiscount(t *testing.T) {
	discounts := &fakeDiscountService{redeemed: domain.Discount{ID: "d1", Code: "SOMMER20", UsageCount: 6}}
	router := newDiscountRouter(discounts, &fakeFlashService{})

	body := `{"discount_id": " d1 ", "order_id": "ord-9", "order_total": 250, "discount_amount": 50}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/redeem", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp redeemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DiscountID != "d1" || resp.UsageCount != 6 {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	if discounts.lastRedeem.DiscountID != "d1" || discounts.lastRedeem.OrderID != "ord-9" {
		t.Fatalf("unexpected redeem command: %+v", discounts.lastRedeem)
	}
	if discounts.lastRedeem.OrderTotal != 250 || discounts.lastRedeem.DiscountAmount != 50 {
		t.Fatalf("unexpected redeem amounts: %+v", discounts.lastRedeem)
	}
}

func TestRedeemDiscountErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: services.ErrDiscountNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid command", err: services.ErrDiscountInvalidCommand, wantStatus: http.StatusBadRequest},
		{name: "store unavailable", err: services.ErrDiscountStoreUnavailable, wantStatus: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newDiscountRouter(&fakeDiscountService{redeemErr: tc.err}, &fakeFlashService{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/redeem", strings.NewReader(`{"discount_id":"d1"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestFlashSnapshot(t *testing.T) {
	ends := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	flash := &fakeFlashService{
		timer: domain.DiscountTimer{
			Active:       true,
			Name:         "Blitzaktion",
			Percentage:   20,
			Minutes:      5,
			TotalSeconds: 300,
			EndsAt:       ends,
		},
		price: domain.FlashPrice{DisplayPrice: 250, FinalPrice: 200, DiscountAmount: 50, DiscountPercentage: 20},
	}
	router := newDiscountRouter(&fakeDiscountService{}, flash)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts/flash?price=200", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp flashSnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Timer.Active || resp.Timer.TotalSeconds != 300 {
		t.Fatalf("unexpected timer payload: %+v", resp.Timer)
	}
	if resp.Timer.EndsAt != ends.Format(time.RFC3339Nano) {
		t.Fatalf("unexpected ends_at: %s", resp.Timer.EndsAt)
	}
	if resp.Price == nil || resp.Price.DisplayPrice != 250 || resp.Price.FinalPrice != 200 {
		t.Fatalf("unexpected price payload: %+v", resp.Price)
	}
	if flash.lastPrice != 200 {
		t.Fatalf("expected DisplayPrice(200), got %v", flash.lastPrice)
	}
}

func TestFlashSnapshotWithoutPrice(t *testing.T) {
	flash := &fakeFlashService{timer: domain.DiscountTimer{Active: false}}
	router := newDiscountRouter(&fakeDiscountService{}, flash)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts/flash", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp flashSnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Price != nil {
		t.Fatalf("expected no price overlay, got %+v", resp.Price)
	}
}

func TestFlashSnapshotInvalidPrice(t *testing.T) {
	router := newDiscountRouter(&fakeDiscountService{}, &fakeFlashService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discounts/flash?price=-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
