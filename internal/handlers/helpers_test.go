package handlers

import (
	"context"
	"sync"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

type fakeQuoteService struct {
	quote   services.Quote
	err     error
	calls   int
	lastCmd services.QuoteCommand
}

func (f *fakeQuoteService) Quote(_ context.Context, cmd services.QuoteCommand) (services.Quote, error) {
	f.calls++
	f.lastCmd = cmd
	if f.err != nil {
		return services.Quote{}, f.err
	}
	return f.quote, nil
}

type fakeShippingEstimator struct {
	quote        domain.ShippingQuote
	lastSide     float64
	lastDistance *float64
	calls        int
}

func (f *fakeShippingEstimator) Estimate(longestSideCM float64, distanceKM *float64) domain.ShippingQuote {
	f.calls++
	f.lastSide = longestSideCM
	f.lastDistance = distanceKM
	return f.quote
}

type fakeDiscountService struct {
	catalog     []domain.Discount
	app         *domain.DiscountApplication
	redeemed    domain.Discount
	redeemErr   error
	lastTotal   float64
	lastCode    string
	lastRedeem  services.RedeemDiscountCommand
	invalidated int
}

func (f *fakeDiscountService) Catalog(context.Context) []domain.Discount {
	return f.catalog
}

func (f *fakeDiscountService) Resolve(_ context.Context, orderTotal float64, code string) *domain.DiscountApplication {
	f.lastTotal = orderTotal
	f.lastCode = code
	return f.app
}

func (f *fakeDiscountService) Redeem(_ context.Context, cmd services.RedeemDiscountCommand) (domain.Discount, error) {
	f.lastRedeem = cmd
	if f.redeemErr != nil {
		return domain.Discount{}, f.redeemErr
	}
	return f.redeemed, nil
}

func (f *fakeDiscountService) Invalidate() {
	f.invalidated++
}

type fakeFlashService struct {
	mu        sync.Mutex
	timer     domain.DiscountTimer
	price     domain.FlashPrice
	handler   services.TimerHandler
	lastPrice float64
	unsubs    int
	closed    bool
}

func (f *fakeFlashService) Subscribe(handler services.TimerHandler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubs++
	}
}

func (f *fakeFlashService) push(timer domain.DiscountTimer) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(timer)
	}
}

func (f *fakeFlashService) Snapshot() domain.DiscountTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timer
}

func (f *fakeFlashService) DisplayPrice(realPrice float64) domain.FlashPrice {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPrice = realPrice
	return f.price
}

func (f *fakeFlashService) Refresh(context.Context) error { return nil }

func (f *fakeFlashService) Start(context.Context) {}

func (f *fakeFlashService) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
