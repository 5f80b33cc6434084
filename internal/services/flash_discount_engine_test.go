package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
)

type fakeFlashRepo struct {
	cfg domain.FlashDiscount
	err error
}

func (f *fakeFlashRepo) Current(context.Context) (domain.FlashDiscount, error) {
	if f.err != nil {
		return domain.FlashDiscount{}, f.err
	}
	return f.cfg, nil
}

func newFlashEngine(t *testing.T, now func() time.Time) *FlashDiscountEngine {
	t.Helper()
	engine, err := NewFlashDiscountEngine(FlashDiscountEngineDeps{
		FlashDiscounts: &fakeFlashRepo{err: &fakeRepoError{notFound: true}},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("NewFlashDiscountEngine: %v", err)
	}
	return engine
}

func TestSnapshotCountdownStates(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(100 * time.Second)
	current := start

	engine := newFlashEngine(t, func() time.Time { return current })
	engine.SetConfiguration(&domain.FlashDiscount{Name: "Summer Flash", Percentage: 20, StartsAt: start, EndsAt: end})

	// One second before expiry the countdown shows a single second left.
	current = start.Add(99 * time.Second)
	timer := engine.Snapshot()
	if !timer.Active {
		t.Fatal("expected active state at T+99s")
	}
	if timer.TotalSeconds != 1 {
		t.Errorf("expected totalSeconds=1, got %d", timer.TotalSeconds)
	}
	if timer.Seconds != 1 || timer.Minutes != 0 || timer.Hours != 0 || timer.Days != 0 {
		t.Errorf("unexpected decomposition: %+v", timer)
	}

	// At expiry the state flips to inactive.
	current = start.Add(100 * time.Second)
	timer = engine.Snapshot()
	if timer.Active {
		t.Fatal("expected inactive state at T+100s")
	}
	if timer.TotalSeconds != 0 {
		t.Errorf("expected totalSeconds=0, got %d", timer.TotalSeconds)
	}

	// Before the window opens the discount is not active either.
	current = start.Add(-time.Second)
	if engine.Snapshot().Active {
		t.Fatal("expected inactive state before start")
	}
}

func TestSnapshotDecomposesLongCountdown(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second)
	current := start

	engine := newFlashEngine(t, func() time.Time { return current })
	engine.SetConfiguration(&domain.FlashDiscount{Percentage: 15, StartsAt: start, EndsAt: end})

	timer := engine.Snapshot()
	if timer.Days != 2 || timer.Hours != 3 || timer.Minutes != 4 || timer.Seconds != 5 {
		t.Fatalf("unexpected decomposition: %+v", timer)
	}
}

func TestUrgencyThreshold(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	// Short campaign: the 60 second floor applies.
	current := start
	engine := newFlashEngine(t, func() time.Time { return current })
	engine.SetConfiguration(&domain.FlashDiscount{Percentage: 20, StartsAt: start, EndsAt: start.Add(100 * time.Second)})

	current = start.Add(39 * time.Second) // 61s remaining
	if engine.Snapshot().Urgent {
		t.Error("61s remaining must not be urgent")
	}
	current = start.Add(40 * time.Second) // 60s remaining
	if !engine.Snapshot().Urgent {
		t.Error("60s remaining must be urgent")
	}

	// Long campaign: 3% of the duration exceeds the floor.
	engine.SetConfiguration(&domain.FlashDiscount{Percentage: 20, StartsAt: start, EndsAt: start.Add(100000 * time.Second)})
	current = start.Add(96999 * time.Second) // 3001s remaining
	if engine.Snapshot().Urgent {
		t.Error("3001s remaining must not be urgent for a 100000s campaign")
	}
	current = start.Add(97000 * time.Second) // 3000s remaining
	if !engine.Snapshot().Urgent {
		t.Error("3000s remaining must be urgent for a 100000s campaign")
	}
}

func TestTickNotifiesSubscribersInRegistrationOrder(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	current := start.Add(10 * time.Second)

	engine := newFlashEngine(t, func() time.Time { return current })
	engine.SetConfiguration(&domain.FlashDiscount{Percentage: 20, StartsAt: start, EndsAt: start.Add(100 * time.Second)})

	var order []string
	engine.Subscribe(func(domain.DiscountTimer) { order = append(order, "first") })
	engine.Subscribe(func(domain.DiscountTimer) { order = append(order, "second") })

	engine.tickOnce()

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected ordered notification, got %v", order)
	}
}

func TestExpiryDeliversOneFinalInactiveTick(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	current := start.Add(99 * time.Second)

	engine := newFlashEngine(t, func() time.Time { return current })
	engine.SetConfiguration(&domain.FlashDiscount{Percentage: 20, StartsAt: start, EndsAt: start.Add(100 * time.Second)})

	var ticks []domain.DiscountTimer
	engine.Subscribe(func(timer domain.DiscountTimer) { ticks = append(ticks, timer) })

	engine.tickOnce()
	current = start.Add(100 * time.Second)
	engine.tickOnce()
	engine.tickOnce()
	engine.tickOnce()

	if len(ticks) != 2 {
		t.Fatalf("expected active tick plus one final inactive tick, got %d", len(ticks))
	}
	if !ticks[0].Active {
		t.Error("first tick should be active")
	}
	if ticks[1].Active {
		t.Error("final tick should be inactive")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	current := start.Add(time.Second)

	engine := newFlashEngine(t, func() time.Time { return current })
	engine.SetConfiguration(&domain.FlashDiscount{Percentage: 20, StartsAt: start, EndsAt: start.Add(time.Hour)})

	calls := 0
	unsubscribe := engine.Subscribe(func(domain.DiscountTimer) { calls++ })

	engine.tickOnce()
	unsubscribe()
	unsubscribe()
	engine.tickOnce()

	if calls != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", calls)
	}

	// Unsubscribing after Close is a no-op, not an error.
	engine.Close()
	unsubscribe()
}

func TestSubscribeAfterCloseIsNoop(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	current := start.Add(time.Second)

	engine := newFlashEngine(t, func() time.Time { return current })
	engine.SetConfiguration(&domain.FlashDiscount{Percentage: 20, StartsAt: start, EndsAt: start.Add(time.Hour)})
	engine.Close()

	called := false
	unsubscribe := engine.Subscribe(func(domain.DiscountTimer) { called = true })
	engine.tickOnce()
	unsubscribe()

	if called {
		t.Fatal("subscriber registered after Close must never be notified")
	}
}

func TestDisplayPriceOverlay(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	current := start.Add(time.Second)

	engine := newFlashEngine(t, func() time.Time { return current })
	engine.SetConfiguration(&domain.FlashDiscount{Percentage: 20, StartsAt: start, EndsAt: start.Add(time.Hour)})

	price := engine.DisplayPrice(200)
	if price.DisplayPrice != 250 {
		t.Errorf("expected inflated display price 250, got %v", price.DisplayPrice)
	}
	if price.FinalPrice != 200 {
		t.Errorf("display overlay must never change the charged amount, got %v", price.FinalPrice)
	}
	if price.DiscountAmount != 50 {
		t.Errorf("unexpected discount amount: %v", price.DiscountAmount)
	}
	if price.DiscountPercentage != 20 {
		t.Errorf("unexpected percentage: %v", price.DiscountPercentage)
	}

	// Inactive discount: the overlay is transparent.
	current = start.Add(2 * time.Hour)
	price = engine.DisplayPrice(200)
	if price.DisplayPrice != 200 || price.FinalPrice != 200 || price.DiscountAmount != 0 {
		t.Errorf("expected transparent overlay when inactive, got %+v", price)
	}
}

func TestRefreshReplacesConfiguration(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	current := start.Add(time.Second)

	repo := &fakeFlashRepo{cfg: domain.FlashDiscount{
		ID:         "flash-1",
		Name:       "Summer Flash",
		Percentage: 20,
		StartsAt:   start,
		EndsAt:     start.Add(time.Hour),
	}}
	engine, err := NewFlashDiscountEngine(FlashDiscountEngineDeps{
		FlashDiscounts: repo,
		Now:            func() time.Time { return current },
	})
	if err != nil {
		t.Fatalf("NewFlashDiscountEngine: %v", err)
	}

	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !engine.Snapshot().Active {
		t.Fatal("expected refreshed configuration to be active")
	}

	// Missing current configuration clears the engine without error.
	repo.err = &fakeRepoError{notFound: true}
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh with no current configuration: %v", err)
	}
	if engine.Snapshot().Active {
		t.Fatal("expected cleared configuration")
	}

	// Store failure keeps whatever was configured.
	repo.err = nil
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	repo.err = errors.New("store unreachable")
	if err := engine.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if !engine.Snapshot().Active {
		t.Fatal("store failure must keep the previous configuration")
	}
}
