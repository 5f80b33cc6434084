package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/repositories"
)

const (
	defaultFlashTickInterval    = time.Second
	defaultFlashRefreshInterval = 5 * time.Minute
	// minUrgencyWindow is the floor of the urgency threshold; short
	// campaigns still blink for at least the final minute.
	minUrgencyWindow = 60 * time.Second
	urgencyFraction  = 0.03
)

// FlashDiscountEngineDeps bundles dependencies required to construct the
// flash discount engine.
type FlashDiscountEngineDeps struct {
	FlashDiscounts  repositories.FlashDiscountRepository
	TickInterval    time.Duration
	RefreshInterval time.Duration
	Now             func() time.Time
	Logger          *zap.Logger
}

type timerSubscriber struct {
	id      int
	handler TimerHandler
}

// FlashDiscountEngine drives the time-boxed marketing discount: one shared
// ticker recomputes the countdown every second and notifies subscribers
// synchronously in registration order. The discount is display-only and
// never changes the amount charged.
type FlashDiscountEngine struct {
	repo         repositories.FlashDiscountRepository
	tickInterval time.Duration
	refreshEvery time.Duration
	now          func() time.Time
	logger       *zap.Logger

	mu          sync.Mutex
	config      *domain.FlashDiscount
	subscribers []timerSubscriber
	nextID      int
	prevActive  bool
	closed      bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewFlashDiscountEngine wires a FlashDiscountEngine backed by the flash
// discount configuration store.
func NewFlashDiscountEngine(deps FlashDiscountEngineDeps) (*FlashDiscountEngine, error) {
	if deps.FlashDiscounts == nil {
		return nil, ErrFlashRepositoryMissing
	}
	tick := deps.TickInterval
	if tick <= 0 {
		tick = defaultFlashTickInterval
	}
	refresh := deps.RefreshInterval
	if refresh <= 0 {
		refresh = defaultFlashRefreshInterval
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlashDiscountEngine{
		repo:         deps.FlashDiscounts,
		tickInterval: tick,
		refreshEvery: refresh,
		now:          func() time.Time { return now().UTC() },
		logger:       logger,
		stop:         make(chan struct{}),
	}, nil
}

// Subscribe registers a handler for countdown ticks. The returned
// unsubscribe is idempotent and remains a no-op after Close.
func (e *FlashDiscountEngine) Subscribe(handler TimerHandler) func() {
	if handler == nil {
		return func() {}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return func() {}
	}

	e.nextID++
	id := e.nextID
	e.subscribers = append(e.subscribers, timerSubscriber{id: id, handler: handler})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i := range e.subscribers {
			if e.subscribers[i].id == id {
				e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
				return
			}
		}
	}
}

// SetConfiguration replaces the current flash discount. A nil configuration
// clears it. Replacement re-arms the final-notification edge.
func (e *FlashDiscountEngine) SetConfiguration(cfg *domain.FlashDiscount) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = cfg
	e.prevActive = false
}

// Refresh replaces the configuration from the store. A missing current
// configuration clears the engine; store failures keep the previous one.
func (e *FlashDiscountEngine) Refresh(ctx context.Context) error {
	current, err := e.repo.Current(ctx)
	if err != nil {
		if repoErr, ok := err.(repositories.RepositoryError); ok && repoErr.IsNotFound() {
			e.SetConfiguration(nil)
			return nil
		}
		e.logger.Warn("flash discount refresh failed, keeping previous configuration", zap.Error(err))
		return err
	}
	e.SetConfiguration(&current)
	return nil
}

// Snapshot recomputes the countdown view for the current instant.
func (e *FlashDiscountEngine) Snapshot() domain.DiscountTimer {
	e.mu.Lock()
	cfg := e.config
	e.mu.Unlock()
	return computeTimer(cfg, e.now())
}

// DisplayPrice inflates a real price for presentation while the discount is
// active. FinalPrice always equals realPrice; this overlay must never alter
// what is charged.
func (e *FlashDiscountEngine) DisplayPrice(realPrice float64) domain.FlashPrice {
	timer := e.Snapshot()
	if !timer.Active || timer.Percentage <= 0 || timer.Percentage >= 100 || realPrice <= 0 {
		return domain.FlashPrice{DisplayPrice: realPrice, FinalPrice: realPrice}
	}

	display := domain.Round2(realPrice / (1 - timer.Percentage/100))
	return domain.FlashPrice{
		DisplayPrice:       display,
		FinalPrice:         realPrice,
		DiscountAmount:     domain.Round2(display - realPrice),
		DiscountPercentage: timer.Percentage,
	}
}

// Start launches the shared ticker and the background configuration
// refresh. It returns immediately.
func (e *FlashDiscountEngine) Start(ctx context.Context) {
	go e.run(ctx)
}

// Close stops the ticker and releases all subscribers. Safe to call more
// than once.
func (e *FlashDiscountEngine) Close() {
	e.stopOnce.Do(func() { close(e.stop) })

	e.mu.Lock()
	e.closed = true
	e.subscribers = nil
	e.mu.Unlock()
}

func (e *FlashDiscountEngine) run(ctx context.Context) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	refresh := time.NewTicker(e.refreshEvery)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-refresh.C:
			if err := e.Refresh(ctx); err != nil {
				continue
			}
		case <-ticker.C:
			e.tickOnce()
		}
	}
}

// tickOnce recomputes the countdown and notifies subscribers. While the
// discount is inactive only the single edge tick after expiry is delivered.
func (e *FlashDiscountEngine) tickOnce() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	timer := computeTimer(e.config, e.now())
	notify := timer.Active || e.prevActive
	e.prevActive = timer.Active
	handlers := make([]TimerHandler, 0, len(e.subscribers))
	for _, sub := range e.subscribers {
		handlers = append(handlers, sub.handler)
	}
	e.mu.Unlock()

	if !notify {
		return
	}
	for _, handler := range handlers {
		handler(timer)
	}
}

func computeTimer(cfg *domain.FlashDiscount, now time.Time) domain.DiscountTimer {
	if cfg == nil {
		return domain.DiscountTimer{}
	}

	remaining := cfg.EndsAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	active := !now.Before(cfg.StartsAt) && remaining > 0
	if !active {
		return domain.DiscountTimer{
			Name:       cfg.Name,
			Percentage: cfg.Percentage,
			EndsAt:     cfg.EndsAt,
		}
	}

	totalSeconds := int64(remaining / time.Second)
	if remaining%time.Second > 0 {
		totalSeconds++
	}

	urgencyWindow := time.Duration(float64(cfg.Duration()) * urgencyFraction)
	if urgencyWindow < minUrgencyWindow {
		urgencyWindow = minUrgencyWindow
	}

	return domain.DiscountTimer{
		Active:       true,
		Urgent:       remaining <= urgencyWindow,
		Name:         cfg.Name,
		Percentage:   cfg.Percentage,
		Days:         int(totalSeconds / 86400),
		Hours:        int(totalSeconds % 86400 / 3600),
		Minutes:      int(totalSeconds % 3600 / 60),
		Seconds:      int(totalSeconds % 60),
		TotalSeconds: totalSeconds,
		EndsAt:       cfg.EndsAt,
	}
}
