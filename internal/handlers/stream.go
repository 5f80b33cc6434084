package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	domain "github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/domain"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/platform/requestctx"
	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
	// streamBufferSize bounds per-connection backlog. Ticks arrive once per
	// second; a slow client drops intermediate ticks instead of blocking the
	// shared ticker.
	streamBufferSize = 8
)

// FlashStreamHandler pushes countdown ticks to websocket clients.
type FlashStreamHandler struct {
	flash    services.FlashDiscountService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewFlashStreamHandler constructs a websocket handler over the flash
// discount service.
func NewFlashStreamHandler(flash services.FlashDiscountService, logger *zap.Logger) *FlashStreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlashStreamHandler{
		flash:  flash,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Stream upgrades the connection and relays countdown ticks until the client
// disconnects or the request context ends.
func (h *FlashStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.flash == nil {
		http.Error(w, "flash discount service unavailable", http.StatusServiceUnavailable)
		return
	}

	logger := h.logger
	if ctxLogger := requestctx.Logger(r.Context()); ctxLogger != requestctx.NoopLogger() {
		logger = ctxLogger
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticks := make(chan domain.DiscountTimer, streamBufferSize)
	unsubscribe := h.flash.Subscribe(func(timer domain.DiscountTimer) {
		select {
		case ticks <- timer:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeTimer(conn, h.flash.Snapshot()); err != nil {
		return
	}

	pings := time.NewTicker(streamPingInterval)
	defer pings.Stop()

	// The request context is not watched here: timeout middleware cancels it
	// long before the stream ends. Disconnects surface through the reader
	// goroutine and through write or ping errors.
	for {
		select {
		case <-done:
			return
		case timer := <-ticks:
			if err := h.writeTimer(conn, timer); err != nil {
				return
			}
		case <-pings.C:
			deadline := time.Now().Add(streamWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (h *FlashStreamHandler) writeTimer(conn *websocket.Conn, timer domain.DiscountTimer) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(buildTimerPayload(timer))
}
