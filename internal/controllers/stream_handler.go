package controllers

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/ridglejessica55-prog/seren/internal/events"
	"github.com/ridglejessica55-prog/seren/internal/hub"
)

// StreamHandler serves GET /ws: each connection becomes one hub
// subscriber and receives every forum event as a JSON envelope. There is
// no backlog replay; clients snapshot over HTTP first.
type StreamHandler struct {
	Hub *hub.Hub
	Log *slog.Logger
}

func (h *StreamHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// Upgrade rejects plain HTTP requests before the websocket handshake.
func (h *StreamHandler) Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Stream pumps hub events to the socket until either side disconnects.
func (h *StreamHandler) Stream() fiber.Handler {
	log := h.logger().WithGroup("stream")

	return websocket.New(func(conn *websocket.Conn) {
		sub := h.Hub.Subscribe()
		defer h.Hub.Unsubscribe(sub)

		// Drain reads so we notice the peer closing; the protocol is
		// server-to-client only.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case e, ok := <-sub.C:
				if !ok {
					return
				}
				payload, err := events.Encode(e)
				if err != nil {
					log.Error("encode event", "event", e.Name(), "error", err)
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					log.Debug("subscriber write failed", "error", err)
					return
				}
			}
		}
	})
}
