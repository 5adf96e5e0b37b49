package broadcast

import (
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.FastHTTPUpgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*fasthttp.RequestCtx) bool { return true },
}

// conn adapts a websocket connection to Subscriber. Writes are serialised
// because broadcasts and pong replies come from different goroutines.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) Send(evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(evt)
}

// Handler upgrades GET /ws and keeps the connection registered until the
// client goes away. A text message "ping" is answered with a pong event.
func (h *Hub) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !websocket.FastHTTPIsWebSocketUpgrade(c.RequestCtx()) {
			return fiber.ErrUpgradeRequired
		}

		return upgrader.Upgrade(c.RequestCtx(), func(ws *websocket.Conn) {
			defer ws.Close()

			sub := &conn{ws: ws}
			id := h.Register(sub)
			defer h.Unregister(id)

			for {
				msgType, msg, err := ws.ReadMessage()
				if err != nil {
					return
				}
				if msgType != websocket.TextMessage || strings.TrimSpace(string(msg)) != "ping" {
					continue
				}
				if err := sub.Send(Event{Type: TypePong, Timestamp: h.now()}); err != nil {
					h.log.Debug("pong failed", "subscriber", id, "error", err)
					return
				}
			}
		})
	}
}
