package http

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const pingInterval = 30 * time.Second

// WebSocketHandler returns a handler that runs a page session per
// connection. The client sends actions as JSON, e.g. {"type":"click","lat":48.85,"lon":2.35};
// the server relays every session event from the bus back to it.
// Connect with ?session=<id> to resume a dropped session.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := deps.logger().With("remote", c.RemoteAddr().String())
		if rid, ok := c.Locals(localRequestID).(string); ok {
			log = log.With("request_id", rid)
		}

		var mu sync.Mutex
		write := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return write(data)
		}

		sess := NewSession(deps.baseContext(), deps, c.Query("session"))
		defer sess.Close()
		log = log.With("session", sess.ID())
		log.Info("ws session opened", "resumed", sess.Resumed())

		unsubscribe, err := deps.Bus.Subscribe(SessionWildcard(sess.ID()), func(_ string, data []byte) {
			_ = write(data)
		})
		if err != nil {
			log.Error("ws subscribe failed", "error", err)
			return
		}
		defer unsubscribe()

		sess.Start()

		done := make(chan struct{})
		defer close(done)
		go keepAlive(done, func() error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.PingMessage, nil)
		})

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn("ws read failed", "error", err)
				}
				break
			}
			if err := sess.Handle(msg); err != nil {
				log.Debug("ws action rejected", "error", err)
				_ = writeJSON(serverEvent{Type: "error", Error: err.Error()})
			}
		}

		log.Info("ws session closed")
	}
}

// keepAlive pings every pingInterval until done is closed or a ping fails.
func keepAlive(done <-chan struct{}, ping func() error) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if ping() != nil {
				return
			}
		case <-done:
			return
		}
	}
}
