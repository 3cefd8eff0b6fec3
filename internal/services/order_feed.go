// internal/services/order_feed.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
	feedBuffer     = 32
)

// OrderFeed pushes order events to connected dashboard websockets. Slow
// clients are dropped instead of blocking publishers.
type OrderFeed struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewOrderFeed(checkOrigin func(r *http.Request) bool) *OrderFeed {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &OrderFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*feedClient]struct{}),
	}
}

// Publish implements EventPublisher. Only order events reach the feed.
func (f *OrderFeed) Publish(_ context.Context, event Event) error {
	if event.Type != EventOrderCreated && event.Type != EventOrderStatusChanged {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode feed event: %w", err)
	}

	f.mu.RLock()
	var slow []*feedClient
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	f.mu.RUnlock()

	for _, c := range slow {
		logrus.WithField("remote", c.conn.RemoteAddr().String()).Warn("Dropping slow order feed client")
		f.remove(c)
	}
	return nil
}

// Serve upgrades the request and blocks until the client goes away.
func (f *OrderFeed) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	c := &feedClient{conn: conn, send: make(chan []byte, feedBuffer)}
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	go f.writeLoop(c)
	f.readLoop(c)
	return nil
}

func (f *OrderFeed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects every client.
func (f *OrderFeed) Close() {
	f.mu.Lock()
	clients := f.clients
	f.clients = make(map[*feedClient]struct{})
	f.mu.Unlock()

	for c := range clients {
		close(c.send)
	}
}

func (f *OrderFeed) remove(c *feedClient) {
	f.mu.Lock()
	_, ok := f.clients[c]
	if ok {
		delete(f.clients, c)
	}
	f.mu.Unlock()

	if ok {
		close(c.send)
	}
}

// readLoop only drains control frames; the feed is one way.
func (f *OrderFeed) readLoop(c *feedClient) {
	defer f.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *OrderFeed) writeLoop(c *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
