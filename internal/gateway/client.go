/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Client is one websocket connection. Its ID doubles as the player ID.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan Message

	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	room string

	logger *zap.Logger
}

func newClient(id string, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		done:   make(chan struct{}),
		logger: logger.With(zap.String("client", id)),
	}
}

func (c *Client) roomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.room
}

func (c *Client) setRoom(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.room = id
}

// clearRoom forgets the room only if the client is still in it.
func (c *Client) clearRoom(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.room == id {
		c.room = ""
	}
}

// emit queues a message without blocking. A client that cannot keep up is
// disconnected.
func (c *Client) emit(event string, data any) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- Message{Event: event, Data: data}:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, dropping client", zap.String("event", event))
		c.close()
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump(g *Gateway) {
	defer func() {
		g.disconnect(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("connection lost", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Debug("dropping malformed frame", zap.Error(err))
			continue
		}

		g.dispatch(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}
