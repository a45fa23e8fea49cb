/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package gateway carries Vampire Village over websockets.
//
// Every connection is a player, identified by a UUID assigned on connect.
// Each room is owned by a Hub goroutine; the gateway routes decoded events
// to the owning hub and waits for them to be handled, so events from one
// connection are applied in order and events for one room never interleave.
package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Nullxdev/vampir/internal/village"
)

// DefaultResolveDelay lets the last action broadcast settle before the
// night's outcome is revealed.
const DefaultResolveDelay = 2 * time.Second

type Options struct {
	Logger *zap.Logger

	// ResolveDelay separates the last night action from its outcome. Zero
	// uses DefaultResolveDelay; negative reveals immediately.
	ResolveDelay time.Duration

	// NightTimeout resolves a night that never received both actions.
	// Zero disables it.
	NightTimeout time.Duration

	// SessionTimeout closes rooms with no activity. Zero disables it.
	SessionTimeout time.Duration

	// AllowedOrigins limits websocket origins. Empty allows all; a trailing
	// "*" matches by prefix.
	AllowedOrigins []string

	// Shuffle deals roles; nil uses village.DefaultShuffle.
	Shuffle village.ShuffleFunc
}

// Gateway is an http.Handler that upgrades requests to player connections.
type Gateway struct {
	registry *village.Registry
	opts     Options
	logger   *zap.Logger

	mu   sync.Mutex
	hubs map[string]*Hub

	upgrader websocket.Upgrader
	reaper   *cron.Cron
}

func New(registry *village.Registry, opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case opts.ResolveDelay == 0:
		opts.ResolveDelay = DefaultResolveDelay
	case opts.ResolveDelay < 0:
		opts.ResolveDelay = 0
	}

	g := &Gateway{
		registry: registry,
		opts:     opts,
		logger:   logger,
		hubs:     make(map[string]*Hub),
	}

	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(opts.AllowedOrigins, r.Header.Get("Origin"))
		},
	}

	return g
}

// Start schedules the idle-room reaper, if enabled.
func (g *Gateway) Start() {
	if g.opts.SessionTimeout <= 0 {
		return
	}

	g.reaper = cron.New()
	g.reaper.Schedule(cron.Every(g.opts.SessionTimeout/2), cron.FuncJob(g.reap))
	g.reaper.Start()

	g.logger.Debug("reaper scheduled", zap.Duration("session_timeout", g.opts.SessionTimeout))
}

// Stop halts the reaper and waits for a running pass to finish.
func (g *Gateway) Stop() {
	if g.reaper == nil {
		return
	}

	<-g.reaper.Stop().Done()
}

func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 || origin == "" {
		return true
	}

	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}

		if prefix, ok := strings.CutSuffix(a, "*"); ok && strings.HasPrefix(origin, prefix) {
			return true
		}
	}

	return false
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed",
			zap.String("origin", r.Header.Get("Origin")),
			zap.Error(err),
		)
		return
	}

	c := newClient(uuid.NewString(), conn, g.logger)
	c.logger.Debug("connected", zap.String("remote", r.RemoteAddr))

	c.emit(EventConnected, ConnectedMessage{ID: c.id})

	go c.writePump()
	c.readPump(g)

	c.logger.Debug("disconnected")
}

func (g *Gateway) hub(id string) *Hub {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.hubs[id]
}

func (g *Gateway) dropHub(h *Hub) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hubs[h.id] == h {
		delete(g.hubs, h.id)
	}
}

func decode(c *Client, env Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		c.logger.Debug("dropping malformed payload", zap.String("event", env.Event), zap.Error(err))
		return false
	}

	return true
}

func (g *Gateway) dispatch(c *Client, env Envelope) {
	switch env.Event {
	case EventCreateRoom:
		var req createRoomRequest
		if decode(c, env, &req) {
			g.createRoom(c, req)
		}

	case EventJoinRoom:
		var req joinRoomRequest
		if decode(c, env, &req) {
			g.joinRoom(c, req)
		}

	case EventStartGame:
		var roomID string
		if decode(c, env, &roomID) {
			g.startGame(c, roomID)
		}

	case EventNightAction:
		var req nightActionRequest
		if decode(c, env, &req) {
			g.inRoom(c, req.RoomID, func(h *Hub) { h.nightAction(req) })
		}

	case EventVote:
		var req voteRequest
		if decode(c, env, &req) {
			g.inRoom(c, req.RoomID, func(h *Hub) { h.vote(req) })
		}

	default:
		c.logger.Debug("dropping unknown event", zap.String("event", env.Event))
	}
}

func (g *Gateway) createRoom(c *Client, req createRoomRequest) {
	g.disconnect(c)

	room := g.registry.Create(req.RoomName, req.PlayerName, village.Player{ID: c.id, Name: req.PlayerName})
	h := newHub(g, room)

	g.mu.Lock()
	g.hubs[room.ID] = h
	g.mu.Unlock()

	go h.run()

	h.exec(func() { h.addCreator(c) })

	h.logger.Info("room created", zap.String("name", req.RoomName), zap.String("host", req.PlayerName))
}

func (g *Gateway) joinRoom(c *Client, req joinRoomRequest) {
	h := g.hub(req.RoomID)
	if h == nil {
		c.emit(EventJoinError, msgRoomNotFound)
		return
	}

	// A player sits in one room at a time.
	if current := c.roomID(); current != "" && current != req.RoomID {
		g.disconnect(c)
	}

	if !h.exec(func() { h.join(c, req.PlayerName) }) {
		c.emit(EventJoinError, msgRoomNotFound)
	}
}

func (g *Gateway) startGame(c *Client, roomID string) {
	h := g.hub(roomID)
	if h == nil || !h.exec(func() { h.start(c) }) {
		c.emit(EventGameError, msgNeedPlayers)
	}
}

// inRoom runs task on the room's hub; unknown rooms are ignored.
func (g *Gateway) inRoom(c *Client, roomID string, task func(h *Hub)) {
	h := g.hub(roomID)
	if h == nil || !h.exec(func() { task(h) }) {
		c.logger.Debug("dropping event for unknown room", zap.String("room", roomID))
	}
}

// disconnect removes the client from whichever room it occupies.
func (g *Gateway) disconnect(c *Client) {
	id := c.roomID()
	if id == "" {
		return
	}

	h := g.hub(id)
	if h == nil || !h.exec(func() { h.leave(c) }) {
		c.clearRoom(id)
	}
}

func (g *Gateway) reap() {
	cutoff := time.Now().Add(-g.opts.SessionTimeout)

	for _, id := range g.registry.IDs() {
		if h := g.hub(id); h != nil {
			h.exec(func() { h.reapIfIdle(cutoff) })
		}
	}
}
