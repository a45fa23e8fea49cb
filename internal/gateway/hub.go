/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gateway

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Nullxdev/vampir/internal/village"
)

// Hub owns one room. Every read or write of the room happens inside a task
// on the hub's goroutine, so events for the same room never interleave.
type Hub struct {
	id      string
	room    *village.Room
	clients map[*Client]bool

	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once

	// resolving is set once this night's resolution has been scheduled.
	resolving  bool
	nightTimer *time.Timer

	g      *Gateway
	logger *zap.Logger
}

func newHub(g *Gateway, room *village.Room) *Hub {
	return &Hub{
		id:      room.ID,
		room:    room,
		clients: make(map[*Client]bool),
		tasks:   make(chan func()),
		done:    make(chan struct{}),
		g:       g,
		logger:  g.logger.With(zap.String("room", room.ID)),
	}
}

func (h *Hub) run() {
	for {
		select {
		case task := <-h.tasks:
			task()
		case <-h.done:
			return
		}
	}
}

// exec runs task on the hub goroutine and waits for it to finish. It
// returns false if the hub has already shut down.
func (h *Hub) exec(task func()) bool {
	finished := make(chan struct{})

	select {
	case h.tasks <- func() {
		defer close(finished)
		task()
	}:
	case <-h.done:
		return false
	}

	<-finished

	return true
}

// after schedules task on the hub goroutine once d has elapsed.
func (h *Hub) after(d time.Duration, task func()) *time.Timer {
	return time.AfterFunc(d, func() {
		h.exec(task)
	})
}

func (h *Hub) broadcast(event string, data any) {
	for c := range h.clients {
		c.emit(event, data)
	}
}

func (h *Hub) broadcastState(event string) {
	h.broadcast(event, h.room.Snapshot())
}

// destroy unregisters the room. Further tasks are refused.
func (h *Hub) destroy(reason string) {
	h.stopOnce.Do(func() {
		if h.nightTimer != nil {
			h.nightTimer.Stop()
		}

		h.g.registry.Remove(h.id)
		h.g.dropHub(h)

		for c := range h.clients {
			c.clearRoom(h.id)
		}
		clear(h.clients)

		close(h.done)

		h.logger.Info("room removed", zap.String("reason", reason), zap.Int("rooms", h.g.registry.Len()))
	})
}

func (h *Hub) addCreator(c *Client) {
	h.clients[c] = true
	c.setRoom(h.id)

	c.emit(EventRoomCreated, h.room.Snapshot())
}

func (h *Hub) join(c *Client, name string) {
	if err := h.room.Join(village.Player{ID: c.id, Name: name}); err != nil {
		h.logger.Debug("join rejected", zap.String("client", c.id), zap.Error(err))
		c.emit(EventJoinError, joinErrorText(err))
		return
	}

	h.clients[c] = true
	c.setRoom(h.id)

	state := h.room.Snapshot()
	c.emit(EventRoomJoined, state)
	h.broadcast(EventPlayerJoined, RoomMessage{
		Room:    state,
		Message: village.JoinMessage(name),
	})

	h.logger.Debug("player joined",
		zap.String("client", c.id),
		zap.String("name", name),
		zap.Int("players", len(h.room.Players)),
	)
}

func (h *Hub) leave(c *Client) {
	delete(h.clients, c)
	c.clearRoom(h.id)

	p, ok := h.room.Leave(c.id)
	if !ok {
		return
	}

	h.logger.Debug("player left", zap.String("client", c.id), zap.String("name", p.Name))

	if h.room.Empty() {
		h.destroy("empty")
		return
	}

	h.broadcast(EventPlayerLeft, RoomMessage{
		Room:    h.room.Snapshot(),
		Message: village.LeaveMessage(p.Name),
	})

	if !h.room.InProgress() {
		return
	}

	if h.checkWin() {
		return
	}

	// The leaver may have held the last unfilled slot or ballot.
	switch h.room.Status {
	case village.Night:
		h.scheduleResolve()
	case village.Day:
		if _, tallied := h.room.TallyIfComplete(); tallied {
			h.afterTally()
		}
	}
}

func (h *Hub) start(c *Client) {
	if err := h.room.Start(h.g.opts.Shuffle); err != nil {
		h.logger.Debug("start rejected", zap.String("client", c.id), zap.Error(err))
		c.emit(EventGameError, gameErrorText(err))
		return
	}

	h.logger.Info("game started", zap.Int("players", len(h.room.Players)))

	state := h.room.Snapshot()
	h.broadcast(EventGameStarted, state)
	h.broadcast(EventUpdateGame, state)

	h.beginNight()
}

// beginNight arms the stalled-night fallback for the current night.
func (h *Hub) beginNight() {
	h.resolving = false

	if h.nightTimer != nil {
		h.nightTimer.Stop()
		h.nightTimer = nil
	}

	timeout := h.g.opts.NightTimeout
	if timeout <= 0 {
		return
	}

	night := h.room.DayCount
	h.nightTimer = h.after(timeout, func() {
		if h.room.Status != village.Night || h.room.DayCount != night || h.resolving {
			return
		}

		h.logger.Info("night timed out", zap.Int("night", night))
		h.resolveNight(night)
	})
}

func (h *Hub) nightAction(req nightActionRequest) {
	actor, ok := h.room.NightAction(req.PlayerID, req.TargetPlayerID, village.Action(req.ActionType))
	if !ok {
		h.logger.Debug("night action ignored",
			zap.String("player", req.PlayerID),
			zap.String("action", req.ActionType),
			zap.Stringer("status", h.room.Status),
		)
		return
	}

	h.broadcast(EventActionReceived, ActionMessage{
		Action: req.ActionType,
		Player: actor.Name,
	})

	h.scheduleResolve()
}

// scheduleResolve arms this night's resolution once every slot is filled.
func (h *Hub) scheduleResolve() {
	if !h.room.NightReady() || h.resolving {
		return
	}

	h.resolving = true

	night := h.room.DayCount
	h.after(h.g.opts.ResolveDelay, func() {
		h.resolveNight(night)
	})
}

func (h *Hub) resolveNight(night int) {
	if h.room.Status != village.Night || h.room.DayCount != night {
		return
	}

	if h.nightTimer != nil {
		h.nightTimer.Stop()
		h.nightTimer = nil
	}

	outcome := h.room.ResolveNight()

	fields := []zap.Field{zap.Int("night", night), zap.Bool("saved", outcome.Saved)}
	if outcome.Victim != nil {
		fields = append(fields, zap.String("target", outcome.Victim.ID))
	}
	h.logger.Debug("night resolved", fields...)

	h.broadcastState(EventUpdateGame)
	h.checkWin()
}

func (h *Hub) vote(req voteRequest) {
	day := h.room.DayCount

	outcome, tallied := h.room.Vote(req.VoterID, req.TargetID)
	if !tallied {
		return
	}

	fields := []zap.Field{zap.Int("day", day)}
	if outcome.Executed != nil {
		fields = append(fields, zap.String("executed", outcome.Executed.ID))
	}
	h.logger.Debug("votes tallied", fields...)

	h.afterTally()
}

func (h *Hub) afterTally() {
	h.broadcastState(EventUpdateGame)

	if h.checkWin() {
		return
	}

	h.beginNight()
}

// checkWin ends and removes the room when a faction has won.
func (h *Hub) checkWin() bool {
	winner, ended := village.EvaluateWin(h.room)
	if !ended {
		return false
	}

	h.logger.Info("game over", zap.Stringer("winner", winner), zap.Int("day", h.room.DayCount))

	h.broadcastState(EventGameOver)
	h.destroy("game over")

	return true
}

// reapIfIdle closes the room when nothing has happened since cutoff.
func (h *Hub) reapIfIdle(cutoff time.Time) {
	if !h.room.LastActive.Before(cutoff) {
		return
	}

	h.broadcast(EventRoomClosed, msgRoomClosed)
	h.destroy("idle")
}
