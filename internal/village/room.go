/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package village

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxPlayers is the room capacity.
	MaxPlayers = 15

	// MinPlayers is the smallest table that can start a game.
	MinPlayers = 2
)

var (
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyJoined    = errors.New("player already in room")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrAlreadyStarted   = errors.New("game already started")
)

// Status is the phase of a room's game.
type Status int

const (
	Waiting Status = iota
	Night
	Day
	Ended
)

func (s Status) String() string {
	switch s {
	case Waiting:
		return "Waiting"
	case Night:
		return "Night"
	case Day:
		return "Day"
	case Ended:
		return "Ended"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Waiting":
		*s = Waiting
	case "Night":
		*s = Night
	case "Day":
		*s = Day
	case "Ended":
		*s = Ended
	default:
		return fmt.Errorf("unknown status %q", text)
	}

	return nil
}

// Player is a member of exactly one room.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role,omitempty"`
	Alive bool   `json:"isAlive"`
}

// Room holds the whole state of one game. It is not safe for concurrent
// use; callers serialize access (see the gateway's hub).
type Room struct {
	ID       string
	Name     string
	Host     string
	Players  []*Player
	Status   Status
	DayCount int

	// Pending night actions, cleared at every resolution.
	Kill string
	Save string

	// Voter ID to target ID, cleared at every tally.
	Votes map[string]string

	LastMessage string

	LastActive time.Time
}

// NewRoom creates a waiting room whose only member is first.
func NewRoom(id, name, host string, first Player) *Room {
	now := time.Now()

	first.Role = RoleNone
	first.Alive = true

	return &Room{
		ID:          id,
		Name:        name,
		Host:        host,
		Players:     []*Player{&first},
		Status:      Waiting,
		Votes:       make(map[string]string),
		LastMessage: fmt.Sprintf(msgCreated, name),
		LastActive:  now,
	}
}

// Player returns the member with the given ID, or nil.
func (r *Room) Player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}

	return nil
}

// Alive returns living members in join order.
func (r *Room) Alive() []*Player {
	alive := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}

	return alive
}

// Empty reports whether every member has left.
func (r *Room) Empty() bool {
	return len(r.Players) == 0
}

// InProgress reports whether roles have been dealt and nobody has won yet.
func (r *Room) InProgress() bool {
	return r.Status == Night || r.Status == Day
}

func (r *Room) touch() {
	r.LastActive = time.Now()
}

// Join appends a player to the room.
func (r *Room) Join(p Player) error {
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}

	if r.Player(p.ID) != nil {
		return ErrAlreadyJoined
	}

	if r.Status != Waiting {
		return ErrGameInProgress
	}

	p.Role = RoleNone
	p.Alive = true
	r.Players = append(r.Players, &p)
	r.touch()

	return nil
}

// Leave removes a player and anything they had pending. It returns the
// removed player.
func (r *Room) Leave(id string) (Player, bool) {
	for i, p := range r.Players {
		if p.ID != id {
			continue
		}

		r.Players = append(r.Players[:i], r.Players[i+1:]...)
		delete(r.Votes, id)
		r.touch()

		return *p, true
	}

	return Player{}, false
}

// RoomState is a detached copy of a room, safe to hand to other goroutines.
type RoomState struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Host        string            `json:"host"`
	Players     []Player          `json:"players"`
	Status      Status            `json:"gameStatus"`
	DayCount    int               `json:"dayCount"`
	Kill        *string           `json:"killedPlayer"`
	Save        *string           `json:"savedPlayer"`
	Votes       map[string]string `json:"votes"`
	LastMessage string            `json:"lastMessage"`
}

// Snapshot copies the room for broadcast.
func (r *Room) Snapshot() RoomState {
	players := make([]Player, len(r.Players))
	for i, p := range r.Players {
		players[i] = *p
	}

	votes := make(map[string]string, len(r.Votes))
	for voter, target := range r.Votes {
		votes[voter] = target
	}

	state := RoomState{
		ID:          r.ID,
		Name:        r.Name,
		Host:        r.Host,
		Players:     players,
		Status:      r.Status,
		DayCount:    r.DayCount,
		Votes:       votes,
		LastMessage: r.LastMessage,
	}

	if r.Kill != "" {
		kill := r.Kill
		state.Kill = &kill
	}
	if r.Save != "" {
		save := r.Save
		state.Save = &save
	}

	return state
}
