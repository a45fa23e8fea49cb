/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gateway

import (
	"encoding/json"
	"errors"

	"github.com/Nullxdev/vampir/internal/village"
)

// Inbound events.
const (
	EventCreateRoom  = "createRoom"
	EventJoinRoom    = "joinRoom"
	EventStartGame   = "startGame"
	EventNightAction = "nightAction"
	EventVote        = "vote"
)

// Outbound events.
const (
	EventConnected      = "connected"
	EventRoomCreated    = "roomCreated"
	EventRoomJoined     = "roomJoined"
	EventJoinError      = "joinError"
	EventPlayerJoined   = "playerJoined"
	EventPlayerLeft     = "playerLeft"
	EventGameStarted    = "gameStarted"
	EventGameError      = "gameError"
	EventUpdateGame     = "updateGame"
	EventActionReceived = "actionReceived"
	EventGameOver       = "gameOver"
	EventRoomClosed     = "roomClosed"
)

// Inbound frames are {"event": ..., "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message is an outbound frame.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type createRoomRequest struct {
	RoomName   string `json:"roomName"`
	PlayerName string `json:"playerName"`
}

type joinRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type nightActionRequest struct {
	RoomID         string `json:"roomId"`
	PlayerID       string `json:"playerId"`
	TargetPlayerID string `json:"targetPlayerId"`
	ActionType     string `json:"actionType"`
}

type voteRequest struct {
	RoomID   string `json:"roomId"`
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

// ConnectedMessage tells a new connection its player ID.
type ConnectedMessage struct {
	ID string `json:"id"`
}

// RoomMessage accompanies membership changes.
type RoomMessage struct {
	Room    village.RoomState `json:"room"`
	Message string            `json:"message"`
}

// ActionMessage announces that a night action was recorded, not its target.
type ActionMessage struct {
	Action string `json:"action"`
	Player string `json:"player"`
}

const (
	msgRoomNotFound  = "Room not found or full."
	msgAlreadyInRoom = "You are already in this room."
	msgGameStarted   = "The game has already started."
	msgNeedPlayers   = "At least 2 players are needed to start the game."
	msgRoomClosed    = "The room was closed after a period of inactivity."
)

func joinErrorText(err error) string {
	switch {
	case errors.Is(err, village.ErrAlreadyJoined):
		return msgAlreadyInRoom
	case errors.Is(err, village.ErrGameInProgress):
		return msgGameStarted
	default:
		return msgRoomNotFound
	}
}

func gameErrorText(err error) string {
	switch {
	case errors.Is(err, village.ErrAlreadyStarted):
		return msgGameStarted
	default:
		return msgNeedPlayers
	}
}
