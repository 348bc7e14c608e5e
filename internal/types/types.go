// Package types defines the JSON wire protocol between clients and the relay
// server. Every client action receives exactly one ack message; everything
// else is a room broadcast.
package types

import (
	"github.com/devpatel/shabd-ramat/internal/engine"
	"github.com/devpatel/shabd-ramat/internal/session"
)

// Client -> server actions.
const (
	MsgCreateGame = "create-game"
	MsgJoinGame   = "join-game"
	MsgStartGame  = "start-game"
	MsgSubmitWord = "submit-word"
)

// Server -> client: acks (to the requester only).
const (
	MsgCreateAck = "create-ack"
	MsgJoinAck   = "join-ack"
	MsgStartAck  = "start-ack"
	MsgSubmitAck = "submit-ack"
	MsgError     = "error"
)

// Server -> client: room broadcasts.
const (
	MsgGameCreated      = "game-created"
	MsgPlayerJoined     = "player-joined"
	MsgGameState        = "game-state"
	MsgGameStarted      = "game-started"
	MsgWordSubmitted    = "word-submitted"
	MsgGameStateUpdated = "game-state-updated"
	MsgPlayerLeft       = "player-left"
)

type ClientMessage struct {
	Type       string        `json:"type"`
	GameCode   string        `json:"gameCode,omitempty"`
	PlayerName string        `json:"playerName,omitempty"`
	Word       string        `json:"word,omitempty"`
	Team       engine.TeamID `json:"team,omitempty"`
	Setup      *engine.Setup `json:"setup,omitempty"`
}

// WordResult is the word-submitted broadcast payload: the frozen outcome of
// one submission plus the submitting team's new score.
type WordResult struct {
	Word        string        `json:"word"`
	Team        engine.TeamID `json:"team"`
	IsValid     bool          `json:"isValid"`
	IsDuplicate bool          `json:"isDuplicate"`
	NewScore    int           `json:"newScore"`
}

type ServerMessage struct {
	Type     string          `json:"type"`
	GameCode string          `json:"gameCode,omitempty"`
	Success  bool            `json:"success,omitempty"`
	Error    string          `json:"error,omitempty"`
	State    *engine.State   `json:"state,omitempty"`
	Player   *session.Player `json:"player,omitempty"`
	PlayerID string          `json:"playerId,omitempty"`
	Word     *WordResult     `json:"word,omitempty"`
}

// IsAck reports whether a message type answers a specific request rather
// than fanning out to the room.
func IsAck(msgType string) bool {
	switch msgType {
	case MsgCreateAck, MsgJoinAck, MsgStartAck, MsgSubmitAck, MsgError:
		return true
	}
	return false
}
