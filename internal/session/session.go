// Package session holds the server-owned state of one game room: the two
// teams' game state plus the player slots attached to it. A Session is not
// safe for concurrent use; each one is owned by a single room actor that
// applies every mutation to completion before the next.
package session

import (
	"time"

	"github.com/devpatel/shabd-ramat/internal/engine"
)

// MaxPlayers is fixed: one connection per team.
const MaxPlayers = 2

type Player struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Team    engine.TeamID `json:"team"`
	IsReady bool          `json:"isReady"`
}

type Session struct {
	Code      string
	Setup     engine.Setup
	Players   map[string]Player
	State     engine.State
	CreatedAt time.Time
}

func New(code string, setup engine.Setup) *Session {
	return &Session{
		Code:      code,
		Setup:     setup,
		Players:   make(map[string]Player),
		State:     engine.NewState(&setup),
		CreatedAt: time.Now(),
	}
}

// Join assigns the connection a player slot, team A first then B. A
// connection that already holds a slot gets its prior assignment back
// unchanged, so a rejoin is idempotent and never consumes a second slot.
func (s *Session) Join(connID, name string) (Player, error) {
	if p, ok := s.Players[connID]; ok {
		return p, nil
	}

	if len(s.Players) >= MaxPlayers {
		return Player{}, ErrFull
	}

	team := engine.TeamA
	if len(s.Players) == 1 {
		team = engine.TeamB
	}

	p := Player{ID: connID, Name: name, Team: team}
	s.Players[connID] = p
	return p, nil
}

// RemovePlayer drops the connection's slot if it holds one, reporting which
// team was vacated.
func (s *Session) RemovePlayer(connID string) (Player, bool) {
	p, ok := s.Players[connID]
	if !ok {
		return Player{}, false
	}
	delete(s.Players, connID)
	return p, true
}

func (s *Session) Empty() bool {
	return len(s.Players) == 0
}
