// Package client implements the player-facing game controller. In local mode
// it owns the game state outright and applies the shared engine directly. In
// relay mode it holds only a cached projection: actions are forwarded to the
// server, local validation is advisory display feedback, and only
// server-confirmed broadcasts mutate the shared word lists and scores.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devpatel/shabd-ramat/internal/engine"
	"github.com/devpatel/shabd-ramat/internal/session"
	"github.com/devpatel/shabd-ramat/internal/types"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeRelay Mode = "relay"
)

type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusPlaying    Status = "playing"
	StatusEnded      Status = "ended"
)

const (
	// How long the speaking indicator survives a capture that ended with
	// neither transcript nor error.
	captureGrace = 2 * time.Second

	msgSubmitFailed = "શબ્દ સબમિટ કરવામાં ત્રુટિ આવી"
	msgInvalidWord  = "અમાન્ય શબ્દ"
)

type Controller struct {
	mu         sync.Mutex
	mode       Mode
	state      engine.State
	players    map[string]session.Player
	gameCode   string
	playerTeam engine.TeamID
	playerName string
	transport  Transport

	lastWord  string
	lastError string

	captureToken int
	resetTimer   *time.Timer
	grace        time.Duration

	updates chan struct{}
}

// NewController builds a controller in the not-started state. name is the
// display name used when joining relay games.
func NewController(name string) *Controller {
	return &Controller{
		state:      engine.NewState(nil),
		players:    make(map[string]session.Player),
		playerName: name,
		grace:      captureGrace,
		updates:    make(chan struct{}, 1),
	}
}

// SetTransport attaches the relay transport; required before relay mode.
// Wire the transport's broadcasts to HandleBroadcast. A replaced transport is
// closed so its read loop stops feeding broadcasts from the abandoned game
// into the projection.
func (c *Controller) SetTransport(t Transport) {
	c.mu.Lock()
	prev := c.transport
	c.transport = t
	c.mu.Unlock()

	if prev != nil && prev != t {
		_ = prev.Close()
	}
}

// Updates signals (coalesced) whenever the visible state changed, including
// from server broadcasts.
func (c *Controller) Updates() <-chan struct{} { return c.updates }

func (c *Controller) State() engine.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.state.IsPlaying:
		return StatusPlaying
	case c.state.Winner != "":
		return StatusEnded
	default:
		return StatusNotStarted
	}
}

func (c *Controller) Mode() Mode { c.mu.Lock(); defer c.mu.Unlock(); return c.mode }

func (c *Controller) GameCode() string { c.mu.Lock(); defer c.mu.Unlock(); return c.gameCode }

func (c *Controller) Team() engine.TeamID { c.mu.Lock(); defer c.mu.Unlock(); return c.playerTeam }

func (c *Controller) LastError() string { c.mu.Lock(); defer c.mu.Unlock(); return c.lastError }

func (c *Controller) LastWord() string { c.mu.Lock(); defer c.mu.Unlock(); return c.lastWord }

func (c *Controller) Players() []session.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]session.Player, 0, len(c.players))
	for _, p := range c.players {
		out = append(out, p)
	}
	return out
}

// Start transitions NotStarted -> Playing. In relay mode it first performs
// the create/join round-trip: gameCode empty means create a new game and
// start it, otherwise join the existing one. Any relay failure leaves the
// controller in NotStarted and returns the error.
func (c *Controller) Start(ctx context.Context, mode Mode, setup *engine.Setup, gameCode string) error {
	if mode == ModeLocal {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.mode = ModeLocal
		c.gameCode = ""
		c.state = engine.NewState(setup)
		c.applyLocked(engine.Command{Type: engine.CmdStartGame})
		c.lastWord, c.lastError = "", ""
		c.notifyLocked()
		return nil
	}

	c.mu.Lock()
	transport := c.transport
	name := c.playerName
	c.mu.Unlock()
	if transport == nil {
		return fmt.Errorf("relay mode requires a transport")
	}

	created := gameCode == ""
	code := gameCode
	if created {
		var err error
		var s engine.Setup
		if setup != nil {
			s = *setup
		}
		code, err = transport.CreateGame(ctx, s)
		if err != nil {
			c.fail(msgSubmitFailed)
			return fmt.Errorf("create game: %w", err)
		}
	}

	player, err := transport.JoinGame(ctx, code, name)
	if err != nil {
		c.fail(err.Error())
		return fmt.Errorf("join game: %w", err)
	}

	// The creator starts the game; a joiner syncs from the game-state
	// snapshot and the game-started broadcast.
	if created {
		if err := transport.StartGame(ctx, code); err != nil {
			c.fail(err.Error())
			return fmt.Errorf("start game: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeRelay
	c.gameCode = code
	c.playerTeam = player.Team
	c.state = engine.NewState(setup)
	c.applyLocked(engine.Command{Type: engine.CmdStartGame})
	c.lastWord, c.lastError = "", ""
	c.notifyLocked()
	return nil
}

// SubmitWord validates and records one submission. Local mode mutates state
// synchronously. Relay mode returns the advisory local validation for
// immediate feedback and forwards the raw word; the authoritative append
// arrives later as a broadcast, so the advisory result never touches score
// or word lists here.
func (c *Controller) SubmitWord(ctx context.Context, text string, team engine.TeamID) (engine.Validation, error) {
	c.mu.Lock()
	c.lastWord = text
	c.lastError = ""
	c.stopResetTimerLocked()

	teamData, ok := c.state.Teams[team]
	if !ok {
		c.mu.Unlock()
		return engine.Validation{}, fmt.Errorf("%w: %q", engine.ErrUnknownTeam, team)
	}
	validation := engine.Validate(text, teamData.Letter, engine.WordTexts(c.state))

	if c.mode != ModeRelay {
		_, newState, err := engine.Apply(c.state, engine.Command{
			Type: engine.CmdSubmitWord,
			Word: text,
			Team: team,
		})
		if err != nil {
			c.mu.Unlock()
			return engine.Validation{}, err
		}
		c.state = newState
		if !validation.IsValid {
			c.setErrorLocked(validation)
		}
		c.notifyLocked()
		c.mu.Unlock()
		return validation, nil
	}

	// Relay: clear the speaking indicator now, then forward. The lock is
	// released around the network call so inbound broadcasts keep flowing.
	_, cleared, _ := engine.Apply(c.state, engine.Command{Type: engine.CmdSetSpeaking})
	c.state = cleared
	code := c.gameCode
	transport := c.transport
	c.mu.Unlock()

	if err := transport.SubmitWord(ctx, code, text, team); err != nil {
		c.fail(msgSubmitFailed)
		return validation, fmt.Errorf("submit word: %w", err)
	}

	if !validation.IsValid {
		c.mu.Lock()
		c.setErrorLocked(validation)
		c.mu.Unlock()
	}
	return validation, nil
}

// SetSpeaking hands the microphone to a team, or to nobody. At most one team
// speaks at a time; callers switch speakers through "" rather than setting a
// second team directly.
func (c *Controller) SetSpeaking(team engine.TeamID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(engine.Command{Type: engine.CmdSetSpeaking, Team: team})
	c.notifyLocked()
}

// CaptureWord runs one speech capture for a team and submits the transcript.
// Starting a capture while one is outstanding is an explicit error. A
// capture that ends silently leaves the speaking indicator up for a grace
// period in case a late result is on its way; the delayed reset is keyed to
// this capture and cancelled by any newer one.
func (c *Controller) CaptureWord(ctx context.Context, team engine.TeamID, rec Recognizer) (engine.Validation, error) {
	c.mu.Lock()
	if c.state.IsListening {
		c.mu.Unlock()
		return engine.Validation{}, ErrCaptureInProgress
	}
	c.stopResetTimerLocked()
	c.applyLocked(engine.Command{Type: engine.CmdSetSpeaking, Team: team})
	c.captureToken++
	token := c.captureToken
	c.notifyLocked()
	c.mu.Unlock()

	text, err := rec.Recognize(ctx)

	if err != nil {
		c.mu.Lock()
		if token == c.captureToken {
			c.lastError = CaptureMessage(err)
			c.applyLocked(engine.Command{Type: engine.CmdSetSpeaking})
			c.notifyLocked()
		}
		c.mu.Unlock()
		return engine.Validation{}, err
	}

	if text == "" {
		c.mu.Lock()
		if token == c.captureToken {
			c.resetTimer = time.AfterFunc(c.grace, func() {
				c.mu.Lock()
				if token == c.captureToken {
					c.applyLocked(engine.Command{Type: engine.CmdSetSpeaking})
					c.notifyLocked()
				}
				c.mu.Unlock()
			})
		}
		c.mu.Unlock()
		return engine.Validation{}, nil
	}

	c.mu.Lock()
	if token != c.captureToken {
		// A newer capture superseded this one; drop the stale result.
		c.mu.Unlock()
		return engine.Validation{}, nil
	}
	c.mu.Unlock()

	return c.SubmitWord(ctx, text, team)
}

// EndGame freezes the winner by strict score comparison and transitions to
// Ended. Winner derivation is shared engine logic, so both relay clients
// reach the same verdict.
func (c *Controller) EndGame() engine.Winner {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(engine.Command{Type: engine.CmdEndGame})
	c.notifyLocked()
	return c.state.Winner
}

// Restart discards all team, word, and score data. Relay games keep their
// letters and code so the same room can play again.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var setup *engine.Setup
	if c.mode == ModeRelay {
		setup = &engine.Setup{
			LetterA: c.state.Teams[engine.TeamA].Letter,
			LetterB: c.state.Teams[engine.TeamB].Letter,
		}
	} else {
		c.gameCode = ""
	}

	c.applyLocked(engine.Command{Type: engine.CmdRestart, Setup: setup})
	c.mode = ""
	c.lastWord, c.lastError = "", ""
	c.captureToken++
	c.stopResetTimerLocked()
	c.notifyLocked()
}

// HandleBroadcast applies one server broadcast to the cached projection.
// Full-state messages are authoritative and replace the projection outright;
// word-submitted is display metadata only, since the snapshot that follows
// it carries the appended word and score (applying both would double-count).
func (c *Controller) HandleBroadcast(msg types.ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Type {
	case types.MsgGameState, types.MsgGameStarted, types.MsgGameStateUpdated:
		if msg.State != nil {
			c.state = msg.State.Clone()
		}

	case types.MsgWordSubmitted:
		if msg.Word == nil {
			return
		}
		c.lastWord = msg.Word.Word
		if !msg.Word.IsValid {
			c.lastError = msgInvalidWord
		}

	case types.MsgPlayerJoined:
		if msg.Player != nil {
			c.players[msg.Player.ID] = *msg.Player
		}

	case types.MsgPlayerLeft:
		delete(c.players, msg.PlayerID)
	}

	c.notifyLocked()
}

func (c *Controller) applyLocked(cmd engine.Command) {
	_, newState, err := engine.Apply(c.state, cmd)
	if err != nil {
		return
	}
	c.state = newState
}

func (c *Controller) setErrorLocked(v engine.Validation) {
	if v.Message != "" {
		c.lastError = v.Message
	} else {
		c.lastError = msgInvalidWord
	}
}

func (c *Controller) stopResetTimerLocked() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

func (c *Controller) fail(msg string) {
	c.mu.Lock()
	c.lastError = msg
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *Controller) notifyLocked() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}
