// Package room runs one goroutine per live game session. All mutations of a
// session flow through the room's inbox and are processed to completion one
// at a time, so every connected client observes broadcasts in the exact
// order the state changed.
package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/devpatel/shabd-ramat/internal/engine"
	"github.com/devpatel/shabd-ramat/internal/session"
	"github.com/devpatel/shabd-ramat/internal/types"
)

type Msg interface{ isRoomMsg() }

// Watch registers a connection for broadcasts without claiming a player
// slot. The creator watches its room before joining; the game-created
// announcement goes out to the room at that point.
type Watch struct {
	ConnID string
	Outbox chan types.ServerMessage
}

func (Watch) isRoomMsg() {}

type Join struct {
	ConnID string
	Name   string
	Outbox chan types.ServerMessage
	Reply  chan JoinReply
}

func (Join) isRoomMsg() {}

type JoinReply struct {
	Player session.Player
	Err    error
}

type Start struct {
	Reply chan error
}

func (Start) isRoomMsg() {}

type Submit struct {
	Word  string
	Team  engine.TeamID
	Reply chan error
}

func (Submit) isRoomMsg() {}

type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

// View reflects room internals without data races; used by tests.
type View struct {
	Code       string
	NumClients int
	NumPlayers int
	State      engine.State
}

type Room struct {
	inbox    chan Msg
	sess     *session.Session
	outboxes map[string]chan types.ServerMessage
	onEmpty  func()
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewRoom starts the actor. onEmpty fires once, when the last player slot is
// vacated; the owner is expected to drop its reference to the room.
func NewRoom(parent context.Context, sess *session.Session, log *zap.Logger, onEmpty func()) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:    make(chan Msg, 64),
		sess:     sess,
		outboxes: make(map[string]chan types.ServerMessage),
		onEmpty:  onEmpty,
		log:      log.With(zap.String("game", sess.Code)),
		ctx:      ctx,
		cancel:   cancel,
	}

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room goroutine has exited; senders race it so a
// message to a dead room never blocks.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Watch:
				r.register(msg.ConnID, msg.Outbox)
				r.broadcast(types.ServerMessage{Type: types.MsgGameCreated, GameCode: r.sess.Code})

			case Join:
				r.handleJoin(msg)

			case Start:
				_, newState, err := engine.Apply(r.sess.State, engine.Command{Type: engine.CmdStartGame})
				if err != nil {
					msg.Reply <- err
					break
				}
				r.sess.State = newState
				r.log.Info("game started")
				r.broadcast(types.ServerMessage{Type: types.MsgGameStarted, State: r.snapshot()})
				msg.Reply <- nil

			case Submit:
				r.handleSubmit(msg)

			case Leave:
				r.handleLeave(msg)

			case GetView:
				msg.Reply <- View{
					Code:       r.sess.Code,
					NumClients: len(r.outboxes),
					NumPlayers: len(r.sess.Players),
					State:      r.sess.State,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	player, err := r.sess.Join(msg.ConnID, msg.Name)
	if err != nil {
		msg.Reply <- JoinReply{Err: err}
		return
	}

	r.register(msg.ConnID, msg.Outbox)
	r.log.Info("player joined", zap.String("name", player.Name), zap.String("team", string(player.Team)))

	// Others learn about the new player; the joiner gets the full snapshot.
	r.broadcastExcept(msg.ConnID, types.ServerMessage{Type: types.MsgPlayerJoined, Player: &player})
	r.send(msg.ConnID, types.ServerMessage{Type: types.MsgGameState, State: r.snapshot()})

	msg.Reply <- JoinReply{Player: player}
}

func (r *Room) handleSubmit(msg Submit) {
	events, newState, err := engine.Apply(r.sess.State, engine.Command{
		Type: engine.CmdSubmitWord,
		Word: msg.Word,
		Team: msg.Team,
	})
	if err != nil {
		msg.Reply <- err
		return
	}
	r.sess.State = newState

	for _, evt := range events {
		if evt.Type != engine.EvtWordSubmitted {
			continue
		}
		r.broadcast(types.ServerMessage{Type: types.MsgWordSubmitted, Word: &types.WordResult{
			Word:        evt.Word.Text,
			Team:        evt.Team,
			IsValid:     evt.Word.IsValid,
			IsDuplicate: evt.Word.IsDuplicate,
			NewScore:    evt.NewScore,
		}})
	}
	r.broadcast(types.ServerMessage{Type: types.MsgGameStateUpdated, State: r.snapshot()})

	msg.Reply <- nil
}

func (r *Room) handleLeave(msg Leave) {
	// Closing the outbox releases the connection's writer goroutine.
	if ch, ok := r.outboxes[msg.ConnID]; ok {
		close(ch)
		delete(r.outboxes, msg.ConnID)
	}

	player, held := r.sess.RemovePlayer(msg.ConnID)
	if !held {
		return
	}

	r.log.Info("player left", zap.String("name", player.Name))
	r.broadcast(types.ServerMessage{Type: types.MsgPlayerLeft, PlayerID: player.ID})

	// Last player out deletes the session immediately; there is no grace
	// period for reconnects.
	if r.sess.Empty() {
		r.log.Info("session empty, closing")
		if r.onEmpty != nil {
			r.onEmpty()
		}
		r.shutdown()
	}
}

// register adopts an outbox for a connection. Ownership transfers to the
// room, which is the only closer from here on; a superseded outbox for the
// same connection is closed before it is replaced.
func (r *Room) register(connID string, outbox chan types.ServerMessage) {
	if old, ok := r.outboxes[connID]; ok && old != outbox {
		close(old)
	}
	r.outboxes[connID] = outbox
}

// snapshot copies the state so marshaling in writer goroutines never races
// with the next mutation.
func (r *Room) snapshot() *engine.State {
	s := r.sess.State.Clone()
	return &s
}

func (r *Room) send(connID string, msg types.ServerMessage) {
	ch, ok := r.outboxes[connID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(r.outboxes, connID)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id, ch := range r.outboxes {
		select {
		case ch <- msg:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.outboxes, id)
		}
	}
}

func (r *Room) broadcastExcept(connID string, msg types.ServerMessage) {
	for id, ch := range r.outboxes {
		if id == connID {
			continue
		}
		select {
		case ch <- msg:
		default:
			close(ch)
			delete(r.outboxes, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.outboxes {
		close(ch)
		delete(r.outboxes, id)
	}
	r.cancel()
}
