package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devpatel/shabd-ramat/internal/engine"
	"github.com/devpatel/shabd-ramat/internal/hub"
	"github.com/devpatel/shabd-ramat/internal/room"
	"github.com/devpatel/shabd-ramat/internal/session"
	"github.com/devpatel/shabd-ramat/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	idleTimeout  = 5 * time.Minute
)

// Handler upgrades a connection and relays its actions into the hub. Each
// connection gets an outbox channel owned by whichever room it watches or
// joins; acks are written back directly from the read loop.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // clients are browsers and CLIs on arbitrary origins
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		log := log.With(zap.String("conn", connID))

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()

		// An outbox belongs to exactly one room registration and is closed
		// by whoever owns it (the room on leave, drop, replace, or
		// shutdown; the handler if the room never accepted it). Every
		// registration therefore gets a fresh channel with its own writer
		// goroutine: re-offering a channel a room already closed would hand
		// the next room a dead channel.
		var cur *room.Room

		newOutbox := func() chan types.ServerMessage {
			ch := make(chan types.ServerMessage, 16)
			go func() {
				for msg := range ch {
					writeMsg(writeCtx, conn, msg)
				}
			}()
			return ch
		}

		// detach vacates any slot held in the current room before the
		// connection moves on; otherwise the old session keeps a ghost
		// player and never empties. Racing Done covers rooms that already
		// shut down underneath us.
		detach := func() {
			if cur == nil {
				return
			}
			select {
			case cur.Inbox() <- room.Leave{ConnID: connID}:
			case <-cur.Done():
			}
			cur = nil
		}
		defer detach()

		for {
			ctx, cancel := context.WithTimeout(r.Context(), idleTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				// Clean close or drop either way: the deferred Leave
				// handles session cleanup.
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeMsg(r.Context(), conn, types.ServerMessage{Type: types.MsgError, Error: "bad json"})
				continue
			}

			switch cm.Type {
			case types.MsgCreateGame:
				detach()
				cur = handleCreate(r.Context(), h, conn, connID, newOutbox, cm)

			case types.MsgJoinGame:
				rm := getRoom(h, cm.GameCode)
				if rm == nil {
					writeMsg(r.Context(), conn, types.ServerMessage{Type: types.MsgJoinAck, Error: msgNotFound})
					break
				}
				if rm != cur {
					detach()
				}
				ob := newOutbox()
				if handleJoin(r.Context(), rm, conn, connID, ob, cm) {
					cur = rm
				} else {
					// The room never took ownership; release the writer
					// ourselves. A failed join of the room we already watch
					// leaves that registration intact.
					close(ob)
				}

			case types.MsgStartGame:
				reply := make(chan error, 1)
				if rm := getRoom(h, cm.GameCode); rm != nil {
					rm.Inbox() <- room.Start{Reply: reply}
					ack(r.Context(), conn, types.MsgStartAck, awaitReply(rm, reply))
				} else {
					writeMsg(r.Context(), conn, types.ServerMessage{Type: types.MsgStartAck, Error: msgNotFound})
				}

			case types.MsgSubmitWord:
				reply := make(chan error, 1)
				if rm := getRoom(h, cm.GameCode); rm != nil {
					rm.Inbox() <- room.Submit{Word: cm.Word, Team: cm.Team, Reply: reply}
					ack(r.Context(), conn, types.MsgSubmitAck, awaitReply(rm, reply))
				} else {
					writeMsg(r.Context(), conn, types.ServerMessage{Type: types.MsgSubmitAck, Error: msgNotFound})
				}

			default:
				log.Debug("unknown message type", zap.String("type", cm.Type))
				writeMsg(r.Context(), conn, types.ServerMessage{Type: types.MsgError, Error: "unknown type"})
			}
		}
	}
}

func handleCreate(ctx context.Context, h *hub.Hub, conn *websocket.Conn, connID string, newOutbox func() chan types.ServerMessage, cm types.ClientMessage) *room.Room {
	var setup engine.Setup
	if cm.Setup != nil {
		setup = *cm.Setup
	}

	reply := make(chan hub.CreateReply, 1)
	h.Inbox() <- hub.Create{Setup: setup, Reply: reply}
	res := <-reply
	if res.Err != nil {
		writeMsg(ctx, conn, types.ServerMessage{Type: types.MsgCreateAck, Error: msgCreateFailed})
		return nil
	}

	// Watch before acking so the creator is in the room for game-created.
	res.Room.Inbox() <- room.Watch{ConnID: connID, Outbox: newOutbox()}
	writeMsg(ctx, conn, types.ServerMessage{Type: types.MsgCreateAck, Success: true, GameCode: res.Code})
	return res.Room
}

// handleJoin reports whether the room accepted the player and took ownership
// of the outbox.
func handleJoin(ctx context.Context, rm *room.Room, conn *websocket.Conn, connID string, out chan types.ServerMessage, cm types.ClientMessage) bool {
	reply := make(chan room.JoinReply, 1)
	rm.Inbox() <- room.Join{ConnID: connID, Name: cm.PlayerName, Outbox: out, Reply: reply}

	var res room.JoinReply
	select {
	case res = <-reply:
	case <-rm.Done():
		// The room replies before it can shut down, so a buffered reply
		// wins over the done signal.
		select {
		case res = <-reply:
		default:
			res = room.JoinReply{Err: session.ErrNotFound}
		}
	}
	if res.Err != nil {
		writeMsg(ctx, conn, types.ServerMessage{Type: types.MsgJoinAck, Error: userMessage(res.Err)})
		return false
	}

	writeMsg(ctx, conn, types.ServerMessage{Type: types.MsgJoinAck, Success: true, Player: &res.Player})
	return true
}

// awaitReply collects a room ack, falling back to not-found if the room shut
// down without processing the request.
func awaitReply(rm *room.Room, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-rm.Done():
		select {
		case err := <-reply:
			return err
		default:
			return session.ErrNotFound
		}
	}
}

func getRoom(h *hub.Hub, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.Get{Code: code, Reply: reply}
	return <-reply
}

func ack(ctx context.Context, conn *websocket.Conn, msgType string, err error) {
	if err != nil {
		writeMsg(ctx, conn, types.ServerMessage{Type: msgType, Error: userMessage(err)})
		return
	}
	writeMsg(ctx, conn, types.ServerMessage{Type: msgType, Success: true})
}

func writeMsg(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
