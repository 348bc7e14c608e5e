package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/devpatel/shabd-ramat/internal/engine"
	"github.com/devpatel/shabd-ramat/internal/session"
	"github.com/devpatel/shabd-ramat/internal/types"
)

var ErrDisconnected = errors.New("connection closed")

// Transport is what a relay-mode controller needs from the network. Each
// call is one action with one ack; broadcasts arrive out of band.
type Transport interface {
	CreateGame(ctx context.Context, setup engine.Setup) (string, error)
	JoinGame(ctx context.Context, code, name string) (session.Player, error)
	StartGame(ctx context.Context, code string) error
	SubmitWord(ctx context.Context, code, word string, team engine.TeamID) error
	Close() error
}

// Relay speaks the wire protocol over a websocket. One request may be in
// flight at a time; its ack is routed back through the acks channel while
// broadcasts go straight to the handler.
type Relay struct {
	conn        *websocket.Conn
	mu          sync.Mutex // serializes request/ack round-trips
	acks        chan types.ServerMessage
	onBroadcast func(types.ServerMessage)
	closed      chan struct{}
	closeOnce   sync.Once
}

// Dial connects to the relay server at baseURL (http, https, ws, or wss).
func Dial(ctx context.Context, baseURL string, onBroadcast func(types.ServerMessage)) (*Relay, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}

	r := &Relay{
		conn:        conn,
		acks:        make(chan types.ServerMessage, 1),
		onBroadcast: onBroadcast,
		closed:      make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

func (r *Relay) readLoop() {
	for {
		var msg types.ServerMessage
		if err := wsjson.Read(context.Background(), r.conn, &msg); err != nil {
			r.closeOnce.Do(func() { close(r.closed) })
			return
		}

		if types.IsAck(msg.Type) {
			select {
			case r.acks <- msg:
			default:
			}
			continue
		}

		if r.onBroadcast != nil {
			r.onBroadcast(msg)
		}
	}
}

func (r *Relay) roundTrip(ctx context.Context, cm types.ClientMessage) (types.ServerMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Drop any stale ack from an earlier timed-out request.
	select {
	case <-r.acks:
	default:
	}

	if err := wsjson.Write(ctx, r.conn, cm); err != nil {
		return types.ServerMessage{}, fmt.Errorf("send %s: %w", cm.Type, err)
	}

	select {
	case msg := <-r.acks:
		if msg.Error != "" {
			return msg, errors.New(msg.Error)
		}
		return msg, nil
	case <-r.closed:
		return types.ServerMessage{}, ErrDisconnected
	case <-ctx.Done():
		return types.ServerMessage{}, ctx.Err()
	}
}

func (r *Relay) CreateGame(ctx context.Context, setup engine.Setup) (string, error) {
	msg, err := r.roundTrip(ctx, types.ClientMessage{Type: types.MsgCreateGame, Setup: &setup})
	if err != nil {
		return "", err
	}
	return msg.GameCode, nil
}

func (r *Relay) JoinGame(ctx context.Context, code, name string) (session.Player, error) {
	msg, err := r.roundTrip(ctx, types.ClientMessage{Type: types.MsgJoinGame, GameCode: code, PlayerName: name})
	if err != nil {
		return session.Player{}, err
	}
	if msg.Player == nil {
		return session.Player{}, nil
	}
	return *msg.Player, nil
}

func (r *Relay) StartGame(ctx context.Context, code string) error {
	_, err := r.roundTrip(ctx, types.ClientMessage{Type: types.MsgStartGame, GameCode: code})
	return err
}

func (r *Relay) SubmitWord(ctx context.Context, code, word string, team engine.TeamID) error {
	_, err := r.roundTrip(ctx, types.ClientMessage{Type: types.MsgSubmitWord, GameCode: code, Word: word, Team: team})
	return err
}

func (r *Relay) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return r.conn.Close(websocket.StatusNormalClosure, "bye")
}
