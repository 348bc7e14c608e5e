// Package hub owns the map of live game codes. It is the only writer of that
// map and processes every request through a single inbox, so code lookups,
// collision checks, and removals never interleave.
package hub

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/devpatel/shabd-ramat/internal/engine"
	"github.com/devpatel/shabd-ramat/internal/room"
	"github.com/devpatel/shabd-ramat/internal/session"
)

// ErrClosed answers create requests that arrive after shutdown began.
var ErrClosed = errors.New("hub is shutting down")

type Msg interface{ isHubMsg() }

type Create struct {
	Setup engine.Setup
	Reply chan CreateReply
}

type CreateReply struct {
	Code string
	Room *room.Room
	Err  error
}

type Get struct {
	Code  string
	Reply chan *room.Room
}

type Remove struct {
	Code string
}

type Shutdown struct{}

func (Create) isHubMsg()   {}
func (Get) isHubMsg()      {}
func (Remove) isHubMsg()   {}
func (Shutdown) isHubMsg() {}

type Hub struct {
	inbox  chan Msg
	rooms  map[string]*room.Room
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]*room.Room),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.close()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Create:
				msg.Reply <- h.create(msg.Setup)

			case Get:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case Remove:
				delete(h.rooms, msg.Code)

			case Shutdown:
				h.close()
				return
			}
		}
	}
}

func (h *Hub) close() {
	for _, r := range h.rooms {
		r.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()

	// Connection handlers and room onEmpty callbacks may still be sending;
	// keep answering with closed-hub results so none of them block on a
	// dead inbox.
	go func() {
		for m := range h.inbox {
			switch msg := m.(type) {
			case Create:
				msg.Reply <- CreateReply{Err: ErrClosed}
			case Get:
				msg.Reply <- nil
			}
		}
	}()
}

func (h *Hub) create(setup engine.Setup) CreateReply {
	// Draw until the code is free among live sessions. Turnover keeps the
	// 4-character space roomy enough that this terminates quickly.
	var code string
	for {
		c, err := session.GenerateCode()
		if err != nil {
			return CreateReply{Err: err}
		}
		if _, taken := h.rooms[c]; !taken {
			code = c
			break
		}
		h.log.Debug("code collision, regenerating", zap.String("code", c))
	}

	sess := session.New(code, setup)
	r := room.NewRoom(h.ctx, sess, h.log, func() {
		h.inbox <- Remove{Code: code}
	})
	h.rooms[code] = r

	h.log.Info("game created", zap.String("code", code))
	return CreateReply{Code: code, Room: r}
}
