package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devpatel/shabd-ramat/internal/engine"
	"github.com/devpatel/shabd-ramat/internal/session"
	"github.com/devpatel/shabd-ramat/internal/types"
)

// helper: receive one message with a timeout so tests never hang
func recvMsg(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) types.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("outbox closed unexpectedly")
		}
		return msg
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return types.ServerMessage{} // unreachable
	}
}

func recvView(t *testing.T, r *Room, within time.Duration) View {
	t.Helper()
	reply := make(chan View, 1)
	r.Inbox() <- GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func joinPlayer(t *testing.T, r *Room, connID, name string) (chan types.ServerMessage, session.Player) {
	t.Helper()
	out := make(chan types.ServerMessage, 16)
	reply := make(chan JoinReply, 1)
	r.Inbox() <- Join{ConnID: connID, Name: name, Outbox: out, Reply: reply}
	res := <-reply
	require.NoError(t, res.Err)
	return out, res.Player
}

func newTestRoom(t *testing.T, onEmpty func()) *Room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sess := session.New("AB12", engine.Setup{LetterA: "ક", LetterB: "ખ"})
	return NewRoom(ctx, sess, zap.NewNop(), onEmpty)
}

func TestRoom_WatchAnnouncesCreation(t *testing.T) {
	r := newTestRoom(t, nil)

	out := make(chan types.ServerMessage, 16)
	r.Inbox() <- Watch{ConnID: "creator", Outbox: out}

	msg := recvMsg(t, out, time.Second)
	assert.Equal(t, types.MsgGameCreated, msg.Type)
	assert.Equal(t, "AB12", msg.GameCode)
}

func TestRoom_JoinSendsSnapshotAndNotifiesOthers(t *testing.T) {
	r := newTestRoom(t, nil)

	outA, playerA := joinPlayer(t, r, "conn-1", "Dev")
	assert.Equal(t, engine.TeamA, playerA.Team)

	// Joiner gets the current snapshot, nothing else.
	snap := recvMsg(t, outA, time.Second)
	require.Equal(t, types.MsgGameState, snap.Type)
	require.NotNil(t, snap.State)
	assert.Equal(t, "ક", snap.State.Teams[engine.TeamA].Letter)

	outB, playerB := joinPlayer(t, r, "conn-2", "Raj")
	assert.Equal(t, engine.TeamB, playerB.Team)

	// The first player hears about the second; not vice versa.
	joined := recvMsg(t, outA, time.Second)
	require.Equal(t, types.MsgPlayerJoined, joined.Type)
	require.NotNil(t, joined.Player)
	assert.Equal(t, "Raj", joined.Player.Name)

	snapB := recvMsg(t, outB, time.Second)
	assert.Equal(t, types.MsgGameState, snapB.Type)
}

func TestRoom_JoinFull(t *testing.T) {
	r := newTestRoom(t, nil)
	joinPlayer(t, r, "conn-1", "Dev")
	joinPlayer(t, r, "conn-2", "Raj")

	out := make(chan types.ServerMessage, 16)
	reply := make(chan JoinReply, 1)
	r.Inbox() <- Join{ConnID: "conn-3", Name: "Late", Outbox: out, Reply: reply}
	res := <-reply
	assert.ErrorIs(t, res.Err, session.ErrFull)
}

func TestRoom_StartBroadcastsToEveryone(t *testing.T) {
	r := newTestRoom(t, nil)
	outA, _ := joinPlayer(t, r, "conn-1", "Dev")
	recvMsg(t, outA, time.Second) // game-state
	outB, _ := joinPlayer(t, r, "conn-2", "Raj")
	recvMsg(t, outA, time.Second) // player-joined
	recvMsg(t, outB, time.Second) // game-state

	reply := make(chan error, 1)
	r.Inbox() <- Start{Reply: reply}
	require.NoError(t, <-reply)

	for _, out := range []chan types.ServerMessage{outA, outB} {
		msg := recvMsg(t, out, time.Second)
		require.Equal(t, types.MsgGameStarted, msg.Type)
		require.NotNil(t, msg.State)
		assert.True(t, msg.State.IsPlaying)
		assert.Equal(t, engine.TeamA, msg.State.CurrentTeam)
	}
}

func TestRoom_SubmitBroadcastsWordThenSnapshot(t *testing.T) {
	r := newTestRoom(t, nil)
	outA, _ := joinPlayer(t, r, "conn-1", "Dev")
	recvMsg(t, outA, time.Second) // game-state

	reply := make(chan error, 1)
	r.Inbox() <- Start{Reply: reply}
	require.NoError(t, <-reply)
	recvMsg(t, outA, time.Second) // game-started

	submitReply := make(chan error, 1)
	r.Inbox() <- Submit{Word: "કેળા", Team: engine.TeamA, Reply: submitReply}
	require.NoError(t, <-submitReply)

	// word-submitted comes first, then the full snapshot: FIFO per session.
	wordMsg := recvMsg(t, outA, time.Second)
	require.Equal(t, types.MsgWordSubmitted, wordMsg.Type)
	require.NotNil(t, wordMsg.Word)
	assert.Equal(t, "કેળા", wordMsg.Word.Word)
	assert.True(t, wordMsg.Word.IsValid)
	assert.Equal(t, 1, wordMsg.Word.NewScore)

	stateMsg := recvMsg(t, outA, time.Second)
	require.Equal(t, types.MsgGameStateUpdated, stateMsg.Type)
	require.NotNil(t, stateMsg.State)
	assert.Equal(t, 1, stateMsg.State.Teams[engine.TeamA].Score)
	assert.Equal(t, engine.TeamB, stateMsg.State.CurrentTeam)
}

func TestRoom_SubmitUnknownTeam(t *testing.T) {
	r := newTestRoom(t, nil)
	reply := make(chan error, 1)
	r.Inbox() <- Submit{Word: "કેળા", Team: "C", Reply: reply}
	assert.ErrorIs(t, <-reply, engine.ErrUnknownTeam)
}

func TestRoom_LeaveBroadcastsAndKeepsSession(t *testing.T) {
	emptied := make(chan struct{}, 1)
	r := newTestRoom(t, func() { emptied <- struct{}{} })

	outA, _ := joinPlayer(t, r, "conn-1", "Dev")
	recvMsg(t, outA, time.Second) // game-state
	_, playerB := joinPlayer(t, r, "conn-2", "Raj")
	recvMsg(t, outA, time.Second) // player-joined

	r.Inbox() <- Leave{ConnID: "conn-2"}

	left := recvMsg(t, outA, time.Second)
	require.Equal(t, types.MsgPlayerLeft, left.Type)
	assert.Equal(t, playerB.ID, left.PlayerID)

	view := recvView(t, r, time.Second)
	assert.Equal(t, 1, view.NumPlayers, "one player keeps the session alive")

	select {
	case <-emptied:
		t.Fatal("session should not be reaped while a player remains")
	default:
	}
}

func TestRoom_LastLeaveDeletesSession(t *testing.T) {
	emptied := make(chan struct{}, 1)
	r := newTestRoom(t, func() { emptied <- struct{}{} })

	outA, _ := joinPlayer(t, r, "conn-1", "Dev")
	recvMsg(t, outA, time.Second) // game-state

	r.Inbox() <- Leave{ConnID: "conn-1"}

	select {
	case <-emptied:
	case <-time.After(time.Second):
		t.Fatal("expected onEmpty after the last player left")
	}

	// The departing connection's outbox is closed as part of the leave.
	select {
	case _, ok := <-outA:
		assert.False(t, ok, "expected outbox to close, not deliver")
	case <-time.After(time.Second):
		t.Fatal("expected outbox to close")
	}
}

func TestRoom_RegisterReplacesOldOutbox(t *testing.T) {
	r := newTestRoom(t, nil)

	watch := make(chan types.ServerMessage, 16)
	r.Inbox() <- Watch{ConnID: "conn-1", Outbox: watch}
	recvMsg(t, watch, time.Second) // game-created

	// The same connection joining with a new channel supersedes the watch
	// registration; the room closes the channel it stops using.
	joined, _ := joinPlayer(t, r, "conn-1", "Dev")
	recvMsg(t, joined, time.Second) // game-state snapshot

	select {
	case _, ok := <-watch:
		assert.False(t, ok, "expected superseded outbox to close, not deliver")
	case <-time.After(time.Second):
		t.Fatal("expected superseded outbox to close")
	}

	// Broadcasts flow on the replacement only.
	otherOut, _ := joinPlayer(t, r, "conn-2", "Raj")
	assert.Equal(t, types.MsgPlayerJoined, recvMsg(t, joined, time.Second).Type)
	assert.Equal(t, types.MsgGameState, recvMsg(t, otherOut, time.Second).Type)

	view := recvView(t, r, time.Second)
	assert.Equal(t, 2, view.NumClients)
}

func TestRoom_LeaveWithoutSlotIsIgnored(t *testing.T) {
	r := newTestRoom(t, func() { t.Fatal("onEmpty must not fire for non-players") })
	out := make(chan types.ServerMessage, 16)
	r.Inbox() <- Watch{ConnID: "creator", Outbox: out}
	recvMsg(t, out, time.Second) // game-created

	r.Inbox() <- Leave{ConnID: "creator"}

	view := recvView(t, r, time.Second)
	assert.Equal(t, 0, view.NumClients)
	assert.Equal(t, 0, view.NumPlayers)
}
