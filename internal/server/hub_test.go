package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripleset/server/internal/config"
)

func newTestHub() (*Hub, *State) {
	s := newTestState()
	h := NewHub(s, config.Config{SendBuffer: 8, MsgRate: 20, MsgBurst: 40})
	return h, s
}

func TestDispatchToleratesGarbage(t *testing.T) {
	h, s := newTestHub()
	c := s.Register(8)

	h.dispatch(c, []byte(`not json at all`))
	h.dispatch(c, []byte(`{"type":"no-such-action"}`))
	h.dispatch(c, []byte(`{"type":"pick-cards","cards":[1,2]}`))
	h.dispatch(c, []byte(`{"type":"heartbeat"}`))

	assert.Empty(t, s.rooms)
	noFrame(t, c)
}

func TestDispatchRoutesActions(t *testing.T) {
	h, s := newTestHub()
	c := s.Register(64)

	h.dispatch(c, []byte(`{"type":"view-room","id":"den"}`))
	require.NotNil(t, s.rooms["den"])
	assert.Equal(t, "update-players", recvFrame(t, c)["type"])

	h.dispatch(c, []byte(`{"type":"join-room","name":"alice"}`))
	require.Len(t, s.rooms["den"].Players, 1)
	drain(c)

	h.dispatch(c, []byte(`{"type":"start-game"}`))
	require.True(t, s.rooms["den"].Started)
	drain(c)

	h.dispatch(c, []byte(`{"type":"pick-cards","cards":[0,1,2]}`))
	assert.Equal(t, "update-game", recvFrame(t, c)["type"])

	h.dispatch(c, []byte(`{"type":"leave-room"}`))
	assert.Empty(t, s.rooms["den"].Players[0].ClientID)
}

func TestInboundLimiterDropsFramesPastBurst(t *testing.T) {
	h, _ := newTestHub()
	limiter := h.newLimiter()

	for i := 0; i < h.burst; i++ {
		require.True(t, limiter.Allow(), "frame %d is within the burst", i)
	}
	assert.False(t, limiter.Allow(), "frame past the burst must be dropped")
}

func TestDispatchPickOnCooldownDropsSilently(t *testing.T) {
	h, s := newTestHub()
	now := time.Now()
	c := s.Register(64)
	s.ViewRoom(c.ID, "den", now)
	require.NoError(t, s.JoinRoom(c.ID, "alice", now))
	require.NoError(t, s.StartGame(c.ID, now))
	s.rooms["den"].Players[0].Timeout = time.Now().Add(time.Minute)
	drain(c)

	h.dispatch(c, []byte(`{"type":"pick-cards","cards":[0,1,2]}`))
	noFrame(t, c)
	assert.Equal(t, 0, s.rooms["den"].Players[0].MinusScore)
}
