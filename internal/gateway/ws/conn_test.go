package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveConn starts a server that wraps every upgraded socket in a Conn and
// hands it to the test through conns.
func serveConn(t *testing.T, sendBuffer int, onEnvelope func(*Conn, protocol.Envelope) error) (*websocket.Conn, *Conn) {
	t.Helper()

	conns := make(chan *Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewConn(ws, "alice", sendBuffer, logging.Nop())
		conns <- c
		_ = c.Serve(context.Background(), func(_ context.Context, env protocol.Envelope) error {
			return onEnvelope(c, env)
		})
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case c := <-conns:
		return client, c
	case <-time.After(2 * time.Second):
		t.Fatal("server connection not established")
		return nil, nil
	}
}

func readCloseCode(t *testing.T, client *websocket.Conn) int {
	t.Helper()
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := client.ReadMessage()
		if err == nil {
			continue
		}
		var ce *websocket.CloseError
		require.True(t, errors.As(err, &ce), "expected close error, got %v", err)
		return ce.Code
	}
}

func TestConn_EchoThroughQueue(t *testing.T) {
	client, _ := serveConn(t, 8, func(c *Conn, env protocol.Envelope) error {
		return c.Send(env)
	})

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","from":"alice","to":"bob","message":"hi"}`)))

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message","from":"alice","to":"bob","message":"hi"}`, string(data))
}

func TestConn_MalformedFrameIsPolicyViolation(t *testing.T) {
	client, _ := serveConn(t, 8, func(*Conn, protocol.Envelope) error { return nil })

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","from":"alice"`)))
	assert.Equal(t, websocket.ClosePolicyViolation, readCloseCode(t, client))
}

func TestConn_BinaryFrameIsPolicyViolation(t *testing.T) {
	client, _ := serveConn(t, 8, func(*Conn, protocol.Envelope) error { return nil })

	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))
	assert.Equal(t, websocket.ClosePolicyViolation, readCloseCode(t, client))
}

func TestConn_HandlerErrorClosesWithReason(t *testing.T) {
	client, _ := serveConn(t, 8, func(*Conn, protocol.Envelope) error {
		return common.ErrProtocolViolation
	})

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","from":"mallory","to":"bob","message":"x"}`)))
	assert.Equal(t, websocket.ClosePolicyViolation, readCloseCode(t, client))
}

func TestConn_SupersededCloseCode(t *testing.T) {
	client, c := serveConn(t, 8, func(*Conn, protocol.Envelope) error { return nil })

	c.Close(common.ErrConnectionSuperseded)
	assert.Equal(t, CloseSuperseded, readCloseCode(t, client))
}

func TestConn_ShutdownCloseCode(t *testing.T) {
	client, c := serveConn(t, 8, func(*Conn, protocol.Envelope) error { return nil })

	c.Close(common.ErrConnectionClosed)
	assert.Equal(t, websocket.CloseGoingAway, readCloseCode(t, client))
}

func TestConn_SendNeverBlocks(t *testing.T) {
	// no pumps: nothing drains the queue
	c := NewConn(nil, "alice", 1, logging.Nop())

	require.NoError(t, c.Send(protocol.NewMessage("bob", "alice", "1")))

	done := make(chan error, 1)
	go func() { done <- c.Send(protocol.NewMessage("bob", "alice", "2")) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, common.ErrConnectionClosed)
		assert.ErrorIs(t, err, ErrSlowConsumer)
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}

	assert.ErrorIs(t, c.closeReason(), ErrSlowConsumer)
	assert.ErrorIs(t, c.Send(protocol.NewMessage("bob", "alice", "3")), common.ErrConnectionClosed)
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	c := NewConn(nil, "alice", 1, logging.Nop())
	c.Close(common.ErrConnectionSuperseded)
	c.Close(common.ErrConnectionClosed)
	assert.ErrorIs(t, c.closeReason(), common.ErrConnectionSuperseded)
}

func TestCloseFrame(t *testing.T) {
	code := func(reason error) int {
		b := closeFrame(reason)
		return int(b[0])<<8 | int(b[1])
	}
	assert.Equal(t, websocket.CloseNormalClosure, code(nil))
	assert.Equal(t, websocket.ClosePolicyViolation, code(common.ErrProtocolViolation))
	assert.Equal(t, CloseSuperseded, code(common.ErrConnectionSuperseded))
	assert.Equal(t, websocket.CloseTryAgainLater, code(ErrSlowConsumer))
	assert.Equal(t, websocket.CloseGoingAway, code(common.ErrConnectionClosed))
	assert.Equal(t, websocket.CloseInternalServerErr, code(errors.New("boom")))
}
