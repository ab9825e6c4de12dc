// Package ws binds gorilla/websocket connections to identities: one read
// loop, one write loop and a bounded outbound queue per connection.
package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	DefaultSendBuffer = 256
)

// CloseSuperseded is sent to a connection replaced by a newer one for the
// same identity.
const CloseSuperseded = 4000

// ErrSlowConsumer closes a connection whose outbound queue is full.
var ErrSlowConsumer = errors.New("send buffer full")

// closeFrame picks the close code and text for a close reason.
func closeFrame(reason error) []byte {
	switch {
	case reason == nil:
		return websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	case errors.Is(reason, common.ErrProtocolViolation):
		return websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "protocol violation")
	case errors.Is(reason, common.ErrConnectionSuperseded):
		return websocket.FormatCloseMessage(CloseSuperseded, "superseded")
	case errors.Is(reason, ErrSlowConsumer):
		return websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "slow consumer")
	case errors.Is(reason, common.ErrConnectionClosed):
		return websocket.FormatCloseMessage(websocket.CloseGoingAway, "going away")
	default:
		return websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "")
	}
}

// Conn is a registry.Connection over a WebSocket.
type Conn struct {
	id       string
	identity string
	ws       *websocket.Conn
	logger   logging.Logger

	send chan protocol.Envelope
	done chan struct{}

	mu     sync.Mutex
	closed bool
	reason error
}

func NewConn(ws *websocket.Conn, identity string, sendBuffer int, l logging.Logger) *Conn {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	id := uuid.NewString()
	return &Conn{
		id:       id,
		identity: identity,
		ws:       ws,
		logger:   l.With("module", "ws", "identity", identity, "conn_id", id),
		send:     make(chan protocol.Envelope, sendBuffer),
		done:     make(chan struct{}),
	}
}

func (c *Conn) ID() string       { return c.id }
func (c *Conn) Identity() string { return c.identity }

// Send queues env without blocking. A full queue closes the connection.
func (c *Conn) Send(env protocol.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return common.ErrConnectionClosed
	}
	select {
	case c.send <- env:
		return nil
	default:
		c.closeLocked(ErrSlowConsumer)
		return fmt.Errorf("%w: %w", common.ErrConnectionClosed, ErrSlowConsumer)
	}
}

// Close asks the write loop to send a close frame for reason and drop the
// connection. Only the first call has an effect.
func (c *Conn) Close(reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked(reason)
}

func (c *Conn) closeLocked(reason error) {
	if c.closed {
		return
	}
	c.closed = true
	c.reason = reason
	close(c.done)
}

func (c *Conn) closeReason() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Serve runs both loops until the connection ends and returns the close
// reason (nil when the peer went away). onEnvelope sees envelopes in arrival
// order; a non-nil error from it closes the connection with that reason.
// A frame that does not decode is a protocol violation.
func (c *Conn) Serve(ctx context.Context, onEnvelope func(context.Context, protocol.Envelope) error) error {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump(ctx)
	}()

	c.readPump(ctx, onEnvelope)

	c.Close(nil)
	<-writerDone
	return c.closeReason()
}

func (c *Conn) readPump(ctx context.Context, onEnvelope func(context.Context, protocol.Envelope) error) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn(ctx, "websocket read error", "error", err)
			}
			return
		}

		if msgType != websocket.TextMessage {
			c.Close(fmt.Errorf("%w: binary frame", common.ErrProtocolViolation))
			return
		}

		env, err := protocol.Decode(data)
		if err != nil {
			c.logger.Info(ctx, "malformed frame", "error", err)
			c.Close(fmt.Errorf("%w: %w", common.ErrProtocolViolation, err))
			return
		}

		if err := onEnvelope(ctx, env); err != nil {
			c.logger.Info(ctx, "closing connection", "error", err)
			c.Close(err)
			return
		}
	}
}

func (c *Conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case env := <-c.send:
			data, err := protocol.Encode(env)
			if err != nil {
				c.logger.Error(ctx, "failed to encode envelope", "error", err)
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug(ctx, "write failed", "error", err)
				c.Close(nil)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close(nil)
				return
			}

		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage, closeFrame(c.closeReason()), time.Now().Add(writeWait))
			return
		}
	}
}
