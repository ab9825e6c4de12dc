package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// closeSuperseded is the gateway's close code for a connection replaced
	// by a newer one for the same identity.
	closeSuperseded = 4000
)

// Transport carries envelopes over one live connection. ReadEnvelope is
// called from a single goroutine, WriteEnvelope from another; Close may be
// called from anywhere and unblocks ReadEnvelope.
type Transport interface {
	ReadEnvelope() (protocol.Envelope, error)
	WriteEnvelope(env protocol.Envelope) error
	Close() error
}

// WSTransport is a Transport over a gorilla/websocket client connection.
type WSTransport struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

// WebSocketURL turns the gateway base URL into the endpoint for identity.
func WebSocketURL(base, identity string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url scheme %q", u.Scheme)
	}
	u.Path = "/ws/" + url.PathEscape(identity)
	u.RawQuery = ""
	return u.String(), nil
}

// Dial opens the session connection for identity, authenticating with token.
// A refused handshake is reported with the matching common error.
func Dial(ctx context.Context, base, identity, token string, timeout time.Duration) (*WSTransport, error) {
	endpoint, err := WebSocketURL(base, identity)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint, http.Header{common.TokenHeaderName: {token}})
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, fmt.Errorf("%w: handshake %s", common.ErrorUnauthorized, resp.Status)
			case http.StatusServiceUnavailable:
				return nil, fmt.Errorf("%w: handshake %s", common.ErrAuthorityUnavailable, resp.Status)
			}
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return NewWSTransport(conn), nil
}

func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

func (t *WSTransport) ReadEnvelope() (protocol.Envelope, error) {
	for {
		mt, data, err := t.conn.ReadMessage()
		if err != nil {
			return protocol.Envelope{}, closeReason(err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		return protocol.Decode(data)
	}
}

func (t *WSTransport) WriteEnvelope(env protocol.Envelope) error {
	data, err := protocol.Encode(env)
	if err != nil {
		return err
	}
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return closeReason(err)
	}
	return nil
}

// Close sends a normal closure frame and closes the socket. Only the first
// call has an effect.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = t.conn.Close()
	})
	return err
}

// closeReason maps the gateway's close codes onto common errors.
func closeReason(err error) error {
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		return err
	}
	switch ce.Code {
	case closeSuperseded:
		return fmt.Errorf("%w: %s", common.ErrConnectionSuperseded, ce.Text)
	case websocket.ClosePolicyViolation:
		return fmt.Errorf("%w: %s", common.ErrProtocolViolation, ce.Text)
	case websocket.CloseNormalClosure, websocket.CloseGoingAway:
		return fmt.Errorf("%w: %w", common.ErrConnectionClosed, err)
	default:
		return err
	}
}
