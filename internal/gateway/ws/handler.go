package ws

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/gateway/access"
	"github.com/dmitrijs2005/gophchat/internal/gateway/registry"
	"github.com/dmitrijs2005/gophchat/internal/gateway/respond"
	"github.com/dmitrijs2005/gophchat/internal/gateway/router"
	"github.com/dmitrijs2005/gophchat/internal/gateway/verifier"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type connections interface {
	Register(identity string, c registry.Connection)
	Unregister(identity string, c registry.Connection) bool
}

type envelopeRouter interface {
	Route(ctx context.Context, sender registry.Connection, env protocol.Envelope) (router.Outcome, error)
}

// Handler upgrades GET /ws/:identity after verifying the caller.
type Handler struct {
	verifier   verifier.Verifier
	registry   connections
	router     envelopeRouter
	upgrader   websocket.Upgrader
	sendBuffer int
	logger     logging.Logger
}

func NewHandler(v verifier.Verifier, reg connections, r envelopeRouter, sendBuffer int, l logging.Logger) *Handler {
	return &Handler{
		verifier: v,
		registry: reg,
		router:   r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sendBuffer: sendBuffer,
		logger:     l.With("module", "ws_handler"),
	}
}

// Serve verifies the credential before upgrading: 503 when the authority
// cannot answer, 401 for a bad credential, 403 when the path names someone
// else. The connection is unregistered before Serve returns.
func (h *Handler) Serve(c *gin.Context) {
	ctx := c.Request.Context()
	identity := c.Param("identity")

	res := h.verifier.Verify(ctx, access.Credential(c))
	switch {
	case res.Reason == verifier.ReasonAuthorityUnavailable:
		respond.Abort(c, http.StatusServiceUnavailable, access.ReasonMessage(res.Reason))
		return
	case !res.Valid || res.Identity == "":
		respond.Abort(c, http.StatusUnauthorized, access.ReasonMessage(res.Reason))
		return
	case res.Identity != identity:
		respond.Abort(c, http.StatusForbidden, "identity mismatch")
		return
	}

	wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered
		h.logger.Info(ctx, "upgrade failed", "identity", identity, "error", err)
		return
	}

	conn := NewConn(wsConn, identity, h.sendBuffer, h.logger)
	h.registry.Register(identity, conn)
	defer h.registry.Unregister(identity, conn)

	h.logger.Info(ctx, "connection opened", "identity", identity, "conn_id", conn.ID())

	reason := conn.Serve(ctx, func(ctx context.Context, env protocol.Envelope) error {
		_, err := h.router.Route(ctx, conn, env)
		return err
	})

	h.logger.Info(ctx, "connection closed", "identity", identity, "conn_id", conn.ID(), "reason", reason)
}
