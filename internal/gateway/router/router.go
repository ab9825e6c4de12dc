// Package router delivers chat envelopes between registered connections and
// reports undeliverable ones back to their sender.
package router

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/gateway/registry"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

type Outcome int

const (
	Delivered Outcome = iota
	Offline
)

func (o Outcome) String() string {
	if o == Delivered {
		return "delivered"
	}
	return "offline"
}

type directory interface {
	Lookup(identity string) (registry.Connection, bool)
}

// Router has no queue and never retries: an envelope is forwarded at most
// once, at the moment it is routed.
type Router struct {
	directory directory
	logger    logging.Logger
	metrics   *routerMetrics
}

func New(d directory, l logging.Logger, reg prometheus.Registerer) *Router {
	return &Router{
		directory: d,
		logger:    l.With("module", "router"),
		metrics:   newRouterMetrics(reg),
	}
}

// Route forwards env from sender to its recipient.
//
// An envelope that is not a message, or whose From differs from the
// sender's identity, is rejected with common.ErrProtocolViolation and nothing
// is forwarded. When the recipient has no live connection, or its connection
// refuses the envelope, the sender alone gets an offline notice and the
// outcome is Offline.
func (r *Router) Route(ctx context.Context, sender registry.Connection, env protocol.Envelope) (Outcome, error) {
	if env.Kind != protocol.KindMessage {
		r.metrics.violation("kind")
		return 0, fmt.Errorf("%w: clients may not send %q frames", common.ErrProtocolViolation, env.Kind)
	}
	if env.From != sender.Identity() {
		r.metrics.violation("spoofed_from")
		return 0, fmt.Errorf("%w: from %q on connection of %q", common.ErrProtocolViolation, env.From, sender.Identity())
	}
	if env.To == "" {
		r.metrics.violation("no_recipient")
		return 0, fmt.Errorf("%w: missing recipient", common.ErrProtocolViolation)
	}

	if recipient, ok := r.directory.Lookup(env.To); ok {
		err := recipient.Send(env)
		if err == nil {
			r.metrics.outcome(Delivered)
			r.logger.Debug(ctx, "delivered", "from", env.From, "to", env.To, "conn_id", recipient.ID())
			return Delivered, nil
		}
		r.logger.Warn(ctx, "recipient refused envelope", "to", env.To, "conn_id", recipient.ID(), "error", err)
	}

	notice := protocol.OfflineNotice(env.From, env.To)
	if err := sender.Send(notice); err != nil {
		r.logger.Debug(ctx, "offline notice not sent", "to", env.From, "error", err)
	}
	r.metrics.outcome(Offline)
	return Offline, nil
}
