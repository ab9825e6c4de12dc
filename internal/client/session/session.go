// Package session runs one client chat connection: a single dispatch loop
// owns the transport writes and the Conversation Store, fed by inbound
// frames and by commands from the UI.
package session

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/conversation"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
)

const eventBuffer = 64

// Event is something the UI should react to.
type Event interface{ isEvent() }

// EventMessage is an inbound chat message. Notify is set when it comes from
// a peer other than the selected one.
type EventMessage struct {
	Envelope protocol.Envelope
	Notify   bool
}

// EventOffline reports that a message was not delivered. Offline frames do
// not name the recipient, so Peer is the recipient of the most recent send
// and Text is the gateway's notice.
type EventOffline struct {
	Peer string
	Text string
}

// EventClosed is always the last event. Err is nil after Close.
type EventClosed struct {
	Err error
}

func (EventMessage) isEvent() {}
func (EventOffline) isEvent() {}
func (EventClosed) isEvent()  {}

type inputKind int

const (
	inputFrame inputKind = iota
	inputTransportError
	inputSend
	inputSelect
	inputHistory
	inputClose
)

type input struct {
	kind  inputKind
	env   protocol.Envelope
	err   error
	peer  string
	body  string
	reply chan []protocol.Envelope
}

type Session struct {
	transport Transport
	store     *conversation.Store
	events    chan Event
	logger    logging.Logger

	// lastTo is owned by the dispatch loop.
	lastTo string

	mu     sync.Mutex
	queue  []input
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

func New(t Transport, self string, l logging.Logger) *Session {
	return &Session{
		transport: t,
		store:     conversation.New(self),
		events:    make(chan Event, eventBuffer),
		logger:    l.With("module", "session", "identity", self),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (s *Session) Self() string { return s.store.Self() }

// Events is closed after EventClosed has been delivered.
func (s *Session) Events() <-chan Event { return s.events }

// Done is closed when the dispatch loop has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// push queues in for the dispatch loop. It never blocks; after the loop has
// stopped inputs are dropped.
func (s *Session) push(in input) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, in)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

func (s *Session) drain() []input {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}

// Send queues a message to peer. The delivery outcome arrives later as an
// EventOffline, or not at all when delivered.
func (s *Session) Send(to, body string) {
	s.push(input{kind: inputSend, peer: to, body: body})
}

// Select brings peer into view, clearing its unread flag.
func (s *Session) Select(peer string) {
	s.push(input{kind: inputSelect, peer: peer})
}

// History returns the conversation with peer as seen by this session.
func (s *Session) History(ctx context.Context, peer string) ([]protocol.Envelope, error) {
	reply := make(chan []protocol.Envelope, 1)
	if !s.push(input{kind: inputHistory, peer: peer, reply: reply}) {
		return nil, common.ErrConnectionClosed
	}

	select {
	case msgs := <-reply:
		return msgs, nil
	case <-s.done:
		return nil, common.ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close ends the session. The loop emits EventClosed{nil} and stops.
func (s *Session) Close() {
	s.push(input{kind: inputClose})
}

// Run reads frames and dispatches inputs until Close, a transport failure
// or ctx cancellation. It blocks until the loop has stopped.
func (s *Session) Run(ctx context.Context) {
	go s.readLoop()

	err := s.dispatch(ctx)

	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	if cerr := s.transport.Close(); cerr != nil {
		s.logger.Debug(ctx, "transport close", "error", cerr)
	}

	s.events <- EventClosed{Err: err}
	close(s.events)
	close(s.done)
}

func (s *Session) readLoop() {
	for {
		env, err := s.transport.ReadEnvelope()
		if err != nil {
			s.push(input{kind: inputTransportError, err: err})
			return
		}
		s.push(input{kind: inputFrame, env: env})
	}
}

func (s *Session) dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}

		for _, in := range s.drain() {
			stop, err := s.handle(ctx, in)
			if stop {
				return err
			}
		}
	}
}

// handle processes one input; stop reports that the loop must end with err.
func (s *Session) handle(ctx context.Context, in input) (stop bool, err error) {
	switch in.kind {
	case inputFrame:
		s.onFrame(ctx, in.env)
	case inputTransportError:
		s.logger.Info(ctx, "connection lost", "error", in.err)
		return true, in.err
	case inputSend:
		env := protocol.NewMessage(s.store.Self(), in.peer, in.body)
		if err := s.transport.WriteEnvelope(env); err != nil {
			s.logger.Warn(ctx, "send failed", "to", in.peer, "error", err)
			return true, err
		}
		s.lastTo = in.peer
		s.store.Append(env)
	case inputSelect:
		s.store.Select(in.peer)
	case inputHistory:
		in.reply <- slices.Collect(s.store.Get(in.peer))
	case inputClose:
		return true, nil
	}
	return false, nil
}

func (s *Session) onFrame(ctx context.Context, env protocol.Envelope) {
	switch env.Kind {
	case protocol.KindMessage:
		notify := s.store.Append(env)
		s.emit(ctx, EventMessage{Envelope: env, Notify: notify})
	case protocol.KindOffline:
		s.emit(ctx, EventOffline{Peer: s.lastTo, Text: env.Body})
	}
}

func (s *Session) emit(ctx context.Context, e Event) {
	select {
	case s.events <- e:
	case <-ctx.Done():
	}
}
