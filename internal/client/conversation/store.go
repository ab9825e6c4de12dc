// Package conversation keeps a client session's message log partitioned by
// peer pair.
package conversation

import (
	"iter"
	"slices"

	"github.com/dmitrijs2005/gophchat/internal/protocol"
)

// Key identifies a two-party conversation regardless of direction.
type Key struct {
	A, B string
}

// KeyOf returns the unordered key for x and y: KeyOf(x, y) == KeyOf(y, x).
func KeyOf(x, y string) Key {
	if y < x {
		x, y = y, x
	}
	return Key{A: x, B: y}
}

// Store is the log of one client session. It is not safe for concurrent use;
// the session's dispatch loop is its only user.
type Store struct {
	self     string
	log      []protocol.Envelope
	index    map[Key][]int
	selected string
	unread   map[string]bool
}

func New(self string) *Store {
	return &Store{
		self:   self,
		index:  make(map[Key][]int),
		unread: make(map[string]bool),
	}
}

func (s *Store) Self() string { return s.self }

// Selected is the peer currently in view, or "".
func (s *Store) Selected() string { return s.selected }

// Append records a message envelope in arrival order and reports whether it
// should surface a notification: it does when it comes from someone other
// than the selected peer. Envelopes of other kinds, and messages that do not
// involve self, are not part of any conversation and are ignored.
func (s *Store) Append(env protocol.Envelope) bool {
	if env.Kind != protocol.KindMessage {
		return false
	}
	if env.From != s.self && env.To != s.self {
		return false
	}

	key := KeyOf(env.From, env.To)
	s.index[key] = append(s.index[key], len(s.log))
	s.log = append(s.log, env)

	if env.From == s.self || env.From == s.selected {
		return false
	}
	s.unread[env.From] = true
	return true
}

// Get yields the conversation with peer in append order. The sequence
// reflects the log at call time and may be ranged over repeatedly.
func (s *Store) Get(peer string) iter.Seq[protocol.Envelope] {
	log := s.log
	positions := s.index[KeyOf(s.self, peer)]

	return func(yield func(protocol.Envelope) bool) {
		for _, i := range positions {
			if !yield(log[i]) {
				return
			}
		}
	}
}

// Select brings peer into view and clears its unread flag.
func (s *Store) Select(peer string) {
	s.selected = peer
	delete(s.unread, peer)
}

func (s *Store) HasUnread(peer string) bool { return s.unread[peer] }

// Unread lists peers with messages not yet viewed, sorted.
func (s *Store) Unread() []string {
	peers := make([]string, 0, len(s.unread))
	for p := range s.unread {
		peers = append(peers, p)
	}
	slices.Sort(peers)
	return peers
}

func (s *Store) Len() int { return len(s.log) }
