// Package protocol defines the chat envelope and its JSON wire frame, shared
// by the gateway and the client.
//
// One frame carries one envelope:
//
//	{"type":"message","from":"alice","to":"bob","message":"hi"}
//	{"type":"offline","message":"bob is offline"}
//
// "offline" frames are produced by the gateway only and go back to the
// sender of an undeliverable message. They name no endpoints; the notice
// text is all the client gets.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind discriminates envelopes.
type Kind string

const (
	KindMessage Kind = "message"
	KindOffline Kind = "offline"
)

// ErrMalformed wraps every decoding failure.
var ErrMalformed = errors.New("malformed frame")

// Envelope is one routed unit of chat content or a synthesized non-delivery
// notice.
//
// SentAt is never put on the wire; each side stamps it locally when the
// envelope is created or observed.
type Envelope struct {
	Kind Kind
	From string
	To   string
	Body string

	SentAt time.Time
}

// NewMessage builds a client-originated message envelope.
func NewMessage(from, to, body string) Envelope {
	return Envelope{Kind: KindMessage, From: from, To: to, Body: body, SentAt: time.Now()}
}

// OfflineNotice builds the notice returned to sender when recipient has no
// live connection.
func OfflineNotice(sender, recipient string) Envelope {
	return Envelope{
		Kind:   KindOffline,
		To:     sender,
		Body:   recipient + " is offline",
		SentAt: time.Now(),
	}
}

type frame struct {
	Type    Kind   `json:"type"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Message string `json:"message"`
}

// Encode renders env as a single JSON frame.
func Encode(env Envelope) ([]byte, error) {
	f := frame{Type: env.Kind, Message: env.Body}
	switch env.Kind {
	case KindMessage:
		f.From, f.To = env.From, env.To
	case KindOffline:
	default:
		return nil, fmt.Errorf("unknown envelope kind %q", env.Kind)
	}
	return json.Marshal(f)
}

// Decode parses exactly one frame. Unknown fields, trailing data, unknown
// types and message frames without both endpoints are rejected with an
// error wrapping ErrMalformed.
func Decode(data []byte) (Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var f frame
	if err := dec.Decode(&f); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return Envelope{}, fmt.Errorf("%w: trailing data", ErrMalformed)
	}

	env := Envelope{Kind: f.Type, Body: f.Message, SentAt: time.Now()}

	switch f.Type {
	case KindMessage:
		if f.From == "" || f.To == "" {
			return Envelope{}, fmt.Errorf("%w: message needs from and to", ErrMalformed)
		}
		env.From, env.To = f.From, f.To
	case KindOffline:
		if f.From != "" || f.To != "" {
			return Envelope{}, fmt.Errorf("%w: offline frames carry no endpoints", ErrMalformed)
		}
	default:
		return Envelope{}, fmt.Errorf("%w: unknown type %q", ErrMalformed, f.Type)
	}

	return env, nil
}
