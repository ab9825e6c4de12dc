package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/client/session"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

// watchEvents prints session events until the session ends and returns the
// reason it ended.
func (a *App) watchEvents(s *session.Session) error {
	var closeErr error
	for ev := range s.Events() {
		switch e := ev.(type) {
		case session.EventMessage:
			env := e.Envelope
			if e.Notify {
				printlnFn(fmt.Sprintf("* new message from %s: %s", env.From, env.Body))
				continue
			}
			printlnFn(fmt.Sprintf("[%s] %s: %s", env.SentAt.Format("15:04"), env.From, env.Body))
		case session.EventOffline:
			printlnFn(fmt.Sprintf("! %s", e.Text))
		case session.EventClosed:
			closeErr = e.Err
			printlnFn(closedMessage(e.Err))
		}
	}
	return closeErr
}

func closedMessage(err error) string {
	switch {
	case err == nil:
		return "Disconnected."
	case errors.Is(err, common.ErrConnectionSuperseded):
		return "Disconnected: signed in from another place."
	case errors.Is(err, common.ErrProtocolViolation):
		return "Disconnected by server: protocol violation."
	case errors.Is(err, common.ErrConnectionClosed):
		return "Disconnected: server is going away."
	default:
		return fmt.Sprintf("Connection lost: %v", err)
	}
}
