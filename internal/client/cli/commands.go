package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	errNotLoggedIn  = errors.New("not logged in")
	errNotConnected = errors.New("not connected")
)

func (a *App) promptCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// SignUp creates an account. It does not log in. A taken username is
// reported before the password is asked for.
func (a *App) SignUp(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}

	free, err := a.api.CheckUsername(ctx, userName)
	if err != nil {
		printlnFn("Sign up failed:", err)
		return err
	}
	if !free {
		printlnFn(fmt.Sprintf("Username %s is already taken.", userName))
		return common.ErrorAlreadyExists
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.SignUp(ctx, userName, string(password)); err != nil {
		printlnFn("Sign up failed:", err)
		return err
	}

	printlnFn("Account created, you can log in now.")
	return nil
}

// Login authenticates, caches the credential and connects the session.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}

	if err := a.creds.Save(ctx, metadata.Credential{Username: s.Username, AccessToken: s.AccessToken}); err != nil {
		a.logger.Warn(ctx, "cannot cache credential", "error", err)
	}

	a.userName, a.token, a.peer = s.Username, s.AccessToken, ""
	printlnFn("Logged in as", s.Username)
	a.connect(ctx)
	return nil
}

// Logout closes the session, revokes the credential and forgets it locally.
// Local state is cleared even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return errNotLoggedIn
	}

	a.disconnect()

	err := a.api.Logout(ctx, a.token)
	if err != nil {
		printlnFn("Server logout failed:", err)
	}
	if cerr := a.creds.Clear(ctx); cerr != nil {
		a.logger.Warn(ctx, "cannot clear cached credential", "error", cerr)
	}

	a.userName, a.token, a.peer = "", "", ""
	printlnFn("Logged out.")
	return err
}

// Users prints everyone else with their presence.
func (a *App) Users(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return errNotLoggedIn
	}

	users, err := a.api.Users(ctx, a.token)
	if err != nil {
		printlnFn("Cannot list users:", err)
		return err
	}
	if len(users) == 0 {
		printlnFn("Nobody else here yet.")
		return nil
	}

	for _, u := range users {
		state := "offline"
		if u.IsOnline {
			state = "online"
		}
		printlnFn(fmt.Sprintf("  %-20s %s", u.Username, state))
	}
	return nil
}

// Chat selects peer as the conversation in view and prints its history.
func (a *App) Chat(ctx context.Context, peer string) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return errNotLoggedIn
	}
	if peer == "" || peer == a.userName {
		printlnFn("Usage: chat <username>")
		return nil
	}

	a.peer = peer
	if a.connected() {
		a.session.Select(peer)
	}
	return a.History(ctx)
}

// Say sends text to the selected peer.
func (a *App) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	switch {
	case !a.isLoggedIn():
		printlnFn("Please log in first.")
		return errNotLoggedIn
	case a.peer == "":
		printlnFn("Pick a conversation first: chat <username>")
		return nil
	case text == "":
		return nil
	}

	if !a.connected() {
		if a.superseded() {
			printlnFn("You are signed in from another place. Type 'connect' to take this session back.")
			return common.ErrConnectionSuperseded
		}
		a.connect(ctx)
		if !a.connected() {
			return errNotConnected
		}
	}

	a.session.Send(a.peer, text)
	return nil
}

// Connect reopens the chat session, taking it over from any other place the
// user is signed in.
func (a *App) Connect(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return errNotLoggedIn
	}
	if a.connected() {
		printlnFn("Already connected.")
		return nil
	}

	a.connect(ctx)
	if !a.connected() {
		return errNotConnected
	}
	printlnFn("Connected.")
	return nil
}

// History prints the selected conversation as seen by this session.
func (a *App) History(ctx context.Context) error {
	if a.peer == "" {
		printlnFn("Pick a conversation first: chat <username>")
		return nil
	}
	if !a.connected() {
		printlnFn("Not connected.")
		return nil
	}

	msgs, err := a.session.History(ctx, a.peer)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		printlnFn(fmt.Sprintf("No messages with %s yet.", a.peer))
		return nil
	}
	for _, m := range msgs {
		printlnFn(fmt.Sprintf("[%s] %s: %s", m.SentAt.Format("15:04"), m.From, m.Body))
	}
	return nil
}
