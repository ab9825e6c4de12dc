package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/api"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophchat/internal/client/session"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

type apiClient interface {
	CheckUsername(ctx context.Context, username string) (bool, error)
	SignUp(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (api.Session, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (string, error)
	Users(ctx context.Context, token string) ([]api.User, error)
}

type credentialStore interface {
	Save(ctx context.Context, c metadata.Credential) error
	Load(ctx context.Context) (metadata.Credential, bool, error)
	Clear(ctx context.Context) error
}

// dialTransport is a test seam for session.Dial.
var dialTransport = func(ctx context.Context, base, identity, token string, timeout time.Duration) (session.Transport, error) {
	return session.Dial(ctx, base, identity, token, timeout)
}

type App struct {
	config *config.Config
	api    apiClient
	creds  credentialStore
	db     *sql.DB
	logger logging.Logger
	reader *bufio.Reader

	userName string
	token    string
	peer     string
	session  *session.Session
	watching chan struct{}
	// closeErr is written by the event watcher before watching is closed.
	closeErr error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := metadata.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	return &App{
		config: c,
		api:    api.New(c.ServerURL, c.DialTimeout),
		creds:  metadata.NewCredentialStore(db),
		db:     db,
		logger: logging.NewText(os.Stderr, "warn"),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores a cached credential if it is still valid, then serves the
// REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.shutdown()

	printlnFn("Welcome to gophchat (type 'help' for commands)")
	a.restore(ctx)

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) shutdown() {
	a.disconnect()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool { return a.token != "" }

func (a *App) hasPeer() bool { return a.peer != "" }

func (a *App) connected() bool {
	if a.session == nil {
		return false
	}
	select {
	case <-a.session.Done():
		return false
	default:
		return true
	}
}

func (a *App) status() string {
	switch {
	case !a.isLoggedIn():
		return ""
	case !a.connected():
		return fmt.Sprintf("(%s offline)", a.userName)
	case a.peer != "":
		return fmt.Sprintf("(%s → %s)", a.userName, a.peer)
	default:
		return fmt.Sprintf("(%s)", a.userName)
	}
}

// restore picks up the credential saved by a previous run. An expired or
// revoked one is dropped; an unreachable server keeps it for next time.
func (a *App) restore(ctx context.Context) {
	cred, ok, err := a.creds.Load(ctx)
	if err != nil {
		a.logger.Warn(ctx, "cannot read cached credential", "error", err)
		return
	}
	if !ok {
		return
	}

	name, err := a.api.Verify(ctx, cred.AccessToken)
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		printlnFn("Saved session has expired, please log in.")
		if err := a.creds.Clear(ctx); err != nil {
			a.logger.Warn(ctx, "cannot clear cached credential", "error", err)
		}
		return
	case err != nil:
		printlnFn("Server unavailable:", err)
		return
	}

	a.userName, a.token = name, cred.AccessToken
	printlnFn("Welcome back,", name)
	a.connect(ctx)
}

// connect opens the chat session for the current credential and starts
// printing its events.
func (a *App) connect(ctx context.Context) {
	a.disconnect()

	t, err := dialTransport(ctx, a.config.ServerURL, a.userName, a.token, a.config.DialTimeout)
	if err != nil {
		printlnFn("Cannot connect:", err)
		return
	}

	s := session.New(t, a.userName, a.logger)
	watching := make(chan struct{})
	a.session, a.watching, a.closeErr = s, watching, nil
	go s.Run(ctx)
	go func() {
		defer close(watching)
		a.closeErr = a.watchEvents(s)
	}()

	if a.peer != "" {
		s.Select(a.peer)
	}
}

// superseded reports whether the last session ended because the same user
// connected from somewhere else.
func (a *App) superseded() bool {
	if a.session == nil || a.connected() {
		return false
	}
	<-a.watching
	return errors.Is(a.closeErr, common.ErrConnectionSuperseded)
}

func (a *App) disconnect() {
	if a.session == nil {
		return
	}
	a.session.Close()
	<-a.session.Done()
	<-a.watching
	a.session, a.watching = nil, nil
}
