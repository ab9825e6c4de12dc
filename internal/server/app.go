// Package server wires and runs the chat server: the credential authority
// (gRPC) and the session gateway (HTTP and WebSocket) in one process.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophchat/internal/authapi"
	"github.com/dmitrijs2005/gophchat/internal/gateway/access"
	gw "github.com/dmitrijs2005/gophchat/internal/gateway/server"
	"github.com/dmitrijs2005/gophchat/internal/gateway/verifier"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	gs "github.com/dmitrijs2005/gophchat/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	rdb         *redis.Client
	authConn    *grpc.ClientConn
	repoManager repomanager.RepositoryManager
	authority   *gs.GRPCServer
	gateway     *gw.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, "info")

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	var (
		rdb     *redis.Client
		revoked revocations.Repository
	)
	if c.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		revoked = revocations.NewRedisRepository(rdb)
	} else {
		revoked = revocations.NewMemoryRepository()
	}

	rm := repomanager.NewPostgresRepositoryManager()
	us := services.NewUserService(db, rm, revoked, c)

	conn, err := grpc.NewClient(c.AuthorityAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("authority client error: %w", err)
	}
	client := authapi.NewClient(conn)

	gateway := gw.New(c.HTTPAddr, client, verifier.NewAuthorityVerifier(client, c.VerifyTimeout, logger), gw.Options{
		Cookies: access.Cookies{
			Secure: c.SecureCookies,
			MaxAge: int(c.AccessTokenValidityDuration.Seconds()),
		},
		SendBuffer: c.SendBufferSize,
	}, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		rdb:         rdb,
		authConn:    conn,
		repoManager: rm,
		authority:   gs.NewGRPCServer(c.GRPCAddr, logger, us),
		gateway:     gateway,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startAuthority(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.authority.Run(ctx); err != nil {
		app.logger.Error(ctx, "authority stopped", "error", err)
		cancelFunc()
	}
}

func (app *App) startGateway(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.gateway.Run(ctx); err != nil {
		app.logger.Error(ctx, "gateway stopped", "error", err)
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if err := app.authConn.Close(); err != nil {
		app.logger.Warn(ctx, "authority client close", "error", err)
	}
	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			app.logger.Warn(ctx, "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
}

// Run applies migrations, then serves both listeners until a signal arrives
// or either of them fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close(ctx)

	app.logger.Info(ctx, "Starting app...")

	if err := app.repoManager.RunMigrations(ctx, app.db); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startAuthority(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGateway(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
	return nil
}
