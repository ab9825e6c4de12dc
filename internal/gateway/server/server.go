// Package server assembles the gateway: gated pages, the REST API, the
// WebSocket endpoint and metrics on one gin engine.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/authapi"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/gateway/access"
	"github.com/dmitrijs2005/gophchat/internal/gateway/registry"
	"github.com/dmitrijs2005/gophchat/internal/gateway/router"
	"github.com/dmitrijs2005/gophchat/internal/gateway/verifier"
	"github.com/dmitrijs2005/gophchat/internal/gateway/ws"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

// authority is the subset of authapi.Client used by the API handlers.
type authority interface {
	Register(ctx context.Context, in *authapi.RegisterRequest, opts ...grpc.CallOption) (*authapi.RegisterResponse, error)
	Login(ctx context.Context, in *authapi.LoginRequest, opts ...grpc.CallOption) (*authapi.LoginResponse, error)
	Logout(ctx context.Context, in *authapi.LogoutRequest, opts ...grpc.CallOption) (*authapi.LogoutResponse, error)
	ListUsers(ctx context.Context, in *authapi.ListUsersRequest, opts ...grpc.CallOption) (*authapi.ListUsersResponse, error)
	UsernameExists(ctx context.Context, in *authapi.UsernameExistsRequest, opts ...grpc.CallOption) (*authapi.UsernameExistsResponse, error)
}

type Options struct {
	Cookies    access.Cookies
	SendBuffer int
}

type Server struct {
	address   string
	authority authority
	verifier  verifier.Verifier
	registry  *registry.Registry
	cookies   access.Cookies
	engine    *gin.Engine
	logger    logging.Logger
}

func New(address string, auth authority, v verifier.Verifier, opts Options, l logging.Logger) *Server {
	l = l.With("module", "gateway")

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	reg := registry.New(l, promReg)
	rt := router.New(reg, l, promReg)

	s := &Server{
		address:   address,
		authority: auth,
		verifier:  v,
		registry:  reg,
		cookies:   opts.Cookies,
		logger:    l,
	}

	gate := access.NewGate(v, opts.Cookies, l, promReg)
	wsHandler := ws.NewHandler(v, reg, rt, opts.SendBuffer, l)

	s.engine = s.routes(gate, wsHandler, promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	return s
}

func (s *Server) routes(gate *access.Gate, wsHandler *ws.Handler, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/hs", s.health)
	r.GET("/metrics", gin.WrapH(metrics))

	// outside the gate: an outage must be able to reach it
	r.GET(access.OutagePath, s.page)

	pages := r.Group("/", gate.Pages())
	{
		pages.GET("/", s.page)
		pages.GET("/login", s.page)
		pages.GET("/sign-up", s.page)
		pages.GET("/verify/:username", s.page)
		pages.GET("/chat/:username", s.page)
		pages.GET("/profile", s.page)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/checkUsername", s.checkUsername)
		api.POST("/signUp", s.signUp)
		api.POST("/login", s.login)
		api.GET("/logout", s.logout)
		api.GET("/verify_access_token", s.verifyAccessToken)
		api.GET("/getUsers", gate.RequireIdentity(access.Credential), s.getUsers)
	}

	r.GET("/ws/:identity", wsHandler.Serve)

	return r
}

func (s *Server) Handler() http.Handler { return s.engine }

// Registry exposes the live connections, mainly for tests.
func (s *Server) Registry() *registry.Registry { return s.registry }

// Run serves until ctx is cancelled, then closes every WebSocket with
// "going away" and shuts the HTTP server down.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gateway...")
		s.registry.CloseAll(common.ErrConnectionClosed)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "gateway shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting gateway", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
