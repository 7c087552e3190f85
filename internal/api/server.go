// Package api exposes the HTTP surface: immediate sends, scheduling, listing
// and cancelling scheduled messages.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crystaldolphin/msgscheduler/internal/config/server"
	"github.com/crystaldolphin/msgscheduler/internal/logx"
	"github.com/crystaldolphin/msgscheduler/internal/schedule"
)

// Jobs is the scheduled-message registry as seen by the handlers.
type Jobs interface {
	Schedule(destination, text, fireAt string) (string, error)
	List() []schedule.Job
	Cancel(id string) error
	Len() int
}

// Sender delivers immediate messages. Ready reports whether the underlying
// channel is connected.
type Sender interface {
	Deliver(ctx context.Context, destination, text string) error
	Ready() bool
	SenderChannel() string
}

// Server is the HTTP front end.
type Server struct {
	cfg     server.ServerConfig
	jobs    Jobs
	sender  Sender
	log     logx.Logger
	engine  *gin.Engine
	started time.Time
}

// NewServer builds the gin engine and routes. reg receives the HTTP
// collectors and gatherer backs GET /metrics; either may be nil.
func NewServer(
	cfg server.ServerConfig,
	jobs Jobs,
	sender Sender,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
	log logx.Logger,
) *Server {
	s := &Server{
		cfg:     cfg,
		jobs:    jobs,
		sender:  sender,
		log:     log,
		engine:  gin.New(),
		started: time.Now(),
	}
	// Job ids embed the destination, which may contain an escaped '/'.
	s.engine.UseRawPath = true
	s.engine.UnescapePathValues = true

	var m *httpMetrics
	if reg != nil {
		m = newHTTPMetrics(reg)
	}
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestLogger(log, m))
	if h := corsMiddleware(cfg.AllowOrigins); h != nil {
		s.engine.Use(h)
	}
	s.setupRoutes(gatherer)
	return s
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.engine.POST("/send-message", s.handleSendMessage)
	s.engine.POST("/schedule-message", s.handleScheduleMessage)

	scheduled := s.engine.Group("/scheduled-messages")
	{
		scheduled.GET("", s.handleListScheduled)
		scheduled.DELETE("/:id", s.handleCancelScheduled)
	}

	s.engine.GET("/healthz", s.handleHealth)
	if gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("api: listen %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadTimeout:       s.cfg.ReadTimeoutDuration(),
		ReadHeaderTimeout: s.cfg.ReadTimeoutDuration(),
		WriteTimeout:      s.cfg.WriteTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("api: listening", logx.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	s.log.Info("api: stopped")
	return ctx.Err()
}
