package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/mini/pkg/element"
	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/host"
	"github.com/vango-dev/mini/pkg/metrics"
	"github.com/vango-dev/mini/pkg/tracing"
)

// Server is the HTTP/WebSocket server for mini applications.
type Server struct {
	app      func() *element.Element
	config   *ServerConfig
	sessions *SessionManager
	upgrader websocket.Upgrader
	router   chi.Router
	logger   *slog.Logger

	// Prometheus
	registry *prometheus.Registry
	engines  *metrics.Observer
	active   prometheus.Gauge
	created  prometheus.Counter

	// Session lifetime
	sessCtx    context.Context
	sessCancel context.CancelFunc
	mu         sync.Mutex
	closing    bool
	wg         sync.WaitGroup

	httpServer *http.Server
}

// New creates a server that renders app for every connection. Unset config
// fields take their defaults.
func New(app func() *element.Element, config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		config = config.Clone()
	}
	config.applyDefaults()

	logger := config.Logger.With("component", "server")
	if err := config.ValidateConfig(); err != nil {
		logger.Error("config validation failed", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sessionGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mini",
		Name:      "active_sessions",
		Help:      "Number of connected sessions",
	})
	sessionCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mini",
		Name:      "sessions_total",
		Help:      "Total number of sessions created",
	})
	reg.MustRegister(sessionGauge, sessionCounter)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app:      app,
		config:   config,
		sessions: NewSessionManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:     logger,
		registry:   reg,
		engines:    metrics.New(metrics.WithRegistry(reg)),
		active:     sessionGauge,
		created:    sessionCounter,
		sessCtx:    ctx,
		sessCancel: cancel,
	}
	s.sessions.SetOnSessionCreate(func(*Session) {
		s.active.Inc()
		s.created.Inc()
	})
	s.sessions.SetOnSessionClose(func(*Session) {
		s.active.Dec()
	})
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.servePage)
	r.Get("/client.js", s.serveClient)
	r.Get("/ws", s.HandleWebSocket)
	r.Get("/healthz", s.serveHealth)
	if s.config.MetricsPath != "" {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
			Registry: s.registry,
		}))
	}
	return r
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HandleWebSocket upgrades the connection and serves a session on it until
// the client leaves or the server shuts down.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.SessionConfig.MaxMessageSize)

	sess := newSession(conn, s.config.SessionConfig, s.logger, sessionOptions{
		wrapHost: func(h host.Host) host.Host {
			return metrics.InstrumentHost(s.engines, h)
		},
		observers: s.sessionObservers,
	})
	s.sessions.Add(sess)
	defer s.sessions.Remove(sess.ID)

	s.logger.Info("session started", "session_id", sess.ID, "remote", r.RemoteAddr)
	sess.Mount(s.app())
	if err := sess.Run(s.sessCtx); err != nil {
		s.logger.Error("session failed", "session_id", sess.ID, "error", err)
	}
}

func (s *Server) sessionObservers(id string) []fiber.Observer {
	obs := []fiber.Observer{s.engines}
	if s.config.TracerName != "" {
		obs = append(obs, tracing.NewObserver(
			tracing.WithTracerName(s.config.TracerName),
			tracing.WithAttributes(attribute.String("mini.session", id)),
		))
	}
	return obs
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.config.ValidateConfig(); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or Shutdown is called.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		s.logger.Info("server starting", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer stop()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown closes every session, stops the HTTP server and waits for
// session goroutines to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	srv := s.httpServer
	s.mu.Unlock()

	s.sessCancel()

	var err error
	if srv != nil {
		if err = srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("server shutdown complete")
	return err
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Registry returns the Prometheus registry served at the metrics path.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}
