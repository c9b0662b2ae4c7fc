package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vango-dev/mini/pkg/fiber"
	"github.com/vango-dev/mini/pkg/idle"
	"github.com/vango-dev/mini/pkg/protocol"
)

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the client.
	// Heartbeats keep an idle connection under this limit.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// Loop configures the idle loop that drives each session's engine.
	Loop idle.LoopConfig

	// EngineOptions are applied to every session's engine, after the
	// session's own logger and observers.
	EngineOptions []fiber.Option
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		Loop:              idle.DefaultLoopConfig(),
	}
}

// Clone returns a copy of the SessionConfig.
func (c *SessionConfig) Clone() *SessionConfig {
	if c == nil {
		return nil
	}
	clone := *c
	clone.EngineOptions = append([]fiber.Option(nil), c.EngineOptions...)
	return &clone
}

// ServerConfig holds configuration for the HTTP/WebSocket server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: ":8080".
	Address string

	// WebSocket buffer sizes
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// SessionConfig is applied to every session.
	SessionConfig *SessionConfig

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// HTTP server timeouts.
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// MetricsPath is where Prometheus metrics are served. Empty disables
	// the endpoint. Default: "/metrics".
	MetricsPath string

	// TracerName names the tracer used for pass spans. Empty disables
	// tracing.
	TracerName string

	// Title is the page title served at "/".
	Title string

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		SessionConfig:     DefaultSessionConfig(),
		ShutdownTimeout:   30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MetricsPath:       "/metrics",
		Title:             "mini",
	}
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}

// Clone returns a copy of the ServerConfig.
func (c *ServerConfig) Clone() *ServerConfig {
	if c == nil {
		return nil
	}
	clone := *c
	clone.SessionConfig = c.SessionConfig.Clone()
	return &clone
}

// WithAddress returns a copy of the config with the given address.
func (c *ServerConfig) WithAddress(addr string) *ServerConfig {
	clone := c.Clone()
	clone.Address = addr
	return clone
}

// applyDefaults fills unset fields from DefaultServerConfig.
func (c *ServerConfig) applyDefaults() {
	def := DefaultServerConfig()
	if c.Address == "" {
		c.Address = def.Address
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = def.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = def.CheckOrigin
	}
	if c.SessionConfig == nil {
		c.SessionConfig = def.SessionConfig
	}
	sc := c.SessionConfig
	if sc.ReadTimeout == 0 {
		sc.ReadTimeout = def.SessionConfig.ReadTimeout
	}
	if sc.WriteTimeout == 0 {
		sc.WriteTimeout = def.SessionConfig.WriteTimeout
	}
	if sc.HeartbeatInterval == 0 {
		sc.HeartbeatInterval = def.SessionConfig.HeartbeatInterval
	}
	if sc.MaxMessageSize == 0 {
		sc.MaxMessageSize = def.SessionConfig.MaxMessageSize
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = def.ReadHeaderTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = def.IdleTimeout
	}
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ValidateConfig reports configuration values the server cannot run with.
func (c *ServerConfig) ValidateConfig() error {
	var errs []error
	sc := c.SessionConfig
	if sc != nil {
		if sc.HeartbeatInterval >= sc.ReadTimeout {
			errs = append(errs, fmt.Errorf("heartbeat interval %s must be shorter than read timeout %s",
				sc.HeartbeatInterval, sc.ReadTimeout))
		}
		if sc.MaxMessageSize > protocol.FrameHeaderSize+protocol.MaxPayloadSize {
			errs = append(errs, fmt.Errorf("max message size %d exceeds the largest frame (%d)",
				sc.MaxMessageSize, protocol.FrameHeaderSize+protocol.MaxPayloadSize))
		}
	}
	if c.MetricsPath != "" && c.MetricsPath[0] != '/' {
		errs = append(errs, fmt.Errorf("metrics path %q must start with /", c.MetricsPath))
	}
	return errors.Join(errs...)
}
