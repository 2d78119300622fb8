package core

import (
	"time"
)

// TimeoutConfig configures timeouts for various operations.
type TimeoutConfig struct {
	// ComponentMount is the timeout for component Mount() calls.
	ComponentMount time.Duration

	// ComponentEvent is the timeout for HandleEvent() and HandleInfo() calls.
	ComponentEvent time.Duration

	// WebSocketRead is the read timeout for WebSocket connections.
	WebSocketRead time.Duration

	// WebSocketWrite is the write timeout for WebSocket connections.
	WebSocketWrite time.Duration

	// WebSocketPing is how often the server pings idle connections.
	WebSocketPing time.Duration

	// GracefulShutdown is the timeout for graceful shutdown.
	GracefulShutdown time.Duration
}

// DefaultTimeoutConfig returns default timeout configuration.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		ComponentMount:   5 * time.Second,
		ComponentEvent:   3 * time.Second,
		WebSocketRead:    60 * time.Second,
		WebSocketWrite:   10 * time.Second,
		WebSocketPing:    30 * time.Second,
		GracefulShutdown: 15 * time.Second,
	}
}

// RelaxedTimeoutConfig returns more relaxed timeouts for development.
func RelaxedTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		ComponentMount:   30 * time.Second,
		ComponentEvent:   30 * time.Second,
		WebSocketRead:    300 * time.Second,
		WebSocketWrite:   30 * time.Second,
		WebSocketPing:    30 * time.Second,
		GracefulShutdown: 5 * time.Second,
	}
}

// Config combines the runtime settings used by the router.
type Config struct {
	Timeouts TimeoutConfig

	// AllowedOrigins for WebSocket upgrades. Empty means same-origin only.
	AllowedOrigins []string

	// InsecureDevMode disables origin checks (development only).
	InsecureDevMode bool

	// Codec selects the wire format: "json", "phoenix" or "msgpack".
	Codec string

	Debug bool

	// MaxMessageSize bounds inbound frames.
	MaxMessageSize int64

	// MaxConnections bounds concurrent sockets. Zero means unlimited.
	MaxConnections int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeouts:       DefaultTimeoutConfig(),
		Codec:          "phoenix",
		MaxMessageSize: 64 * 1024,
		MaxConnections: 10000,
	}
}

// DevelopmentConfig returns configuration for local development.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeouts = RelaxedTimeoutConfig()
	cfg.InsecureDevMode = true
	cfg.Debug = true
	cfg.MaxConnections = 0
	return cfg
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.MaxMessageSize <= 0 {
		return ErrInvalidMaxMessageSize
	}
	if c.MaxConnections < 0 {
		return ErrInvalidMaxConnections
	}
	switch c.Codec {
	case "", "json", "phoenix", "msgpack":
	default:
		return ErrUnknownCodec
	}
	t := c.Timeouts
	if t.WebSocketRead <= 0 || t.WebSocketWrite <= 0 || t.WebSocketPing <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Configuration errors.
var (
	ErrInvalidMaxMessageSize = configError("MaxMessageSize must be positive")
	ErrInvalidMaxConnections = configError("MaxConnections must not be negative")
	ErrUnknownCodec          = configError("codec must be json, phoenix or msgpack")
	ErrInvalidTimeout        = configError("websocket timeouts must be positive")
)

type configError string

func (e configError) Error() string { return string(e) }
