package api

import (
	"fmt"
	"time"
)

// Config tunes the socket endpoints.
type Config struct {
	// AllowedOrigins lists origins allowed to open sockets. Empty or "*"
	// allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// SendBuffer is the per-connection outbox size.
	SendBuffer int           `mapstructure:"send_buffer"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	// MaxMessageBytes caps a single inbound frame.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes"`
	// KeepAlive is the SSE comment interval.
	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = 1 << 20
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.PongWait < time.Second {
		return fmt.Errorf("api: pong_wait must be at least 1s")
	}
	return nil
}

func (c *Config) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}
