package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/huddle/component"
	"github.com/kbukum/huddle/logger"
)

// Component wraps a Storage backend for the component registry.
type Component struct {
	cfg     Config
	storage Storage
	log     *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a storage component. Nothing is connected until Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Enabled reports whether archival is configured.
func (c *Component) Enabled() bool { return c.cfg.Enabled }

// Storage returns the backend, or nil when disabled or not started.
func (c *Component) Storage() Storage { return c.storage }

// Config returns the effective configuration.
func (c *Component) Config() Config { return c.cfg }

// Start builds the backend when enabled.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("storage component is disabled")
		return nil
	}
	s, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	return nil
}

// Stop releases the backend.
func (c *Component) Stop(_ context.Context) error {
	c.storage = nil
	return nil
}

// Health probes the backend with an existence check.
func (c *Component) Health(ctx context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	if c.storage == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	if _, err := c.storage.Exists(ctx, c.cfg.Key(".health")); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("health probe failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns a one-line summary for the startup banner.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s", c.cfg.Provider)
	switch {
	case !c.cfg.Enabled:
		details = "disabled"
	case c.cfg.Provider == ProviderS3:
		details += fmt.Sprintf(" bucket=%s", c.cfg.Bucket)
	case c.cfg.Provider == ProviderLocal:
		details += fmt.Sprintf(" path=%s", c.cfg.BasePath)
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}
