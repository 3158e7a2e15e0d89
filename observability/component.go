package observability

import (
	"context"
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/huddle/component"
)

// TracerComponent owns the global TracerProvider lifecycle.
type TracerComponent struct {
	cfg     TracerConfig
	service string
	version string
	tp      *sdktrace.TracerProvider
}

// NewTracerComponent creates a tracer component.
func NewTracerComponent(cfg TracerConfig, service, version string) *TracerComponent {
	return &TracerComponent{cfg: cfg, service: service, version: version}
}

func (c *TracerComponent) Name() string { return "tracer" }

func (c *TracerComponent) Start(ctx context.Context) error {
	tp, err := InitTracer(ctx, c.cfg, c.service, c.version)
	if err != nil {
		return err
	}
	c.tp = tp
	return nil
}

func (c *TracerComponent) Stop(ctx context.Context) error {
	if c.tp == nil {
		return nil
	}
	if err := c.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer: %w", err)
	}
	return nil
}

func (c *TracerComponent) Health(_ context.Context) component.Health {
	if c.tp == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns a summary for startup logging.
func (c *TracerComponent) Describe() component.Description {
	details := "export disabled"
	if c.cfg.Enabled {
		details = fmt.Sprintf("otlp %s sample=%.2f", c.cfg.Endpoint, c.cfg.SampleRate)
	}
	return component.Description{Name: "Tracer", Type: "otel", Details: details}
}
