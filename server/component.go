package server

import (
	"context"
	"fmt"

	"github.com/kbukum/huddle/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component adapts Server to the component registry.
type Component struct {
	server *Server
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name.
func (sc *Component) Name() string { return componentName }

// Start starts the server.
func (sc *Component) Start(ctx context.Context) error { return sc.server.Start(ctx) }

// Stop shuts the server down.
func (sc *Component) Stop(ctx context.Context) error { return sc.server.Stop(ctx) }

// Health reports healthy once the listener is bound.
func (sc *Component) Health(_ context.Context) component.Health {
	sc.server.mu.Lock()
	bound := sc.server.listener != nil
	sc.server.mu.Unlock()
	if !bound {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe returns a one-line summary for the startup banner.
func (sc *Component) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s routes=%d", sc.server.config.Addr(), len(sc.server.engine.Routes())),
	}
}
