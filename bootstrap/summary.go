package bootstrap

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kbukum/huddle/component"
	"github.com/kbukum/huddle/logger"
)

// RouteInfo is one registered HTTP route.
type RouteInfo struct {
	Method string
	Path   string
}

// Summary collects what the service started with and logs it once ready.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
	business        []string
}

// NewSummary creates an empty summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path})
}

// TrackBusiness records a business-layer service by name.
func (s *Summary) TrackBusiness(name string) {
	s.business = append(s.business, name)
}

// Routes returns the tracked routes sorted by path then method.
func (s *Summary) Routes() []RouteInfo {
	out := append([]RouteInfo(nil), s.routes...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Log writes the startup summary and the live health of every component.
func (s *Summary) Log(ctx context.Context, registry *component.Registry, log *logger.Logger) {
	fields := logger.Fields(
		"name", s.serviceName,
		"version", s.version,
		logger.FieldDuration, s.startupDuration.Milliseconds(),
		"routes", len(s.routes),
	)
	if len(s.business) > 0 {
		fields["business"] = strings.Join(s.business, ",")
	}

	if registry != nil {
		health := registry.HealthAll(ctx)
		parts := make([]string, 0, len(health))
		for _, h := range health {
			parts = append(parts, h.Name+"="+string(h.Status))
		}
		fields["components"] = strings.Join(parts, ",")
		fields["health"] = string(component.Overall(health))
	}
	log.Info("Application started", fields)

	for _, r := range s.Routes() {
		log.Debug("Route", logger.Fields("method", r.Method, "path", r.Path))
	}
}
