package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/huddle/component"
	"github.com/kbukum/huddle/config"
	"github.com/kbukum/huddle/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	if m.events != nil {
		*m.events = append(*m.events, "start:"+m.name)
	}
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	if m.events != nil {
		*m.events = append(*m.events, "stop:"+m.name)
	}
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) component.Health {
	if m.health.Status == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "huddle", Version: "1.0.0", Environment: "test"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func canceled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "huddle" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %s/%s", app.Name, app.Version)
	}
	if app.Components == nil || app.Summary == nil || app.Logger == nil {
		t.Fatal("expected registry, summary and logger")
	}
	if app.gracefulTimeout != DefaultGracefulTimeout {
		t.Errorf("expected default graceful timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	_, err := NewApp(&testConfig{})
	if err == nil || !strings.Contains(err.Error(), "config validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "huddle"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("got %v", app.gracefulTimeout)
	}
}

func TestRunLifecycleOrder(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "database", events: &events})

	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, "configure")
		return a.RegisterComponent(&mockComponent{name: "http-server", events: &events})
	})
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	if err := app.Run(canceled()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := []string{
		"start:database", "onStart", "configure", "start:http-server", "onReady",
		"onStop", "stop:http-server", "stop:database",
	}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRunConfigureErrorStopsStartedComponents(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "database", events: &events})
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("wiring failed") })

	err := app.Run(canceled())
	if err == nil || !strings.Contains(err.Error(), "wiring failed") {
		t.Fatalf("expected configure error, got %v", err)
	}
	if events[len(events)-1] != "stop:database" {
		t.Errorf("expected database stopped, got %v", events)
	}
}

func TestRunComponentStartError(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "redis", startErr: errors.New("refused")})
	if err := app.Run(canceled()); err == nil || !strings.Contains(err.Error(), "initialization failed") {
		t.Fatalf("expected initialization error, got %v", err)
	}
}

func TestReadyHookError(t *testing.T) {
	app := newTestApp(t)
	app.OnReady(func(context.Context) error { return errors.New("not ready") })
	if err := app.Run(canceled()); err == nil || !strings.Contains(err.Error(), "onReady") {
		t.Fatalf("expected onReady error, got %v", err)
	}
}

func TestHookErrorStopsExecution(t *testing.T) {
	calls := 0
	err := runHooks(context.Background(), []Hook{
		func(context.Context) error { calls++; return errors.New("boom") },
		func(context.Context) error { calls++; return nil },
	})
	if err == nil || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestShutdownReportsStopErrors(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "storage", stopErr: errors.New("flush failed")})
	if err := app.Components.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := app.Shutdown(); err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Fatalf("expected stop error, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Fatalf("empty registry should be ready: %v", err)
	}
	_ = app.RegisterComponent(&mockComponent{name: "database"})
	_ = app.RegisterComponent(&mockComponent{
		name:   "audio",
		health: component.Health{Name: "audio", Status: component.StatusDegraded, Message: "stt unavailable"},
	})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "audio=degraded(stt unavailable)") {
		t.Fatalf("unexpected ready check result: %v", err)
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	app := newTestApp(t)
	if sig := app.WaitForSignal(canceled()); sig != nil {
		t.Errorf("expected nil signal, got %v", sig)
	}
}

func TestSummaryRoutesSorted(t *testing.T) {
	s := NewSummary("huddle", "1.0.0")
	s.TrackRoute("POST", "/api/meetings/create")
	s.TrackRoute("GET", "/api/meetings/:id")
	s.TrackRoute("DELETE", "/api/insights/:id")
	s.TrackRoute("GET", "/api/insights/:id")

	routes := s.Routes()
	if routes[0].Method != "DELETE" || routes[1].Method != "GET" || routes[0].Path != "/api/insights/:id" {
		t.Errorf("unexpected order %v", routes)
	}
	if routes[3].Path != "/api/meetings/create" {
		t.Errorf("unexpected last route %v", routes[3])
	}
}

func TestSummaryLog(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "huddle")
	registry := component.NewRegistry(logger.Nop())
	_ = registry.Register(&mockComponent{name: "database"})

	s := NewSummary("huddle", "1.0.0")
	s.TrackRoute("GET", "/health")
	s.TrackBusiness("meetings")
	s.SetStartupDuration(25 * time.Millisecond)
	s.Log(context.Background(), registry, log)

	out := buf.String()
	for _, want := range []string{`"message":"Application started"`, `"components":"database=healthy"`, `"business":"meetings"`, `"health":"healthy"`} {
		if !strings.Contains(out, want) {
			t.Errorf("summary log missing %s: %s", want, out)
		}
	}
}
