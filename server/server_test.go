package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/huddle/component"
	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/observability"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := New(Config{Host: "127.0.0.1", Port: freePort(t)}, logger.Nop())
	s.UseMetrics(observability.NewMetrics("huddle_srv_test"))
	s.RegisterDefaultEndpoints("huddle", func(context.Context) []component.Health {
		return []component.Health{
			{Name: "database", Status: component.StatusHealthy},
			{Name: "redis", Status: component.StatusDegraded},
		}
	})
	return s
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestDefaultEndpoints(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var body struct {
		Status     string             `json:"status"`
		Components []component.Health `json:"components"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != string(component.StatusDegraded) || len(body.Components) != 2 {
		t.Errorf("health body = %+v", body)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("request id header missing")
	}

	for _, path := range []string{"/ready", "/info", "/metrics"} {
		r, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		r.Body.Close()
		if r.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, r.StatusCode)
		}
	}
}

func TestRespondWithError(t *testing.T) {
	s := newTestServer(t)
	s.GinEngine().GET("/full", func(c *gin.Context) {
		RespondWithError(c, apperrors.RoomFull("ABC123", 4))
	})
	s.GinEngine().GET("/plain", func(c *gin.Context) {
		RespondWithError(c, errors.New("disk on fire"))
	})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/full", http.NoBody))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rr.Code)
	}
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != apperrors.ErrCodeRoomFull {
		t.Errorf("code = %s", body.Error.Code)
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/plain", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != apperrors.ErrCodeInternal || body.Error.Message == "disk on fire" {
		t.Errorf("internal cause leaked or wrong code: %+v", body.Error)
	}
}

func TestComponentStartStop(t *testing.T) {
	s := newTestServer(t)
	c := NewComponent(s)
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	resp.Body.Close()

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Host != "0.0.0.0" || cfg.Port != 8001 {
		t.Errorf("defaults = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.WriteTimeout != 0 {
		t.Error("write timeout must stay unset for streaming endpoints")
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid port error")
	}
}
