package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/huddle/bootstrap"
	"github.com/kbukum/huddle/config"
	"github.com/kbukum/huddle/logger"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.Server.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, serviceName, cfg.Name)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Meeting.MaxParticipants)
	assert.Equal(t, 6, cfg.Meeting.RoomCodeLength)
	assert.Equal(t, int64(50<<20), cfg.Audio.MaxSizeBytes)
	assert.Equal(t, "recordings", cfg.Audio.RecordingsDir)
	assert.Equal(t, "temp", cfg.Audio.TempDir)
	assert.Equal(t, "deepgram", cfg.Transcription.Provider)
	assert.Equal(t, "gpt-4.1-nano", cfg.LLM.Model)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
	assert.Equal(t, cfg.Environment, cfg.Tracing.Environment)
}

func TestConfigValidateNamesSection(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Transcription.Provider = "carrier-pigeon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription")
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("DEEPGRAM_API_KEY", "dg-key")

	var cfg Config
	require.NoError(t, config.LoadConfig(serviceName, &cfg,
		config.WithConfigFile("config.yml"),
		config.WithEnvFile(filepath.Join(t.TempDir(), "missing.env")),
	))
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "dg-key", cfg.Deepgram.APIKey)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "per_chunk", cfg.Audio.TranscribePolicy)
	assert.Equal(t, 10*time.Minute, cfg.Tasks.TaskTimeout)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServiceServesMeetings(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	cfg.Environment = "test"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Database.DSN = "file::memory:"
	cfg.Database.AutoMigrate = true
	cfg.Database.LogLevel = "silent"
	cfg.Audio.RecordingsDir = filepath.Join(dir, "recordings")
	cfg.Audio.TempDir = filepath.Join(dir, "temp")
	cfg.Storage.Enabled = true
	cfg.Storage.BasePath = filepath.Join(dir, "archive")

	app, err := bootstrap.NewApp(cfg, bootstrap.WithLogger(logger.Nop()), bootstrap.WithGracefulTimeout(5*time.Second))
	require.NoError(t, err)
	in, err := setup(app)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	base := "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Server.Port))
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/api/meetings/create?title=Standup&owner_name=alice", "application/json", nil)
	require.NoError(t, err)
	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Standup", created["title"])

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotNil(t, in.server)
	assert.NotEmpty(t, app.Summary.Routes())
	_, err = os.Stat(cfg.Audio.RecordingsDir)
	assert.NoError(t, err, "pipeline creates its working directories on start")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not shut down")
	}
}
