package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/huddle/session"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, reg *session.Registry, kind session.Kind, id string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return reg.Count(kind, id) == n }, 2*time.Second, 10*time.Millisecond)
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out map[string]any
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestChatRelayExcludesSender(t *testing.T) {
	env := newEnv(t)
	m := env.createMeeting(t)
	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	alice := dial(t, srv, "/ws/chat/"+m.ID)
	bob := dial(t, srv, "/ws/chat/"+m.ID)
	waitForSubscribers(t, env.sessions, session.KindChat, m.ID, 2)

	require.NoError(t, alice.WriteJSON(map[string]string{"user": "alice", "message": "hi bob"}))
	msg := readJSON(t, bob)
	assert.Equal(t, "chat", msg["type"])
	assert.Equal(t, "alice", msg["user"])
	assert.Equal(t, "hi bob", msg["message"])

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := alice.ReadMessage()
	assert.Error(t, err, "sender must not receive its own message")
}

func TestChatRejectsInvalidJSON(t *testing.T) {
	env := newEnv(t)
	m := env.createMeeting(t)
	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	conn := dial(t, srv, "/ws/chat/"+m.ID)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := readJSON(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "INVALID_INPUT", msg["code"])
}

func TestSocketUnsubscribesOnClose(t *testing.T) {
	env := newEnv(t)
	m := env.createMeeting(t)
	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	conn := dial(t, srv, "/ws/chat/"+m.ID)
	waitForSubscribers(t, env.sessions, session.KindChat, m.ID, 1)
	require.NoError(t, conn.Close())
	waitForSubscribers(t, env.sessions, session.KindChat, m.ID, 0)
}

func TestSocketUnknownMeeting(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat/NOPE00"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAudioSocketStreamsTranscription(t *testing.T) {
	env := newEnv(t)
	m := env.createMeeting(t)
	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	conn := dial(t, srv, "/ws/audio/"+m.ID)
	waitForSubscribers(t, env.sessions, session.KindAudio, m.ID, 1)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("chunk-1")))

	got := map[string]bool{}
	for !got["transcribed"] {
		msg := readJSON(t, conn)
		require.NotEqual(t, "error", msg["type"], "unexpected error frame: %v", msg)
		require.NotEqual(t, "failed", msg["status"], "unexpected failure: %v", msg)
		status, _ := msg["status"].(string)
		got[status] = true
	}
	assert.True(t, got["received"])
	env.drain(t)

	segments, err := env.meetings.Transcript(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "hello team", segments[0].Content)
}

func TestSummarySocketReceivesGeneratedInsight(t *testing.T) {
	env := newEnv(t)
	m := env.createMeeting(t)
	_, err := env.pipeline.Accumulator().Append(context.Background(), m.ID, []byte("audio"))
	require.NoError(t, err)
	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	conn := dial(t, srv, "/ws/summary/"+m.ID)
	waitForSubscribers(t, env.sessions, session.KindSummary, m.ID, 1)

	w := env.do(t, http.MethodPost, "/api/meetings/"+m.ID+"/end", nil)
	require.Equal(t, http.StatusOK, w.Code)

	msg := readJSON(t, conn)
	assert.Equal(t, "summary", msg["type"])
	assert.Equal(t, "Summary", msg["summary"])
}

func TestSummaryStream(t *testing.T) {
	env := newEnv(t)
	m := env.createMeeting(t)
	srv := httptest.NewServer(env.engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/insights/"+m.ID+"/stream", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	waitForSubscribers(t, env.sessions, session.KindSummary, m.ID, 1)

	_, err = env.sessions.BroadcastJSON(session.KindSummary, m.ID, map[string]string{"type": "summary", "summary": "done"}, nil)
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: summary") {
			next, err := reader.ReadString('\n')
			require.NoError(t, err)
			data = strings.TrimPrefix(strings.TrimSpace(next), "data: ")
		}
	}
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, "done", payload["summary"])
}
