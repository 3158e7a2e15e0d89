package sse

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kbukum/huddle/logger"
)

// Options tunes Serve.
type Options struct {
	// Event names the events written for outbox messages. Empty means "message".
	Event string
	// KeepAlive is the comment interval. Defaults to 30s.
	KeepAlive time.Duration
	// Log receives connection diagnostics. Defaults to the global logger.
	Log *logger.Logger
}

// Serve streams the client's outbox until the request ends or the client is
// closed. It writes a "connected" event first.
func Serve(w http.ResponseWriter, r *http.Request, client *Client, opts Options) {
	log := opts.Log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithContext(r.Context()).WithFields(map[string]interface{}{"client_id": client.ID()})
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = 30 * time.Second
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("SSE streaming not supported by response writer")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived stream: lift any server write deadline.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("Could not clear write deadline", map[string]interface{}{logger.FieldError: err.Error()})
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	hello, _ := json.Marshal(map[string]string{"client_id": client.ID()})
	if err := WriteEvent(w, EventConnected, hello); err != nil {
		return
	}
	flusher.Flush()
	log.Debug("SSE client connected")

	keepAlive := time.NewTicker(opts.KeepAlive)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("SSE client disconnected")
			return
		case data, ok := <-client.Events():
			if !ok {
				return
			}
			if err := WriteEvent(w, opts.Event, data); err != nil {
				log.Debug("SSE write failed", map[string]interface{}{logger.FieldError: err.Error()})
				return
			}
			flusher.Flush()
		case t := <-keepAlive.C:
			if err := WriteComment(w, "keepalive "+t.UTC().Format(time.RFC3339)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
