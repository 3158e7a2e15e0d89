package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/huddle/server"
	"github.com/kbukum/huddle/session"
	"github.com/kbukum/huddle/sse"
)

// streamSummary is the SSE twin of the summary websocket.
func (h *Handler) streamSummary(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.Meetings.Get(ctx, id); err != nil {
		server.RespondWithError(c, err)
		return
	}

	client := sse.NewClient(uuid.NewString(), h.cfg.SendBuffer)
	h.Sessions.Subscribe(session.KindSummary, id, client)
	defer func() {
		h.Sessions.Unsubscribe(session.KindSummary, id, client)
		_ = client.Close()
	}()
	h.sendCurrentSummary(ctx, id, client)

	sse.Serve(c.Writer, c.Request, client, sse.Options{
		Event:     "summary",
		KeepAlive: h.cfg.KeepAlive,
		Log:       h.log,
	})
}
