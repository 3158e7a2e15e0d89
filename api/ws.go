package api

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/insight"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/server"
	"github.com/kbukum/huddle/session"
)

type chatIn struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

type chatOut struct {
	Type    string `json:"type"`
	User    string `json:"user"`
	Message string `json:"message"`
}

type socketError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// serveSocket upgrades the request, subscribes the connection to kind for the
// meeting and reads until the peer disconnects.
func (h *Handler) serveSocket(c *gin.Context, kind session.Kind, onOpen func(*socket), onMessage func(ctx context.Context, s *socket, msgKind int, data []byte)) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.Meetings.Get(ctx, id); err != nil {
		server.RespondWithError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.WithContext(ctx).Debug("Socket upgrade failed", logger.ErrorFields("upgrade", err))
		return
	}

	s := newSocket(conn, h.cfg, h.log.WithFields(logger.MeetingFields(id, logger.FieldChannel, string(kind))))
	h.Sessions.Subscribe(kind, id, s)
	go s.writePump()
	s.log.Debug("Socket connected")

	if onOpen != nil {
		onOpen(s)
	}
	s.readPump(func(msgKind int, data []byte) {
		if onMessage != nil {
			onMessage(ctx, s, msgKind, data)
		}
	})

	h.Sessions.Unsubscribe(kind, id, s)
	_ = s.Close()
	<-s.done
	s.log.Debug("Socket disconnected")
}

// chatSocket relays each chat message to the meeting's other chat sockets.
func (h *Handler) chatSocket(c *gin.Context) {
	id := c.Param("id")
	h.serveSocket(c, session.KindChat, nil, func(_ context.Context, s *socket, msgKind int, data []byte) {
		var in chatIn
		if err := json.Unmarshal(data, &in); err != nil {
			h.sendError(s, apperrors.InvalidInput("message", "chat frames must be JSON"))
			return
		}
		out := chatOut{Type: "chat", User: in.User, Message: in.Message}
		if _, err := h.Sessions.BroadcastJSON(session.KindChat, id, out, s); err != nil {
			s.log.Warn("Chat relay failed", logger.ErrorFields("relay", err))
		}
	})
}

// audioSocket feeds binary frames to the audio pipeline. Text frames are
// ignored.
func (h *Handler) audioSocket(c *gin.Context) {
	id := c.Param("id")
	h.serveSocket(c, session.KindAudio, nil, func(ctx context.Context, s *socket, msgKind int, data []byte) {
		if msgKind != websocket.BinaryMessage {
			return
		}
		// Ingest only appends; queued transcriptions run on their own context.
		if _, err := h.Pipeline.Ingest(context.WithoutCancel(ctx), id, data); err != nil {
			s.log.Warn("Audio chunk rejected", logger.ErrorFields("ingest", err))
			h.sendError(s, err)
		}
	})
}

// summarySocket is passive. A connection opened after the summary exists gets
// it immediately.
func (h *Handler) summarySocket(c *gin.Context) {
	id := c.Param("id")
	h.serveSocket(c, session.KindSummary, func(s *socket) {
		h.sendCurrentSummary(c.Request.Context(), id, s)
	}, nil)
}

func (h *Handler) sendCurrentSummary(ctx context.Context, meetingID string, sub session.Subscriber) {
	in, err := h.Insights.Get(ctx, meetingID)
	if err != nil {
		return
	}
	data, err := json.Marshal(insight.NewSummaryEvent(in))
	if err != nil {
		return
	}
	_ = sub.Send(data)
}

func (h *Handler) sendError(s *socket, err error) {
	appErr := apperrors.FromError(err)
	data, _ := json.Marshal(socketError{Type: "error", Code: string(appErr.Code), Message: appErr.Message})
	_ = s.Send(data)
}
