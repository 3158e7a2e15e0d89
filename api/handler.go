package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kbukum/huddle/audio"
	"github.com/kbukum/huddle/insight"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/meeting"
	"github.com/kbukum/huddle/session"
	"github.com/kbukum/huddle/tasks"
)

// Deps are the services the handlers call.
type Deps struct {
	Meetings *meeting.Service
	Pipeline *audio.Pipeline
	Insights *insight.Service
	Queue    *tasks.Queue
	Sessions *session.Registry
}

// Handler serves the REST and socket routes.
type Handler struct {
	Deps
	cfg      Config
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler.
func NewHandler(deps Deps, cfg Config, log *logger.Logger) *Handler {
	cfg.ApplyDefaults()
	h := &Handler{Deps: deps, cfg: cfg, log: log.WithComponent("api")}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")

	meetings := api.Group("/meetings")
	meetings.POST("/create", h.createMeeting)
	meetings.GET("/:id", h.getMeeting)
	meetings.POST("/:id/join", h.joinMeeting)
	meetings.POST("/:id/end", h.endMeeting)
	meetings.GET("/:id/status", h.meetingStatus)

	transcripts := api.Group("/transcriptions")
	transcripts.GET("/:id", h.listTranscript)
	transcripts.POST("/:id/upload", h.uploadAudio)
	transcripts.POST("/:id/process", h.processAudio)
	transcripts.DELETE("/:id", h.deleteTranscript)

	insights := api.Group("/insights")
	insights.GET("/:id", h.getInsight)
	insights.POST("/:id/generate", h.generateInsight)
	insights.DELETE("/:id", h.deleteInsight)
	insights.GET("/:id/view", h.viewInsight)
	insights.GET("/:id/stream", h.streamSummary)

	api.GET("/tasks/:task_id", h.getTask)

	ws := r.Group("/ws")
	ws.GET("/chat/:id", h.chatSocket)
	ws.GET("/audio/:id", h.audioSocket)
	ws.GET("/summary/:id", h.summarySocket)
}
