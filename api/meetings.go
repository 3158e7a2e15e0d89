package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/huddle/server"
	"github.com/kbukum/huddle/validation"
)

type createMeetingRequest struct {
	Title     string `json:"title" form:"title" validate:"required,notblank,max=200"`
	OwnerName string `json:"owner_name" form:"owner_name" validate:"required,notblank,max=100"`
}

type joinMeetingRequest struct {
	UserName string `json:"user_name" validate:"required,notblank,max=100"`
}

type endMeetingResponse struct {
	Message           string `json:"message"`
	MeetingID         string `json:"meeting_id"`
	SummaryGeneration string `json:"summary_generation"`
	TaskID            string `json:"task_id,omitempty"`
}

// createMeeting accepts title and owner_name as query parameters or a JSON
// body. Body fields win.
func (h *Handler) createMeeting(c *gin.Context) {
	var req createMeetingRequest
	_ = c.ShouldBindQuery(&req)
	if c.Request.ContentLength != 0 && c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			server.RespondWithError(c, invalidBody(err))
			return
		}
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	m, err := h.Meetings.Create(c.Request.Context(), req.Title, req.OwnerName)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, m)
}

func (h *Handler) getMeeting(c *gin.Context) {
	m, err := h.Meetings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, m)
}

func (h *Handler) joinMeeting(c *gin.Context) {
	var req joinMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, invalidBody(err))
		return
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	m, err := h.Meetings.Join(c.Request.Context(), c.Param("id"), req.UserName)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, m)
}

func (h *Handler) endMeeting(c *gin.Context) {
	id := c.Param("id")
	_, task, err := h.Meetings.End(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	resp := endMeetingResponse{
		Message:           "Meeting ended successfully",
		MeetingID:         id,
		SummaryGeneration: "started",
	}
	if task != nil {
		resp.TaskID = task.ID
	}
	server.RespondOK(c, resp)
}

func (h *Handler) meetingStatus(c *gin.Context) {
	view, err := h.Meetings.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, view)
}
