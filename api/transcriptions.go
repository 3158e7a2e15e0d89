package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/server"
)

const uploadField = "audio_file"

func (h *Handler) listTranscript(c *gin.Context) {
	segments, err := h.Meetings.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, segments)
}

// uploadAudio replaces the meeting's recording with the uploaded file and
// transcribes it before responding.
func (h *Handler) uploadAudio(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := h.Meetings.Get(ctx, id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	fh, err := c.FormFile(uploadField)
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput(uploadField, "audio file is required"))
		return
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "audio/") {
		server.RespondWithError(c, apperrors.InvalidInput(uploadField, "File must be an audio file"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	defer f.Close()

	n, err := h.Pipeline.Accumulator().Replace(ctx, id, f)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.log.WithContext(ctx).Info("Audio uploaded", logger.MeetingFields(id, "bytes", n))

	seg, err := h.Pipeline.Process(ctx, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{
		"message":          "Audio uploaded and transcribed successfully",
		"transcription_id": seg.ID,
		"content_length":   len(seg.Content),
	})
}

func (h *Handler) processAudio(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Meetings.Get(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	task := h.Pipeline.Submit(id)
	server.RespondAccepted(c, gin.H{
		"message":    "Audio processing started",
		"meeting_id": id,
		"status":     "processing",
		"task_id":    task.ID,
	})
}

func (h *Handler) deleteTranscript(c *gin.Context) {
	n, err := h.Meetings.DeleteTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{
		"message": "Transcriptions deleted successfully",
		"deleted": n,
	})
}
