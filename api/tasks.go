package api

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/server"
)

func (h *Handler) getTask(c *gin.Context) {
	id := c.Param("task_id")
	task, ok := h.Queue.Get(id)
	if !ok {
		server.RespondWithError(c, apperrors.NotFound("task", id))
		return
	}
	server.RespondOK(c, task.Info())
}
