package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/huddle/server"
)

func (h *Handler) getInsight(c *gin.Context) {
	in, err := h.Insights.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, in)
}

func (h *Handler) generateInsight(c *gin.Context) {
	id := c.Param("id")
	existing, task, err := h.Insights.Generate(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if existing != nil {
		server.RespondOK(c, gin.H{"message": "Insights already exist", "insight": existing})
		return
	}
	server.RespondOK(c, gin.H{
		"message":    "Insight generation started",
		"meeting_id": id,
		"task_id":    task.ID,
	})
}

func (h *Handler) deleteInsight(c *gin.Context) {
	if err := h.Insights.Delete(c.Request.Context(), c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"message": "Insights deleted successfully"})
}

func (h *Handler) viewInsight(c *gin.Context) {
	view, err := h.Insights.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, view)
}
