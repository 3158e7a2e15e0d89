package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
)

// RespondWithError writes err as {"error":{...}}. AppErrors carry their own
// status; anything else becomes a 500 whose cause is logged but not exposed.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logger.GetGlobalLogger().WithContext(c.Request.Context()).Error("Request failed", map[string]interface{}{
			logger.FieldError: err.Error(),
			"path":            c.Request.URL.Path,
		})
	}
	c.AbortWithStatusJSON(status, appErr.ToResponse())
}

// RespondOK sends 200 with body as-is.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// RespondCreated sends 201 with body as-is.
func RespondCreated(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

// RespondAccepted sends 202 with body as-is.
func RespondAccepted(c *gin.Context, body any) {
	c.JSON(http.StatusAccepted, body)
}
