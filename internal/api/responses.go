package api

import (
	"net/http"

	"techdeputies/internal/apperr"
	"techdeputies/internal/logger"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string            `json:"error" example:"something went wrong"`
	Details []ValidationError `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// RespondError writes err using the status code of its apperr kind.
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.JSON(kind.HTTPStatus(), ErrorResponse{Error: apperr.Message(err)})
}

func RespondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
