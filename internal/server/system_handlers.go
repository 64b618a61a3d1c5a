package server

import (
	"net/http"

	"techdeputies/internal/api"
	"techdeputies/internal/email"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Queue a test email
// @Tags         system
// @Produce      json
// @Security     BearerAuth
// @Param        email query string true "Recipient email"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/test-email [get]
func TestEmail(emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		to := c.Query("email")
		if to == "" {
			api.RespondBadRequest(c, "email parameter required")
			return
		}

		if err := emailService.Send(c.Request.Context(), "test", to, "Test User", "Test email from The Tech Deputies", "Email delivery is working."); err != nil {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to queue email"})
			return
		}

		c.JSON(http.StatusOK, api.MessageResponse{Message: "email queued"})
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
