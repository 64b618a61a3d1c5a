package subscription

import (
	"net/http"

	"techdeputies/internal/api"
	"techdeputies/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Current subscription and session usage
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} subscription.Usage
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /subscriptions/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	u, err := h.service.Usage(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary      Subscription history
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} subscription.Subscription
// @Failure      401 {object} api.ErrorResponse
// @Router       /subscriptions [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	subs, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}
