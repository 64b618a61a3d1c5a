package plan

import (
	"net/http"

	"techdeputies/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Success      200 {array} plan.Plan
// @Failure      500 {object} api.ErrorResponse
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// @Summary      Get a plan by tier
// @Tags         plans
// @Produce      json
// @Param        tier path string true "Plan tier" Enums(BASIC, STANDARD, PREMIUM)
// @Success      200 {object} plan.Plan
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /plans/{tier} [get]
func (h *Handler) GetPlan(c *gin.Context) {
	p, err := h.service.GetPlanByTier(c.Request.Context(), c.Param("tier"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
