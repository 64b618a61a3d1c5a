package slot

import (
	"net/http"
	"strconv"
	"strings"

	"techdeputies/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Create a time slot
// @Description  Admin-only: publish a support session slot from the scheduling calendar
// @Tags         admin,slots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body slot.CreateTimeSlotRequest true "Time slot payload"
// @Success      201 {object} slot.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/slots [post]
func (h *Handler) CreateTimeSlot(c *gin.Context) {
	var req CreateTimeSlotRequest
	if !api.BindJSON(c, &req) {
		return
	}

	slot, err := h.service.CreateTimeSlot(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// @Summary      List time slots
// @Description  Customers see upcoming slots; the admin route includes past ones
// @Tags         slots,admin
// @Produce      json
// @Success      200 {array} slot.TimeSlotWithAvailability
// @Failure      500 {object} api.ErrorResponse
// @Router       /slots [get]
// @Router       /admin/slots [get]
func (h *Handler) ListTimeSlots(c *gin.Context) {
	onlyFuture := !strings.Contains(c.Request.URL.Path, "/admin/")
	slots, err := h.service.ListTimeSlots(c.Request.Context(), onlyFuture)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

// @Summary      Get a time slot
// @Tags         slots
// @Produce      json
// @Param        slotID path int true "Slot ID"
// @Success      200 {object} slot.TimeSlotWithAvailability
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /slots/{slotID} [get]
func (h *Handler) GetTimeSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		api.RespondBadRequest(c, "invalid slot ID")
		return
	}

	slot, err := h.service.GetTimeSlot(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}
