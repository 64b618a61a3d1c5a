package settlement

import (
	"net/http"
	"strconv"

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

func currentUser(c *gin.Context) (int, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
	}
	return userID, ok
}

// @Summary      Purchase a course
// @Description  Settles the course price from the subscription, a gift card and a card charge, in that order.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body settlement.PurchaseRequest true "Purchase payload"
// @Success      201 {object} settlement.Receipt
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /purchases [post]
func (h *Handler) PurchaseCourse(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req PurchaseRequest
	if !api.BindJSON(c, &req) {
		return
	}

	receipt, err := h.service.PurchaseCourse(c.Request.Context(), userID, req.ItemID, req.GiftCardCode)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// @Summary      Book a support session
// @Description  Uses the subscription's session allowance when available, otherwise charges the session price.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slotID path int true "Slot ID"
// @Param        request body settlement.BookRequest false "Optional gift card"
// @Success      201 {object} settlement.Receipt
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /slots/{slotID}/book [post]
func (h *Handler) BookSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		api.RespondBadRequest(c, "invalid slot ID")
		return
	}

	var req BookRequest
	if c.Request.ContentLength > 0 && !api.BindJSON(c, &req) {
		return
	}

	receipt, err := h.service.BookSession(c.Request.Context(), userID, slotID, req.GiftCardCode)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		api.RespondBadRequest(c, "invalid booking ID")
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), userID, bookingID); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "booking cancelled"})
}

// @Summary      List my purchases
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} settlement.Purchase
// @Failure      401 {object} api.ErrorResponse
// @Router       /purchases [get]
func (h *Handler) ListPurchases(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	purchases, err := h.service.ListPurchases(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// @Summary      List my bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} settlement.BookingDetails
// @Failure      401 {object} api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
