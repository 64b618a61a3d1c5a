package giftcard

import (
	"net/http"
	"time"

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

type CheckRequest struct {
	Code string `json:"code" validate:"required"`
}

type RedeemRequest struct {
	Code        string `json:"code" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
	Description string `json:"description" validate:"max=255"`
}

type CreateGiftCardRequest struct {
	AmountCents    int64   `json:"amount_cents" validate:"required,gt=0"`
	RecipientEmail *string `json:"recipient_email,omitempty" validate:"omitempty,email"`
	Message        *string `json:"message,omitempty" validate:"omitempty,max=500"`
}

type CreateGiftCardResponse struct {
	Code        string     `json:"code" example:"ABCD-EFGH-JKLM-NPQR"`
	AmountCents int64      `json:"amount_cents"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// @Summary      Check a gift card balance
// @Tags         gift-cards
// @Accept       json
// @Produce      json
// @Param        request body giftcard.CheckRequest true "Gift card code"
// @Success      200 {object} giftcard.Balance
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /gift-cards/check [post]
func (h *Handler) Check(c *gin.Context) {
	var req CheckRequest
	if !api.BindJSON(c, &req) {
		return
	}

	bal, err := h.service.CheckBalance(c.Request.Context(), req.Code)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

// @Summary      Redeem a gift card
// @Description  Draws up to amount_cents from the card. A smaller balance is drawn in full.
// @Tags         gift-cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body giftcard.RedeemRequest true "Redemption"
// @Success      200 {object} giftcard.Redemption
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /gift-cards/redeem [post]
func (h *Handler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if !api.BindJSON(c, &req) {
		return
	}

	r, err := h.service.Redeem(c.Request.Context(), req.Code, req.AmountCents, req.Description)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary      Buy a gift card
// @Tags         gift-cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body giftcard.CreateGiftCardRequest true "Gift card"
// @Success      201 {object} giftcard.CreateGiftCardResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Router       /gift-cards [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}
	email, _ := auth.GetUserEmail(c)

	var req CreateGiftCardRequest
	if !api.BindJSON(c, &req) {
		return
	}

	card, err := h.service.Create(c.Request.Context(), CreateRequest{
		AmountCents:    req.AmountCents,
		PurchaserID:    &userID,
		PurchaserEmail: email,
		RecipientEmail: req.RecipientEmail,
		Message:        req.Message,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateGiftCardResponse{
		Code:        FormatCode(card.Code),
		AmountCents: card.OriginalCents,
		ExpiresAt:   card.ExpiresAt,
	})
}

// @Summary      Cancel a gift card
// @Tags         admin,gift-cards
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Gift card code"
// @Success      200 {object} giftcard.GiftCard
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/gift-cards/{code}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	card, err := h.service.Cancel(c.Request.Context(), c.Param("code"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// @Summary      List gift card ledger entries
// @Tags         admin,gift-cards
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Gift card code"
// @Success      200 {array} giftcard.Transaction
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/gift-cards/{code}/transactions [get]
func (h *Handler) History(c *gin.Context) {
	txs, err := h.service.History(c.Request.Context(), c.Param("code"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}
