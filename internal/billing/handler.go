package billing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"techdeputies/internal/api"
	"techdeputies/internal/apperr"
	"techdeputies/internal/logger"
	"techdeputies/internal/metrics"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type Handler struct {
	service     Service
	idempotency Idempotency
	secret      string
}

func NewHandler(service Service, idempotency Idempotency, secret string) *Handler {
	if secret == "" {
		logger.Warn("billing webhook signature verification disabled")
	}
	return &Handler{service: service, idempotency: idempotency, secret: secret}
}

// @Summary      Billing provider webhook
// @Description  Applies subscription lifecycle events. Replayed event ids are acknowledged without side effects.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Billing-Signature header string false "hex HMAC-SHA256 of the body"
// @Param        request body billing.Event true "Billing event"
// @Success      200 {object} billing.WebhookResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /webhooks/billing [post]
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		api.RespondBadRequest(c, "invalid request body")
		return
	}

	if h.secret != "" && !VerifySignature(h.secret, body, c.GetHeader(SignatureHeader)) {
		metrics.RecordBillingEvent("unknown", "bad_signature")
		api.RespondBadRequest(c, "invalid signature")
		return
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		api.RespondBadRequest(c, "invalid request body")
		return
	}
	if errs := api.ValidateStruct(event); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	ctx := c.Request.Context()
	fresh, err := h.idempotency.Remember(ctx, event.ID)
	if err != nil {
		api.RespondError(c, apperr.Internal("failed to record billing event", err))
		return
	}
	if !fresh {
		metrics.RecordBillingEvent(string(event.Type), "duplicate")
		logger.Info("billing event replay ignored", "event_id", event.ID)
		c.JSON(http.StatusOK, WebhookResponse{Status: "duplicate"})
		return
	}

	err = h.service.Handle(ctx, event)
	switch {
	case err == nil:
		metrics.RecordBillingEvent(string(event.Type), "processed")
		c.JSON(http.StatusOK, WebhookResponse{Status: "processed"})

	case errors.Is(err, ErrIgnoredEvent):
		metrics.RecordBillingEvent(string(event.Type), "ignored")
		c.JSON(http.StatusOK, WebhookResponse{Status: "ignored"})

	case apperr.Is(err, apperr.KindConflict):
		// Retrying cannot make a rejected transition valid.
		metrics.RecordBillingEvent(string(event.Type), "rejected")
		logger.Warn("billing event rejected", "event_id", event.ID, "type", event.Type, "error", err)
		c.JSON(http.StatusOK, WebhookResponse{Status: "rejected"})

	default:
		metrics.RecordBillingEvent(string(event.Type), "failed")
		if ferr := h.idempotency.Forget(ctx, event.ID); ferr != nil {
			logger.Error("failed to release billing event", "event_id", event.ID, "error", ferr)
		}
		api.RespondError(c, err)
	}
}
