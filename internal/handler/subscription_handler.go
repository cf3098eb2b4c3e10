package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/payment"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

const maxWebhookBody = 64 << 10

type subscriptionService interface {
	Current(ctx context.Context, userID string) (*models.Subscription, error)
	Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CheckoutResponse, error)
	HandleNotification(ctx context.Context, n payment.Notification, raw []byte) error
}

// SubscriptionHandler exposes checkout and the payment webhook.
type SubscriptionHandler struct {
	service subscriptionService
}

// NewSubscriptionHandler constructs the handler.
func NewSubscriptionHandler(svc subscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: svc}
}

// Current godoc
// @Summary Current subscription of the caller
// @Tags Subscription
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subscription [get]
func (h *SubscriptionHandler) Current(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	sub, err := h.service.Current(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sub)
}

// Checkout godoc
// @Summary Start a payment for a plan
// @Tags Subscription
// @Accept json
// @Produce json
// @Param payload body models.CheckoutRequest true "Plan"
// @Success 201 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /subscription/checkout [post]
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.CheckoutRequest
	if !bindJSON(c, &req, "invalid checkout payload") {
		return
	}
	res, err := h.service.Checkout(c.Request.Context(), actor.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Webhook godoc
// @Summary Payment provider notification
// @Description Public endpoint authenticated by the notification signature.
// @Tags Subscription
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /payments/webhook [post]
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable notification"))
		return
	}
	var n payment.Notification
	if err := json.Unmarshal(raw, &n); err != nil || n.OrderID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid notification payload"))
		return
	}
	if err := h.service.HandleNotification(c.Request.Context(), n, raw); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"status": "ok"})
}
