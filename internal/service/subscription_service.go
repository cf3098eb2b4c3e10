package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/payment"
)

const paymentProvider = "midtrans"

type subscriptionStore interface {
	FindByUser(ctx context.Context, userID string) (*models.Subscription, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Subscription, error)
	Upsert(ctx context.Context, sub *models.Subscription) error
	RecordEvent(ctx context.Context, evt *models.PaymentEvent) (bool, error)
}

type paymentGateway interface {
	Checkout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutResult, error)
	Verify(n payment.Notification) error
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SubscriptionConfig holds plan prices in the smallest currency unit.
type SubscriptionConfig struct {
	MonthlyPrice int64
	YearlyPrice  int64
}

// Price returns the configured price of a plan.
func (c SubscriptionConfig) Price(plan models.SubscriptionPlan) int64 {
	if plan == models.PlanYearly {
		return c.YearlyPrice
	}
	return c.MonthlyPrice
}

// SubscriptionService manages checkout and payment notifications.
type SubscriptionService struct {
	repo     subscriptionStore
	users    userFinder
	gateway  paymentGateway
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	cfg      SubscriptionConfig
	now      func() time.Time
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(repo subscriptionStore, users userFinder, gateway paymentGateway, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SubscriptionConfig) *SubscriptionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{
		repo:     repo,
		users:    users,
		gateway:  gateway,
		metrics:  metrics,
		validate: validate,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Current returns the actor's subscription. Users that never paid get an
// unsaved EXPIRED placeholder.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return &models.Subscription{UserID: userID, Plan: models.PlanMonthly, Status: models.SubscriptionExpired}, nil
		}
		return nil, internalError(err, "failed to load subscription")
	}
	if sub.Status == models.SubscriptionActive && !sub.ActiveAt(s.now()) {
		sub.Status = models.SubscriptionExpired
	}
	return sub, nil
}

// IsActive reports whether the user currently has dashboard access.
func (s *SubscriptionService) IsActive(ctx context.Context, userID string) (bool, error) {
	sub, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, internalError(err, "failed to load subscription")
	}
	return sub.ActiveAt(s.now()), nil
}

// Checkout creates a hosted payment for a plan.
func (s *SubscriptionService) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err, "invalid checkout request")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}
	amount := s.cfg.Price(req.Plan)
	if amount <= 0 {
		return nil, invalidInput("plan is not available")
	}

	orderID := newOrderID(req.Plan)
	first, last := splitName(user.FullName)
	result, err := s.gateway.Checkout(ctx, payment.CheckoutRequest{
		OrderID:  orderID,
		Amount:   amount,
		ItemID:   "plan-" + strings.ToLower(string(req.Plan)),
		ItemName: fmt.Sprintf("Gradebook %s subscription", strings.ToLower(string(req.Plan))),
		Customer: payment.Customer{FirstName: first, LastName: last, Email: user.Email},
	})
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, appErrors.Clone(appErrors.ErrPaymentProvider, "payments are not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPaymentProvider.Code, appErrors.ErrPaymentProvider.Status, "failed to create checkout")
	}

	sub, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if !isNoRows(err) {
			return nil, internalError(err, "failed to load subscription")
		}
		sub = &models.Subscription{UserID: userID, Plan: req.Plan, Status: models.SubscriptionPending}
	}
	if !sub.ActiveAt(s.now()) {
		sub.Status = models.SubscriptionPending
		sub.Plan = req.Plan
	}
	sub.OrderID = &orderID
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, internalError(err, "failed to save subscription")
	}

	return &models.CheckoutResponse{OrderID: orderID, Token: result.Token, RedirectURL: result.RedirectURL}, nil
}

// HandleNotification applies a payment provider notification. Replayed
// notifications are acknowledged without side effects.
func (s *SubscriptionService) HandleNotification(ctx context.Context, n payment.Notification, raw []byte) error {
	if err := s.gateway.Verify(n); err != nil {
		s.metrics.RecordPaymentWebhook("invalid_signature")
		if errors.Is(err, payment.ErrNotConfigured) {
			return appErrors.Clone(appErrors.ErrPaymentProvider, "payments are not configured")
		}
		return appErrors.Clone(appErrors.ErrForbidden, "invalid notification signature")
	}

	if len(raw) == 0 {
		raw, _ = json.Marshal(n)
	}
	fresh, err := s.repo.RecordEvent(ctx, &models.PaymentEvent{
		Provider:          paymentProvider,
		OrderID:           n.OrderID,
		TransactionStatus: strings.ToLower(n.TransactionStatus),
		Payload:           raw,
	})
	if err != nil {
		return internalError(err, "failed to record payment event")
	}
	if !fresh {
		s.metrics.RecordPaymentWebhook("duplicate")
		return nil
	}

	sub, err := s.repo.FindByOrderID(ctx, n.OrderID)
	if err != nil {
		return notFoundOr(err, "unknown order", "failed to load subscription")
	}

	outcome := n.Outcome()
	s.metrics.RecordPaymentWebhook(strings.ToLower(string(outcome)))
	now := s.now()

	switch outcome {
	case payment.OutcomePaid:
		plan, ok := planFromOrder(n.OrderID)
		if !ok {
			plan = sub.Plan
		}
		amount, err := n.Amount()
		if err != nil || amount < s.cfg.Price(plan) {
			s.logger.Warn("payment amount does not cover plan", zap.String("order_id", n.OrderID), zap.String("gross_amount", n.GrossAmount))
			return invalidInput("payment amount does not match plan price")
		}
		base := now
		if sub.ActiveAt(now) {
			base = *sub.ExpiresAt
		}
		expires := base.Add(plan.Duration())
		sub.Plan = plan
		sub.Status = models.SubscriptionActive
		sub.ExpiresAt = &expires
	case payment.OutcomeCancelled, payment.OutcomeFailed, payment.OutcomeRefunded:
		if outcome == payment.OutcomeRefunded || !sub.ActiveAt(now) {
			sub.Status = models.SubscriptionCancelled
		}
	case payment.OutcomeExpired:
		if !sub.ActiveAt(now) {
			sub.Status = models.SubscriptionExpired
		}
	default:
		return nil
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return internalError(err, "failed to update subscription")
	}
	s.logger.Info("subscription updated",
		zap.String("user_id", sub.UserID),
		zap.String("order_id", n.OrderID),
		zap.String("status", string(sub.Status)),
	)
	return nil
}

func newOrderID(plan models.SubscriptionPlan) string {
	return fmt.Sprintf("SUB-%s-%s", plan, strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

func planFromOrder(orderID string) (models.SubscriptionPlan, bool) {
	parts := strings.Split(orderID, "-")
	if len(parts) != 3 || parts[0] != "SUB" {
		return "", false
	}
	plan := models.SubscriptionPlan(parts[1])
	return plan, plan.Valid()
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if i := strings.LastIndex(full, " "); i > 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}
