package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/payment"
)

const testServerKey = "server-key"

type fakeSubscriptions struct {
	byUser map[string]*models.Subscription
	events map[string]bool
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{byUser: map[string]*models.Subscription{}, events: map[string]bool{}}
}

func (f *fakeSubscriptions) FindByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, ok := f.byUser[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubscriptions) FindByOrderID(ctx context.Context, orderID string) (*models.Subscription, error) {
	for _, sub := range f.byUser {
		if sub.OrderID != nil && *sub.OrderID == orderID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubscriptions) Upsert(ctx context.Context, sub *models.Subscription) error {
	cp := *sub
	f.byUser[sub.UserID] = &cp
	return nil
}

func (f *fakeSubscriptions) RecordEvent(ctx context.Context, evt *models.PaymentEvent) (bool, error) {
	key := evt.Provider + "|" + evt.OrderID + "|" + evt.TransactionStatus
	if f.events[key] {
		return false, nil
	}
	f.events[key] = true
	return true, nil
}

type fakeGateway struct {
	requests []payment.CheckoutRequest
	err      error
}

func (g *fakeGateway) Checkout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &payment.CheckoutResult{Token: "snap-token", RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func (g *fakeGateway) Verify(n payment.Notification) error {
	if n.SignatureKey != payment.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey) {
		return payment.ErrInvalidSignature
	}
	return nil
}

type fakeUsers map[string]*models.User

func (f fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type subscriptionFixture struct {
	svc     *SubscriptionService
	repo    *fakeSubscriptions
	gateway *fakeGateway
	now     time.Time
}

func newSubscriptionFixture() subscriptionFixture {
	repo := newFakeSubscriptions()
	gateway := &fakeGateway{}
	users := fakeUsers{owner.UserID: {ID: owner.UserID, Email: "jane@school.example", FullName: "Jane Mary Doe"}}
	svc := NewSubscriptionService(repo, users, gateway, NewMetricsService(), nil, nil, SubscriptionConfig{MonthlyPrice: 50000, YearlyPrice: 500000})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return subscriptionFixture{svc: svc, repo: repo, gateway: gateway, now: now}
}

func signed(orderID, status, amount string) payment.Notification {
	return payment.Notification{
		OrderID:           orderID,
		TransactionStatus: status,
		StatusCode:        "200",
		GrossAmount:       amount,
		SignatureKey:      payment.Signature(orderID, "200", amount, testServerKey),
	}
}

func TestSubscriptionCheckout(t *testing.T) {
	f := newSubscriptionFixture()
	ctx := context.Background()

	current, err := f.svc.Current(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionExpired, current.Status)

	resp, err := f.svc.Checkout(ctx, owner.UserID, models.CheckoutRequest{Plan: models.PlanMonthly})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.OrderID, "SUB-MONTHLY-"))
	assert.Equal(t, "snap-token", resp.Token)
	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, int64(50000), f.gateway.requests[0].Amount)
	assert.Equal(t, "Jane Mary", f.gateway.requests[0].Customer.FirstName)
	assert.Equal(t, "Doe", f.gateway.requests[0].Customer.LastName)

	stored := f.repo.byUser[owner.UserID]
	assert.Equal(t, models.SubscriptionPending, stored.Status)
	assert.Equal(t, resp.OrderID, *stored.OrderID)

	_, err = f.svc.Checkout(ctx, owner.UserID, models.CheckoutRequest{Plan: "WEEKLY"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	f.gateway.err = payment.ErrNotConfigured
	_, err = f.svc.Checkout(ctx, owner.UserID, models.CheckoutRequest{Plan: models.PlanYearly})
	assert.True(t, errors.Is(err, appErrors.ErrPaymentProvider))
}

func TestSubscriptionNotificationActivatesAndExtends(t *testing.T) {
	f := newSubscriptionFixture()
	ctx := context.Background()
	resp, err := f.svc.Checkout(ctx, owner.UserID, models.CheckoutRequest{Plan: models.PlanMonthly})
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleNotification(ctx, signed(resp.OrderID, "settlement", "50000.00"), nil))
	active, err := f.svc.IsActive(ctx, owner.UserID)
	require.NoError(t, err)
	assert.True(t, active)
	first := *f.repo.byUser[owner.UserID].ExpiresAt
	assert.Equal(t, f.now.Add(30*24*time.Hour), first)

	// replay is acknowledged without extending again
	require.NoError(t, f.svc.HandleNotification(ctx, signed(resp.OrderID, "settlement", "50000.00"), nil))
	assert.Equal(t, first, *f.repo.byUser[owner.UserID].ExpiresAt)

	renewal, err := f.svc.Checkout(ctx, owner.UserID, models.CheckoutRequest{Plan: models.PlanMonthly})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, f.repo.byUser[owner.UserID].Status)
	require.NoError(t, f.svc.HandleNotification(ctx, signed(renewal.OrderID, "capture", "50000"), nil))
	assert.Equal(t, first.Add(30*24*time.Hour), *f.repo.byUser[owner.UserID].ExpiresAt)

	// a failed payment for a later order does not revoke access
	retry, err := f.svc.Checkout(ctx, owner.UserID, models.CheckoutRequest{Plan: models.PlanYearly})
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleNotification(ctx, signed(retry.OrderID, "deny", "500000"), nil))
	assert.Equal(t, models.SubscriptionActive, f.repo.byUser[owner.UserID].Status)
}

func TestSubscriptionNotificationRejections(t *testing.T) {
	f := newSubscriptionFixture()
	ctx := context.Background()
	resp, err := f.svc.Checkout(ctx, owner.UserID, models.CheckoutRequest{Plan: models.PlanYearly})
	require.NoError(t, err)

	forged := signed(resp.OrderID, "settlement", "500000")
	forged.SignatureKey = "deadbeef"
	err = f.svc.HandleNotification(ctx, forged, nil)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	err = f.svc.HandleNotification(ctx, signed(resp.OrderID, "settlement", "50000"), nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, models.SubscriptionPending, f.repo.byUser[owner.UserID].Status)

	err = f.svc.HandleNotification(ctx, signed("SUB-MONTHLY-unknown", "settlement", "50000"), nil)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, f.svc.HandleNotification(ctx, signed(resp.OrderID, "expire", "500000"), nil))
	assert.Equal(t, models.SubscriptionExpired, f.repo.byUser[owner.UserID].Status)
}

func TestSubscriptionCurrentReportsLapsedAsExpired(t *testing.T) {
	f := newSubscriptionFixture()
	past := f.now.Add(-time.Hour)
	f.repo.byUser[owner.UserID] = &models.Subscription{UserID: owner.UserID, Plan: models.PlanMonthly, Status: models.SubscriptionActive, ExpiresAt: &past}

	current, err := f.svc.Current(context.Background(), owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionExpired, current.Status)

	active, err := f.svc.IsActive(context.Background(), owner.UserID)
	require.NoError(t, err)
	assert.False(t, active)
}
