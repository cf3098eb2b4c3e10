package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const subscriptionColumns = `id, user_id, plan, status, order_id, expires_at, created_at, updated_at`

// SubscriptionRepository persists subscriptions and the payment event log.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs a SubscriptionRepository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// FindByUser returns the subscription owned by a user.
func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, userID); err != nil {
		return nil, fmt.Errorf("find subscription by user: %w", err)
	}
	return &sub, nil
}

// FindByOrderID returns the subscription that started a checkout order.
func (r *SubscriptionRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE order_id = $1`
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, orderID); err != nil {
		return nil, fmt.Errorf("find subscription by order: %w", err)
	}
	return &sub, nil
}

// Upsert writes the single subscription row of a user.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	const query = `INSERT INTO subscriptions (id, user_id, plan, status, order_id, expires_at, created_at, updated_at)
        VALUES (:id, :user_id, :plan, :status, :order_id, :expires_at, :created_at, :updated_at)
        ON CONFLICT (user_id)
        DO UPDATE SET plan = EXCLUDED.plan, status = EXCLUDED.status, order_id = EXCLUDED.order_id,
            expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// RecordEvent appends a provider notification to the event log. It reports
// false when the same (provider, order, status) triple was already stored.
func (r *SubscriptionRepository) RecordEvent(ctx context.Context, evt *models.PaymentEvent) (bool, error) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.ReceivedAt.IsZero() {
		evt.ReceivedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payment_events (id, provider, order_id, transaction_status, payload, received_at)
        VALUES (:id, :provider, :order_id, :transaction_status, :payload, :received_at)
        ON CONFLICT (provider, order_id, transaction_status) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, evt)
	if err != nil {
		return false, fmt.Errorf("record payment event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("payment event rows affected: %w", err)
	}
	return affected > 0, nil
}
