package models

import "time"

// SubscriptionPlan is the billing cadence of a subscription.
type SubscriptionPlan string

const (
	PlanMonthly SubscriptionPlan = "MONTHLY"
	PlanYearly  SubscriptionPlan = "YEARLY"
)

// Valid reports whether the plan is supported.
func (p SubscriptionPlan) Valid() bool {
	return p == PlanMonthly || p == PlanYearly
}

// Duration returns how long one payment extends the subscription.
func (p SubscriptionPlan) Duration() time.Duration {
	if p == PlanYearly {
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// SubscriptionStatus captures the subscription lifecycle.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "PENDING"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription gates access to the dashboard for one user.
type Subscription struct {
	ID        string             `db:"id" json:"id"`
	UserID    string             `db:"user_id" json:"user_id"`
	Plan      SubscriptionPlan   `db:"plan" json:"plan"`
	Status    SubscriptionStatus `db:"status" json:"status"`
	OrderID   *string            `db:"order_id" json:"order_id,omitempty"`
	ExpiresAt *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the subscription grants access at instant t.
func (s *Subscription) ActiveAt(t time.Time) bool {
	if s == nil || s.Status != SubscriptionActive || s.ExpiresAt == nil {
		return false
	}
	return t.Before(*s.ExpiresAt)
}

// PaymentEvent is the raw log of a payment provider notification.
type PaymentEvent struct {
	ID                string    `db:"id" json:"id"`
	Provider          string    `db:"provider" json:"provider"`
	OrderID           string    `db:"order_id" json:"order_id"`
	TransactionStatus string    `db:"transaction_status" json:"transaction_status"`
	Payload           []byte    `db:"payload" json:"-"`
	ReceivedAt        time.Time `db:"received_at" json:"received_at"`
}

// CheckoutRequest starts a payment for a plan.
type CheckoutRequest struct {
	Plan SubscriptionPlan `json:"plan" validate:"required,oneof=MONTHLY YEARLY"`
}

// CheckoutResponse points the client to the hosted payment page.
type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}
