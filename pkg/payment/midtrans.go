package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var (
	// ErrInvalidSignature is returned when a notification signature does not match.
	ErrInvalidSignature = errors.New("payment: invalid notification signature")
	// ErrNotConfigured is returned when no server key is configured.
	ErrNotConfigured = errors.New("payment: provider not configured")
)

// Customer identifies the payer on the hosted payment page.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
}

// CheckoutRequest describes a single-item checkout.
type CheckoutRequest struct {
	OrderID  string
	Amount   int64
	ItemID   string
	ItemName string
	Customer Customer
}

// CheckoutResult points the payer to the hosted payment page.
type CheckoutResult struct {
	Token       string
	RedirectURL string
}

// Notification is the payment status callback payload.
type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// Amount parses the gross amount, rounding to the nearest unit.
func (n Notification) Amount() (int64, error) {
	v, err := strconv.ParseFloat(n.GrossAmount, 64)
	if err != nil {
		return 0, fmt.Errorf("parse gross amount: %w", err)
	}
	return int64(v + 0.5), nil
}

// Outcome is the normalised result of a notification.
type Outcome string

const (
	OutcomePaid      Outcome = "PAID"
	OutcomePending   Outcome = "PENDING"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeCancelled Outcome = "CANCELLED"
	OutcomeExpired   Outcome = "EXPIRED"
	OutcomeRefunded  Outcome = "REFUNDED"
	OutcomeUnknown   Outcome = "UNKNOWN"
)

// Outcome maps the transaction and fraud statuses to an Outcome.
func (n Notification) Outcome() Outcome {
	switch strings.ToLower(n.TransactionStatus) {
	case "capture":
		switch strings.ToLower(n.FraudStatus) {
		case "accept", "":
			return OutcomePaid
		case "challenge":
			return OutcomePending
		default:
			return OutcomeFailed
		}
	case "settlement":
		return OutcomePaid
	case "pending":
		return OutcomePending
	case "deny", "failure":
		return OutcomeFailed
	case "cancel":
		return OutcomeCancelled
	case "expire":
		return OutcomeExpired
	case "refund", "partial_refund":
		return OutcomeRefunded
	default:
		return OutcomeUnknown
	}
}

// Signature computes SHA512(order_id + status_code + gross_amount + server_key) as lowercase hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

type snapCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// SnapGateway creates hosted checkouts and verifies notifications.
type SnapGateway struct {
	client    snapCreator
	serverKey string
}

// NewSnapGateway configures a Snap client for sandbox or production.
func NewSnapGateway(serverKey string, production bool) *SnapGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(serverKey, env)
	return &SnapGateway{client: &client, serverKey: serverKey}
}

// Checkout creates a Snap transaction for a single item.
func (g *SnapGateway) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if g == nil || g.serverKey == "" {
		return nil, ErrNotConfigured
	}
	if req.OrderID == "" || req.Amount <= 0 {
		return nil, fmt.Errorf("payment: invalid checkout for order %q", req.OrderID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	itemID := req.ItemID
	if itemID == "" {
		itemID = req.OrderID
	}
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.FirstName,
			LName: req.Customer.LastName,
			Email: req.Customer.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       itemID,
				Price:    req.Amount,
				Qty:      1,
				Name:     truncate(req.ItemName, 50),
				Category: "subscription",
			},
		},
	}

	resp, mErr := g.client.CreateTransaction(snapReq)
	if mErr != nil {
		return nil, fmt.Errorf("create snap transaction: %s", mErr.Message)
	}
	return &CheckoutResult{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// Verify checks the notification signature against the configured server key.
func (g *SnapGateway) Verify(n Notification) error {
	if g == nil || g.serverKey == "" {
		return ErrNotConfigured
	}
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	got := Signature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// truncate keeps at most n characters of s without splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
