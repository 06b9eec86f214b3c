package provider

import (
	"context"
	"errors"
	"fmt"
)

var ErrInvalidSignature = errors.New("invalid stripe signature")

type CreateSessionInput struct {
	ReferenceID string
	ProductName string
	AmountCents int64
	Currency    string
	Note        string
	SuccessURL  string
	CancelURL   string
}

type CreateSessionOutput struct {
	SessionID   string
	CheckoutURL string
}

// CheckoutSession is the subset of Stripe's checkout session object the
// webhook flow consumes.
type CheckoutSession struct {
	ID              string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	Created         int64
	CustomerEmail   string
	PaymentIntentID string
}

type WebhookEvent struct {
	ID      string
	Type    string
	Session *CheckoutSession
}

type PaymentIntent struct {
	ID       string
	Metadata map[string]string
}

// APIError carries the status Stripe responded with so callers can pass
// it through to their own clients.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe request failed: status=%d message=%s", e.StatusCode, e.Message)
}

type Provider interface {
	CreateCheckoutSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)
	VerifyAndParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}
