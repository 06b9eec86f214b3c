package types

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/labstack/echo/v4"
)

type CreateCheckoutSessionRequest struct {
	Amount     json.Number `json:"amount"`
	Currency   string      `json:"currency"`
	Note       string      `json:"note"`
	SuccessUrl string      `json:"successUrl"`
	CancelUrl  string      `json:"cancelUrl"`
}

func NewCreateCheckoutSessionRequestFromContext(ctx echo.Context) (*CreateCheckoutSessionRequest, error) {
	var body CreateCheckoutSessionRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Currency = strings.TrimSpace(body.Currency)
	body.Note = strings.TrimSpace(body.Note)
	body.SuccessUrl = strings.TrimSpace(body.SuccessUrl)
	body.CancelUrl = strings.TrimSpace(body.CancelUrl)

	return &body, nil
}

func (r *CreateCheckoutSessionRequest) Validate() error {
	if strings.TrimSpace(r.Amount.String()) == "" {
		return errors.New("amount is required")
	}
	amount, err := r.Amount.Float64()
	if err != nil {
		return errors.New("amount must be a number")
	}
	if amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	if r.SuccessUrl == "" {
		return errors.New("successUrl is required")
	}
	if r.CancelUrl == "" {
		return errors.New("cancelUrl is required")
	}
	return nil
}

// AmountCents converts the major-unit amount to Stripe's minor-unit
// integer representation, rounding half up.
func (r *CreateCheckoutSessionRequest) AmountCents() (int64, error) {
	amount, err := r.Amount.Float64()
	if err != nil {
		return 0, err
	}
	return int64(math.Floor(amount*100 + 0.5)), nil
}

type StripeWebhookRequest struct {
	Signature string
	Payload   []byte
}

func NewStripeWebhookRequestFromContext(ctx echo.Context) (*StripeWebhookRequest, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	return &StripeWebhookRequest{
		Signature: strings.TrimSpace(ctx.Request().Header.Get("Stripe-Signature")),
		Payload:   rawBody,
	}, nil
}

func (r *StripeWebhookRequest) Validate() error {
	if r.Signature == "" {
		return errors.New("stripe-signature header is required")
	}
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	return nil
}

type CreateCheckoutSessionResponse struct {
	Id string `json:"id"`
}

type WebhookAckResponse struct {
	Received bool `json:"received"`
}

type WebhookStatusResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
