package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com"

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	APIBaseURL                string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

type StripeProvider struct {
	cfg    StripeConfig
	client *http.Client
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = defaultStripeAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.SignatureToleranceSeconds <= 0 {
		cfg.SignatureToleranceSeconds = 300
	}

	return &StripeProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if strings.TrimSpace(p.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	productName := strings.TrimSpace(input.ProductName)
	if productName == "" {
		productName = "Donation"
	}

	values := url.Values{}
	values.Set("mode", "payment")
	values.Set("line_items[0][quantity]", "1")
	values.Set("line_items[0][price_data][currency]", strings.ToLower(strings.TrimSpace(input.Currency)))
	values.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(input.AmountCents, 10))
	values.Set("line_items[0][price_data][product_data][name]", productName)
	values.Set("success_url", strings.TrimSpace(input.SuccessURL))
	values.Set("cancel_url", strings.TrimSpace(input.CancelURL))
	if strings.TrimSpace(input.ReferenceID) != "" {
		values.Set("client_reference_id", strings.TrimSpace(input.ReferenceID))
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		// Attached to the resulting payment intent so the webhook flow
		// can read it back from /v1/payment_intents.
		values.Set("payment_intent_data[metadata][donor_note]", note)
	}

	body, err := p.postForm(ctx, "/v1/checkout/sessions", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	sessionID := strings.TrimSpace(payload.ID)
	if sessionID == "" {
		return nil, errors.New("stripe checkout session id missing")
	}

	return &CreateSessionOutput{
		SessionID:   sessionID,
		CheckoutURL: strings.TrimSpace(payload.URL),
	}, nil
}

func (p *StripeProvider) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		return nil, errors.New("payment intent id is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.APIBaseURL+"/v1/payment_intents/"+url.PathEscape(paymentIntentID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	var payload struct {
		ID       string            `json:"id"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.Metadata == nil {
		payload.Metadata = map[string]string{}
	}

	return &PaymentIntent{
		ID:       strings.TrimSpace(payload.ID),
		Metadata: payload.Metadata,
	}, nil
}

func (p *StripeProvider) VerifyAndParseWebhook(_ context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	if strings.TrimSpace(p.cfg.WebhookSecret) == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}
	if !verifyStripeSignature(payload, signature, p.cfg.WebhookSecret, p.cfg.SignatureToleranceSeconds) {
		return nil, ErrInvalidSignature
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parse webhook event: %w", err)
	}

	result := &WebhookEvent{
		ID:   strings.TrimSpace(event.ID),
		Type: strings.TrimSpace(event.Type),
	}

	if strings.HasPrefix(result.Type, "checkout.session.") {
		session, err := parseCheckoutSession(event.Data.Object)
		if err != nil {
			return nil, fmt.Errorf("parse checkout session: %w", err)
		}
		result.Session = session
	}

	return result, nil
}

func parseCheckoutSession(payload json.RawMessage) (*CheckoutSession, error) {
	var object struct {
		ID              string      `json:"id"`
		PaymentStatus   string      `json:"payment_status"`
		AmountTotal     int64       `json:"amount_total"`
		Currency        string      `json:"currency"`
		Created         int64       `json:"created"`
		CustomerEmail   string      `json:"customer_email"`
		CustomerDetails struct {
			Email string `json:"email"`
		} `json:"customer_details"`
		PaymentIntent interface{} `json:"payment_intent"`
	}
	if err := json.Unmarshal(payload, &object); err != nil {
		return nil, err
	}
	if strings.TrimSpace(object.ID) == "" {
		return nil, errors.New("checkout session id missing")
	}

	email := strings.TrimSpace(object.CustomerDetails.Email)
	if email == "" {
		email = strings.TrimSpace(object.CustomerEmail)
	}

	return &CheckoutSession{
		ID:              strings.TrimSpace(object.ID),
		PaymentStatus:   strings.TrimSpace(object.PaymentStatus),
		AmountTotal:     object.AmountTotal,
		Currency:        strings.TrimSpace(object.Currency),
		Created:         object.Created,
		CustomerEmail:   email,
		PaymentIntentID: parseStringish(object.PaymentIntent),
	}, nil
}

func (p *StripeProvider) postForm(ctx context.Context, path string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBaseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

func newAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := ""
	if json.Unmarshal(body, &payload) == nil {
		message = strings.TrimSpace(payload.Error.Message)
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	return &APIError{StatusCode: statusCode, Message: message}
}

func verifyStripeSignature(payload []byte, signatureHeader string, webhookSecret string, toleranceSeconds int64) bool {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" || strings.TrimSpace(webhookSecret) == "" {
		return false
	}

	parts := strings.Split(signatureHeader, ",")
	var ts string
	v1 := make([]string, 0, 1)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "t=") {
			ts = strings.TrimSpace(strings.TrimPrefix(part, "t="))
		}
		if strings.HasPrefix(part, "v1=") {
			v1 = append(v1, strings.TrimSpace(strings.TrimPrefix(part, "v1=")))
		}
	}
	if ts == "" || len(v1) == 0 {
		return false
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	now := time.Now().Unix()
	if now-tsUnix > toleranceSeconds || tsUnix-now > toleranceSeconds {
		return false
	}

	signedPayload := []byte(ts + "." + string(payload))
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, _ = mac.Write(signedPayload)
	expected := mac.Sum(nil)

	for _, sig := range v1 {
		candidate, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(candidate, expected) {
			return true
		}
	}

	return false
}

func parseStringish(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}:
		if raw, ok := t["id"]; ok {
			if s, ok := raw.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
