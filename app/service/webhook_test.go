package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vibast-solutions/ms-go-donations/app/provider"
	"github.com/vibast-solutions/ms-go-donations/app/types"
)

func paidSessionEvent(sessionID string) *provider.WebhookEvent {
	return &provider.WebhookEvent{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		Session: &provider.CheckoutSession{
			ID:              sessionID,
			PaymentStatus:   "paid",
			AmountTotal:     2550,
			Currency:        "usd",
			Created:         1700000000,
			PaymentIntentID: "pi_1",
		},
	}
}

func webhookRequest() *types.StripeWebhookRequest {
	return &types.StripeWebhookRequest{Signature: "t=1,v1=abc", Payload: []byte(`{"id":"evt_1"}`)}
}

func TestHandleStripeWebhookInvalidSignature(t *testing.T) {
	calls := []string{}
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return nil, provider.ErrInvalidSignature
		},
	}
	markers := newFakeMarkerStore(&calls)
	svc := newTestService(p, markers, &fakeNotifier{calls: &calls})

	_, err := svc.HandleStripeWebhook(context.Background(), webhookRequest())
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected no store or notifier calls, got %v", calls)
	}
}

func TestHandleStripeWebhookUnparsableEvent(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return nil, errors.New("parse webhook event: unexpected end of JSON input")
		},
	}
	svc := newTestService(p, newFakeMarkerStore(nil), &fakeNotifier{})

	_, err := svc.HandleStripeWebhook(context.Background(), webhookRequest())
	if !errors.Is(err, ErrEventUnparsable) {
		t.Fatalf("expected ErrEventUnparsable, got %v", err)
	}
}

func TestHandleStripeWebhookIgnoresOtherEventKinds(t *testing.T) {
	calls := []string{}
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return &provider.WebhookEvent{ID: "evt_2", Type: "payment_intent.succeeded"}, nil
		},
	}
	svc := newTestService(p, newFakeMarkerStore(&calls), &fakeNotifier{calls: &calls})

	result, err := svc.HandleStripeWebhook(context.Background(), webhookRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.AlreadyProcessed {
		t.Fatal("expected plain ack")
	}
	if len(calls) != 0 {
		t.Fatalf("expected no side effects, got %v", calls)
	}
}

func TestHandleStripeWebhookNotifiesThenMarks(t *testing.T) {
	calls := []string{}
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return paidSessionEvent("cs_1"), nil
		},
		intentFn: func(context.Context, string) (*provider.PaymentIntent, error) {
			return &provider.PaymentIntent{ID: "pi_1", Metadata: map[string]string{"donor_note": "keep going"}}, nil
		},
	}
	markers := newFakeMarkerStore(&calls)
	n := &fakeNotifier{calls: &calls}
	svc := newTestService(p, markers, n)

	result, err := svc.HandleStripeWebhook(context.Background(), webhookRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.AlreadyProcessed {
		t.Fatal("expected first delivery to process")
	}

	want := []string{"is_processed:cs_1", "notify", "mark:cs_1"}
	if len(calls) != len(want) {
		t.Fatalf("unexpected calls: %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("unexpected call order: %v", calls)
		}
	}

	if len(n.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(n.messages))
	}
	if !strings.Contains(n.messages[0], "Amount: 25.50 USD") {
		t.Fatalf("unexpected message: %q", n.messages[0])
	}
	if !strings.Contains(n.messages[0], "Note from Donor: keep going") {
		t.Fatalf("unexpected message: %q", n.messages[0])
	}
}

func TestHandleStripeWebhookDuplicateDelivery(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return paidSessionEvent("cs_1"), nil
		},
	}
	markers := newFakeMarkerStore(nil)
	n := &fakeNotifier{}
	svc := newTestService(p, markers, n)
	ctx := context.Background()

	first, err := svc.HandleStripeWebhook(ctx, webhookRequest())
	if err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if first.AlreadyProcessed {
		t.Fatal("expected first delivery to process")
	}

	second, err := svc.HandleStripeWebhook(ctx, webhookRequest())
	if err != nil {
		t.Fatalf("second delivery failed: %v", err)
	}
	if !second.AlreadyProcessed {
		t.Fatal("expected second delivery to be deduplicated")
	}

	if len(n.messages) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(n.messages))
	}
}

func TestHandleStripeWebhookUnpaidSession(t *testing.T) {
	event := paidSessionEvent("cs_1")
	event.Session.PaymentStatus = "unpaid"
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return event, nil
		},
	}
	markers := newFakeMarkerStore(nil)
	n := &fakeNotifier{}
	svc := newTestService(p, markers, n)

	result, err := svc.HandleStripeWebhook(context.Background(), webhookRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.AlreadyProcessed {
		t.Fatal("expected plain ack")
	}
	if len(n.messages) != 0 {
		t.Fatal("expected no notification for unpaid session")
	}
	if markers.processed["cs_1"] {
		t.Fatal("expected no marker for unpaid session")
	}
}

func TestHandleStripeWebhookNotificationFailureStillMarks(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return paidSessionEvent("cs_1"), nil
		},
	}
	markers := newFakeMarkerStore(nil)
	n := &fakeNotifier{err: errors.New("telegram unavailable")}
	svc := newTestService(p, markers, n)

	result, err := svc.HandleStripeWebhook(context.Background(), webhookRequest())
	if err != nil {
		t.Fatalf("expected notification failure to be swallowed, got %v", err)
	}
	if result.AlreadyProcessed {
		t.Fatal("expected plain ack")
	}
	if !markers.processed["cs_1"] {
		t.Fatal("expected marker despite notification failure")
	}
}

func TestHandleStripeWebhookIntentFetchFailureDropsNote(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return paidSessionEvent("cs_1"), nil
		},
		intentFn: func(context.Context, string) (*provider.PaymentIntent, error) {
			return nil, &provider.APIError{StatusCode: 404, Message: "No such payment_intent"}
		},
	}
	markers := newFakeMarkerStore(nil)
	n := &fakeNotifier{}
	svc := newTestService(p, markers, n)

	if _, err := svc.HandleStripeWebhook(context.Background(), webhookRequest()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(n.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(n.messages))
	}
	if strings.Contains(n.messages[0], "Note from Donor") {
		t.Fatalf("expected no note line, got %q", n.messages[0])
	}
}

func TestHandleStripeWebhookStoreError(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(context.Context, []byte, string) (*provider.WebhookEvent, error) {
			return paidSessionEvent("cs_1"), nil
		},
	}
	markers := newFakeMarkerStore(nil)
	markers.getErr = errors.New("redis unavailable")
	svc := newTestService(p, markers, &fakeNotifier{})

	if _, err := svc.HandleStripeWebhook(context.Background(), webhookRequest()); err == nil {
		t.Fatal("expected store error to surface")
	}
}
