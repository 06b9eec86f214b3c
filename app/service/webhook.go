package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-donations/app/notifier"
	"github.com/vibast-solutions/ms-go-donations/app/provider"
	"github.com/vibast-solutions/ms-go-donations/app/types"
)

const eventCheckoutSessionCompleted = "checkout.session.completed"

type WebhookResult struct {
	AlreadyProcessed bool
}

// HandleStripeWebhook verifies the delivery, deduplicates it against the
// marker store and, for a first-seen paid session, dispatches the chat
// notification. The marker is written only after the notification has
// been attempted, so a crash in between causes a duplicate notification
// on redelivery rather than a lost one.
func (s *DonationService) HandleStripeWebhook(ctx context.Context, req *types.StripeWebhookRequest) (*WebhookResult, error) {
	event, err := s.provider.VerifyAndParseWebhook(ctx, req.Payload, req.Signature)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidSignature) {
			return nil, ErrSignatureInvalid
		}
		return nil, fmt.Errorf("%w: %v", ErrEventUnparsable, err)
	}

	if event.Type != eventCheckoutSessionCompleted || event.Session == nil {
		return &WebhookResult{}, nil
	}
	session := event.Session

	processed, err := s.markers.IsProcessed(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if processed {
		s.logger.WithField("session_id", session.ID).Info("Checkout session already processed, skipping")
		return &WebhookResult{AlreadyProcessed: true}, nil
	}

	if session.PaymentStatus != "paid" {
		s.logger.WithField("session_id", session.ID).WithField("payment_status", session.PaymentStatus).
			Info("Checkout session completed but not paid, skipping")
		return &WebhookResult{}, nil
	}

	s.notifyDonation(ctx, session)

	if err := s.markers.MarkProcessed(ctx, session.ID); err != nil {
		return nil, err
	}

	return &WebhookResult{}, nil
}

// notifyDonation is best effort: a failed intent fetch degrades to an
// empty donor note, a failed dispatch is logged and swallowed.
func (s *DonationService) notifyDonation(ctx context.Context, session *provider.CheckoutSession) {
	message := notifier.BuildDonationMessage(session, s.fetchDonorNote(ctx, session))
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.logger.WithError(err).WithField("session_id", session.ID).Warn("Donation notification failed")
	}
}

func (s *DonationService) fetchDonorNote(ctx context.Context, session *provider.CheckoutSession) string {
	if session.PaymentIntentID == "" {
		return ""
	}

	intent, err := s.provider.GetPaymentIntent(ctx, session.PaymentIntentID)
	if err != nil {
		s.logger.WithError(err).WithField("payment_intent_id", session.PaymentIntentID).
			Warn("Payment intent fetch failed, continuing without donor note")
		return ""
	}

	return intent.Metadata["donor_note"]
}
