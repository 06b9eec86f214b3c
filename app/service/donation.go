package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-donations/app/factory"
	"github.com/vibast-solutions/ms-go-donations/app/provider"
	"github.com/vibast-solutions/ms-go-donations/app/types"
	"github.com/vibast-solutions/ms-go-donations/config"
)

type checkoutProvider interface {
	CreateCheckoutSession(ctx context.Context, input *provider.CreateSessionInput) (*provider.CreateSessionOutput, error)
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*provider.PaymentIntent, error)
	VerifyAndParseWebhook(ctx context.Context, payload []byte, signature string) (*provider.WebhookEvent, error)
}

type processedSessionStore interface {
	IsProcessed(ctx context.Context, sessionID string) (bool, error)
	MarkProcessed(ctx context.Context, sessionID string) error
}

type donationNotifier interface {
	Notify(ctx context.Context, text string) error
}

type DonationService struct {
	provider checkoutProvider
	markers  processedSessionStore
	notifier donationNotifier
	cfg      config.DonationsConfig
	logger   logrus.FieldLogger
}

func NewDonationService(
	checkoutProvider checkoutProvider,
	markers processedSessionStore,
	notifier donationNotifier,
	cfg config.DonationsConfig,
) *DonationService {
	return &DonationService{
		provider: checkoutProvider,
		markers:  markers,
		notifier: notifier,
		cfg:      cfg,
		logger:   factory.NewModuleLogger("donations-service"),
	}
}

func (s *DonationService) CreateCheckoutSession(ctx context.Context, req *types.CreateCheckoutSessionRequest) (*provider.CreateSessionOutput, error) {
	amountCents, err := req.AmountCents()
	if err != nil {
		return nil, fmt.Errorf("%w: amount must be a number", ErrInvalidRequest)
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be > 0", ErrInvalidRequest)
	}

	return s.provider.CreateCheckoutSession(ctx, &provider.CreateSessionInput{
		ReferenceID: uuid.NewString(),
		ProductName: s.cfg.ProductName,
		AmountCents: amountCents,
		Currency:    req.Currency,
		Note:        req.Note,
		SuccessURL:  req.SuccessUrl,
		CancelURL:   req.CancelUrl,
	})
}
