package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-donations/app/factory"
	"github.com/vibast-solutions/ms-go-donations/app/provider"
	"github.com/vibast-solutions/ms-go-donations/app/service"
	"github.com/vibast-solutions/ms-go-donations/app/types"
)

type DonationController struct {
	donationService *service.DonationService
	logger          logrus.FieldLogger
}

func NewDonationController(donationService *service.DonationService) *DonationController {
	return &DonationController{
		donationService: donationService,
		logger:          factory.NewModuleLogger("donations-controller"),
	}
}

func (c *DonationController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *DonationController) CreateCheckoutSession(ctx echo.Context) error {
	req, err := types.NewCreateCheckoutSessionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	out, err := c.donationService.CreateCheckoutSession(ctx.Request().Context(), req)
	if err != nil {
		var apiErr *provider.APIError
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.As(err, &apiErr):
			// Stripe rejected the request; its status and message pass
			// through unchanged.
			return c.writeError(ctx, apiErr.StatusCode, apiErr.Message)
		default:
			c.logger.WithError(err).Error("Create checkout session failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.CreateCheckoutSessionResponse{Id: out.SessionID})
}

func (c *DonationController) StripeWebhook(ctx echo.Context) error {
	req, err := types.NewStripeWebhookRequestFromContext(ctx)
	if err != nil {
		return ctx.String(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return ctx.String(http.StatusBadRequest, err.Error())
	}

	result, err := c.donationService.HandleStripeWebhook(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureInvalid), errors.Is(err, service.ErrEventUnparsable):
			return ctx.String(http.StatusBadRequest, err.Error())
		default:
			c.logger.WithError(err).Error("Webhook processing failed")
			return ctx.String(http.StatusBadRequest, "webhook processing failed")
		}
	}

	if result.AlreadyProcessed {
		return ctx.JSON(http.StatusOK, &types.WebhookStatusResponse{Status: "already_processed"})
	}
	return ctx.JSON(http.StatusOK, &types.WebhookAckResponse{Received: true})
}

func (c *DonationController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
