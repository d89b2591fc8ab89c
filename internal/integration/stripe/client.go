package stripe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
)

const defaultRedirectURL = "https://app.example.com/billing"

// Client is the billing-agreement provider adapter backed by Stripe Checkout
type Client struct {
	config config.StripeConfig
	client *stripe.Client
	logger *logger.Logger
}

// NewClient creates a Stripe adapter from explicit configuration
func NewClient(cfg config.StripeConfig, logger *logger.Logger) *Client {
	c := &Client{
		config: cfg,
		logger: logger,
	}
	if cfg.IsConfigured() {
		c.client = stripe.NewClient(cfg.SecretKey, nil)
	}
	return c
}

var _ base.Provider = (*Client)(nil)

func (c *Client) Name() types.PaymentProvider {
	return types.PaymentProviderStripe
}

func (c *Client) IsConfigured() bool {
	return c.client != nil
}

// CreateCharge creates a Checkout Session in payment mode
func (c *Client) CreateCharge(ctx context.Context, req *base.ChargeRequest) (*base.ChargeResult, error) {
	if !c.IsConfigured() {
		return nil, base.NotConfigured(c.Name())
	}

	metadata := c.sessionMetadata(req.PaymentID, req.AccountID, req.Metadata)
	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String(checkoutModePayment),
		ClientReferenceID: stripe.String(req.PaymentID),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(lo.Ternary(req.Description != "", req.Description, req.InvoiceNumber)),
					},
					UnitAmount: stripe.Int64(toMinorUnits(req.Amount, req.Currency)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(lo.Ternary(c.config.SuccessURL != "", c.config.SuccessURL, defaultRedirectURL)),
		CancelURL:  stripe.String(lo.Ternary(c.config.CancelURL != "", c.config.CancelURL, defaultRedirectURL)),
		Metadata:   metadata,
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	session, err := c.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create stripe checkout session",
			"error", err,
			"payment_id", req.PaymentID)
		return nil, base.ProviderCallFailed(err, c.Name(), "create checkout session")
	}

	c.logger.Infow("created stripe checkout session",
		"payment_id", req.PaymentID,
		"session_id", session.ID,
		"amount", req.Amount.String(),
		"currency", req.Currency)

	return &base.ChargeResult{
		ExternalID:  session.ID,
		CheckoutURL: session.URL,
		ExpiresAt:   unixPtr(session.ExpiresAt),
	}, nil
}

// CreateRecurringAgreement creates a Checkout Session in subscription mode with an
// inline recurring price. The subscription id is only known once the session completes.
func (c *Client) CreateRecurringAgreement(ctx context.Context, req *base.AgreementRequest) (*base.ChargeResult, error) {
	if !c.IsConfigured() {
		return nil, base.NotConfigured(c.Name())
	}

	interval := "month"
	if req.Period == types.BillingPeriodYearly {
		interval = "year"
	}

	metadata := c.sessionMetadata(req.PaymentID, req.AccountID, req.Metadata)
	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String(checkoutModeSubscription),
		ClientReferenceID: stripe.String(req.PaymentID),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(lo.Ternary(req.Description != "", req.Description, req.InvoiceNumber)),
					},
					UnitAmount: stripe.Int64(toMinorUnits(req.Amount, req.Currency)),
					Recurring: &stripe.CheckoutSessionCreateLineItemPriceDataRecurringParams{
						Interval: stripe.String(interval),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(lo.Ternary(c.config.SuccessURL != "", c.config.SuccessURL, defaultRedirectURL)),
		CancelURL:  stripe.String(lo.Ternary(c.config.CancelURL != "", c.config.CancelURL, defaultRedirectURL)),
		Metadata:   metadata,
		SubscriptionData: &stripe.CheckoutSessionCreateSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	session, err := c.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create stripe subscription checkout session",
			"error", err,
			"payment_id", req.PaymentID)
		return nil, base.ProviderCallFailed(err, c.Name(), "create subscription checkout session")
	}

	c.logger.Infow("created stripe subscription checkout session",
		"payment_id", req.PaymentID,
		"session_id", session.ID,
		"interval", interval)

	return &base.ChargeResult{
		ExternalID:  session.ID,
		CheckoutURL: session.URL,
		ExpiresAt:   unixPtr(session.ExpiresAt),
	}, nil
}

// CancelRecurring cancels the Stripe subscription immediately
func (c *Client) CancelRecurring(ctx context.Context, agreementID string) error {
	if !c.IsConfigured() {
		return base.NotConfigured(c.Name())
	}
	if agreementID == "" {
		return ierr.NewError("agreement id is required").
			WithHint("Recurring agreement reference is missing").
			Mark(ierr.ErrValidation)
	}

	if _, err := c.client.V1Subscriptions.Cancel(ctx, agreementID, &stripe.SubscriptionCancelParams{}); err != nil {
		c.logger.Errorw("failed to cancel stripe subscription", "error", err, "subscription_id", agreementID)
		return base.ProviderCallFailed(err, c.Name(), fmt.Sprintf("cancel subscription %s", agreementID))
	}

	c.logger.Infow("cancelled stripe subscription", "subscription_id", agreementID)
	return nil
}

func (c *Client) sessionMetadata(paymentID, accountID string, extra map[string]string) map[string]string {
	metadata := map[string]string{
		metadataPaymentID: paymentID,
		metadataAccountID: accountID,
	}
	for k, v := range extra {
		metadata[k] = v
	}
	return metadata
}

func unixPtr(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
