package xendit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/httpclient"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

// Client is the invoice style provider adapter
type Client struct {
	config     config.XenditConfig
	httpClient httpclient.Client
	logger     *logger.Logger
}

// NewClient creates a Xendit adapter. Credentials may be empty, in which case
// every call fails with a configuration error.
func NewClient(cfg config.XenditConfig, httpClient httpclient.Client, logger *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

var _ base.Provider = (*Client)(nil)

func (c *Client) Name() types.PaymentProvider {
	return types.PaymentProviderXendit
}

func (c *Client) IsConfigured() bool {
	return c.config.IsConfigured()
}

// CreateCharge creates a hosted invoice for the payment
func (c *Client) CreateCharge(ctx context.Context, req *base.ChargeRequest) (*base.ChargeResult, error) {
	if !c.IsConfigured() {
		return nil, base.NotConfigured(c.Name())
	}

	c.logger.Infow("creating xendit invoice",
		"payment_id", req.PaymentID,
		"amount", req.Amount.String(),
		"currency", req.Currency)

	body := CreateInvoiceRequest{
		ExternalID:         req.PaymentID,
		Amount:             req.Amount,
		Currency:           types.NormalizeCurrency(req.Currency),
		Description:        lo.Ternary(req.Description != "", req.Description, req.InvoiceNumber),
		SuccessRedirectURL: c.config.SuccessURL,
		FailureRedirectURL: c.config.FailureURL,
		Metadata:           req.Metadata,
	}

	var resp InvoiceResponse
	if err := c.makeRequest(ctx, http.MethodPost, invoicesPath, req.IdempotencyKey, body, &resp); err != nil {
		return nil, base.ProviderCallFailed(err, c.Name(), "create invoice")
	}

	c.logger.Infow("created xendit invoice",
		"payment_id", req.PaymentID,
		"invoice_id", resp.ID,
		"status", resp.Status)

	return &base.ChargeResult{
		ExternalID:  resp.ID,
		CheckoutURL: resp.InvoiceURL,
		ExpiresAt:   resp.ExpiryDate,
	}, nil
}

// CreateRecurringAgreement creates a recurring payment plan. Xendit issues the
// agreement id immediately, so it doubles as the checkout payment's reference.
func (c *Client) CreateRecurringAgreement(ctx context.Context, req *base.AgreementRequest) (*base.ChargeResult, error) {
	if !c.IsConfigured() {
		return nil, base.NotConfigured(c.Name())
	}

	intervalCount := 1
	if req.Period == types.BillingPeriodYearly {
		intervalCount = 12
	}

	body := CreateRecurringRequest{
		ExternalID:         req.PaymentID,
		Amount:             req.Amount,
		Currency:           types.NormalizeCurrency(req.Currency),
		Interval:           "MONTH",
		IntervalCount:      intervalCount,
		Description:        lo.Ternary(req.Description != "", req.Description, req.InvoiceNumber),
		SuccessRedirectURL: c.config.SuccessURL,
		FailureRedirectURL: c.config.FailureURL,
	}

	var resp RecurringResponse
	if err := c.makeRequest(ctx, http.MethodPost, recurringPath, req.IdempotencyKey, body, &resp); err != nil {
		return nil, base.ProviderCallFailed(err, c.Name(), "create recurring payment")
	}

	c.logger.Infow("created xendit recurring payment",
		"payment_id", req.PaymentID,
		"recurring_payment_id", resp.ID,
		"status", resp.Status)

	return &base.ChargeResult{
		ExternalID:  resp.ID,
		AgreementID: resp.ID,
		CheckoutURL: resp.LastCreatedInvoiceURL,
	}, nil
}

// CancelRecurring stops a recurring payment plan
func (c *Client) CancelRecurring(ctx context.Context, agreementID string) error {
	if !c.IsConfigured() {
		return base.NotConfigured(c.Name())
	}
	if agreementID == "" {
		return ierr.NewError("agreement id is required").
			WithHint("Recurring agreement reference is missing").
			Mark(ierr.ErrValidation)
	}

	path := fmt.Sprintf("%s/%s/stop!", recurringPath, url.PathEscape(agreementID))
	if err := c.makeRequest(ctx, http.MethodPost, path, "", nil, nil); err != nil {
		return base.ProviderCallFailed(err, c.Name(), "stop recurring payment")
	}

	c.logger.Infow("stopped xendit recurring payment", "recurring_payment_id", agreementID)
	return nil
}

// makeRequest sends an authenticated request to the Xendit API
func (c *Client) makeRequest(ctx context.Context, method, endpoint, idempotencyKey string, body interface{}, response interface{}) error {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Invalid request data").
				Mark(ierr.ErrSystem)
		}
	}

	headers := map[string]string{
		"Accept": "application/json",
	}
	if idempotencyKey != "" {
		headers[IdempotencyKeyHeader] = idempotencyKey
	}

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method:        method,
		URL:           c.config.BaseURL + endpoint,
		Headers:       headers,
		Body:          jsonBody,
		BasicAuthUser: c.config.SecretKey,
	})
	if err != nil {
		fields := []interface{}{"error", err, "method", method, "endpoint", endpoint}
		if httpErr, ok := httpclient.IsHTTPError(err); ok {
			fields = append(fields, "status_code", httpErr.StatusCode, "response_body", string(httpErr.Response))
		}
		c.logger.Errorw("xendit API request failed", fields...)
		return err
	}

	if response != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, response); err != nil {
			c.logger.Errorw("failed to unmarshal xendit response", "error", err, "body", string(resp.Body))
			return ierr.WithError(err).
				WithHint("Invalid response from Xendit").
				Mark(ierr.ErrSystem)
		}
	}
	return nil
}
