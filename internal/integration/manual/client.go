package manual

import (
	"context"
	"net/http"

	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/integration/base"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/types"
)

// Client is the offline payment path. Nothing is sent anywhere: the payment waits
// for an operator to approve or fail it.
type Client struct {
	logger *logger.Logger
}

func NewClient(logger *logger.Logger) *Client {
	return &Client{logger: logger}
}

var _ base.Provider = (*Client)(nil)

func (c *Client) Name() types.PaymentProvider {
	return types.PaymentProviderManual
}

func (c *Client) IsConfigured() bool {
	return true
}

// CreateCharge issues no provider reference and no redirect
func (c *Client) CreateCharge(ctx context.Context, req *base.ChargeRequest) (*base.ChargeResult, error) {
	c.logger.Infow("manual charge recorded, awaiting operator approval",
		"payment_id", req.PaymentID,
		"amount", req.Amount.String(),
		"currency", req.Currency)
	return &base.ChargeResult{}, nil
}

func (c *Client) CreateRecurringAgreement(ctx context.Context, req *base.AgreementRequest) (*base.ChargeResult, error) {
	return nil, ierr.NewError("manual payments cannot renew automatically").
		WithHint("Recurring agreements are not supported for manual payments").
		WithReportableDetails(map[string]any{
			"payment_id": req.PaymentID,
		}).
		Mark(ierr.ErrValidation)
}

// CancelRecurring is a no-op, there is never an agreement to stop
func (c *Client) CancelRecurring(ctx context.Context, agreementID string) error {
	return nil
}

func (c *Client) NormalizeWebhook(ctx context.Context, headers http.Header, payload []byte) (*base.NormalizedEvent, error) {
	return nil, ierr.NewError("manual payments have no webhooks").
		WithHint("Manual payments are resolved through approval, not webhooks").
		Mark(ierr.ErrValidation)
}
