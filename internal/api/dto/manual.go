package dto

import (
	"time"

	"github.com/flexprice/recurring/internal/domain/payment"
	"github.com/flexprice/recurring/internal/validator"
)

// ApproveManualPaymentRequest confirms an offline payment received by an operator
type ApproveManualPaymentRequest struct {
	PaymentID string     `json:"payment_id" validate:"required"`
	Reference string     `json:"reference,omitempty" validate:"omitempty,max=255"`
	PayerName string     `json:"payer_name,omitempty" validate:"omitempty,max=255"`
	Notes     string     `json:"notes,omitempty" validate:"omitempty,max=1000"`
	PaidOn    *time.Time `json:"paid_on,omitempty"`
}

func (r *ApproveManualPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ManualFields returns the offline payment details entered with the approval, if any
func (r *ApproveManualPaymentRequest) ManualFields() *payment.ManualPaymentFields {
	if r.Reference == "" && r.PayerName == "" && r.Notes == "" && r.PaidOn == nil {
		return nil
	}
	return &payment.ManualPaymentFields{
		Reference: r.Reference,
		PayerName: r.PayerName,
		Notes:     r.Notes,
		PaidOn:    r.PaidOn,
	}
}

// FailManualPaymentRequest rejects an offline payment
type FailManualPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=1000"`
	// ExpireSubscriptions force-expires every seat or the subscription the payment funds
	ExpireSubscriptions bool `json:"expire_subscriptions"`
}

func (r *FailManualPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}
