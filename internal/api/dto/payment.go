package dto

import (
	"github.com/flexprice/recurring/internal/domain/payment"
	"github.com/flexprice/recurring/internal/types"
)

type PaymentResponse struct {
	*payment.Payment
	// EffectiveStatus reports AWAITING_APPROVAL for org invoices waiting on an operator
	EffectiveStatus types.PaymentStatus `json:"effective_status"`
}

// ListPaymentsResponse represents the response for listing payments
type ListPaymentsResponse = types.ListResponse[*PaymentResponse]

func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		Payment:         p,
		EffectiveStatus: p.EffectiveStatus(),
	}
}
