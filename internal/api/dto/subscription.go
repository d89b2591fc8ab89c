package dto

import (
	"github.com/flexprice/recurring/internal/domain/subscription"
	"github.com/flexprice/recurring/internal/types"
	"github.com/flexprice/recurring/internal/validator"
)

type SubscriptionResponse struct {
	*subscription.Subscription
}

func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{Subscription: sub}
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

func (r *CancelSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SubscriptionHistoryResponse struct {
	*subscription.History
}

type ListSubscriptionHistoryResponse = types.ListResponse[*SubscriptionHistoryResponse]
