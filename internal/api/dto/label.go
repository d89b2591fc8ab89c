package dto

import (
	"context"

	"github.com/flexprice/recurring/internal/domain/label"
	"github.com/flexprice/recurring/internal/types"
	"github.com/flexprice/recurring/internal/validator"
	"github.com/samber/lo"
)

type CreateLabelRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func (r *CreateLabelRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateLabelRequest) ToLabel(ctx context.Context) *label.EnterpriseLabel {
	l := label.New(ctx, r.Name)
	if r.Description != "" {
		l.Description = lo.ToPtr(r.Description)
	}
	return l
}

type LabelResponse struct {
	*label.EnterpriseLabel
}

type ListLabelsResponse = types.ListResponse[*LabelResponse]

type AddLabelMembersRequest struct {
	AccountIDs []string `json:"account_ids" validate:"required,min=1,dive,required"`
}

func (r *AddLabelMembersRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type LabelMemberResponse struct {
	*label.Member
}

type ListLabelMembersResponse = types.ListResponse[*LabelMemberResponse]
