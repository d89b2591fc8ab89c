package label

import (
	"context"
	"time"

	"github.com/flexprice/recurring/internal/types"
)

// EnterpriseLabel groups accounts billed together through one org invoice
type EnterpriseLabel struct {
	ID          string  `db:"id" json:"id"`
	Code        string  `db:"code" json:"code"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`

	types.BaseModel
}

func New(ctx context.Context, name string) *EnterpriseLabel {
	return &EnterpriseLabel{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LABEL),
		Code:      types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_LABEL),
		Name:      name,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

// Member links an account to a label
type Member struct {
	LabelID   string    `db:"label_id" json:"label_id"`
	AccountID string    `db:"account_id" json:"account_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	CreatedBy string    `db:"created_by" json:"created_by"`
}
