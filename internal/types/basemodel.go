package types

import (
	"context"
	"time"
)

// BaseModel carries the audit columns shared by every ledger table
type BaseModel struct {
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
}

func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	actor := GetActor(ctx)
	return BaseModel{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
	}
}

// Touch stamps an update by the actor of ctx
func (b *BaseModel) Touch(ctx context.Context, now time.Time) {
	b.UpdatedAt = now.UTC()
	b.UpdatedBy = GetActor(ctx)
}
