package postgres

import (
	"context"
	"time"

	"github.com/flexprice/recurring/internal/domain/label"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/postgres"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

const labelColumns = `id, code, name, description, created_at, updated_at, created_by, updated_by`

type labelRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewLabelRepository(db *postgres.DB, logger *logger.Logger) label.Repository {
	return &labelRepository{db: db, logger: logger}
}

func (r *labelRepository) Create(ctx context.Context, l *label.EnterpriseLabel) error {
	query := `
		INSERT INTO enterprise_labels (
			id,
			code,
			name,
			description,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:code,
			:name,
			:description,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, l); err != nil {
		return writeErr(err, "Failed to create enterprise label", map[string]any{
			"code": l.Code,
		})
	}
	return nil
}

func (r *labelRepository) Get(ctx context.Context, id string) (*label.EnterpriseLabel, error) {
	var l label.EnterpriseLabel
	if err := r.db.GetContext(ctx, &l, `SELECT `+labelColumns+` FROM enterprise_labels WHERE id = $1`, id); err != nil {
		return nil, notFoundOr(err, "Enterprise label", map[string]any{"label_id": id})
	}
	return &l, nil
}

func (r *labelRepository) GetByCode(ctx context.Context, code string) (*label.EnterpriseLabel, error) {
	var l label.EnterpriseLabel
	if err := r.db.GetContext(ctx, &l, `SELECT `+labelColumns+` FROM enterprise_labels WHERE code = $1`, code); err != nil {
		return nil, notFoundOr(err, "Enterprise label", map[string]any{"code": code})
	}
	return &l, nil
}

func (r *labelRepository) List(ctx context.Context) ([]*label.EnterpriseLabel, error) {
	var labels []*label.EnterpriseLabel
	if err := r.db.SelectContext(ctx, &labels, `SELECT `+labelColumns+` FROM enterprise_labels ORDER BY created_at DESC`); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list enterprise labels").
			Mark(ierr.ErrDatabase)
	}
	return labels, nil
}

func (r *labelRepository) AddMembers(ctx context.Context, labelID string, accountIDs []string) error {
	accountIDs = lo.Uniq(accountIDs)
	if len(accountIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	members := lo.Map(accountIDs, func(accountID string, _ int) *label.Member {
		return &label.Member{
			LabelID:   labelID,
			AccountID: accountID,
			CreatedAt: now,
			CreatedBy: types.GetActor(ctx),
		}
	})

	query := `
		INSERT INTO label_members (label_id, account_id, created_at, created_by)
		VALUES (:label_id, :account_id, :created_at, :created_by)
		ON CONFLICT (label_id, account_id) DO NOTHING
	`
	if _, err := r.db.NamedExecContext(ctx, query, members); err != nil {
		return writeErr(err, "Failed to add label members", map[string]any{
			"label_id": labelID,
			"count":    len(accountIDs),
		})
	}
	return nil
}

func (r *labelRepository) RemoveMember(ctx context.Context, labelID string, accountID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM label_members WHERE label_id = $1 AND account_id = $2`, labelID, accountID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to remove label member").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewError("label member not found").
			WithHint("Account is not a member of this label").
			WithReportableDetails(map[string]any{
				"label_id":   labelID,
				"account_id": accountID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *labelRepository) ListMembers(ctx context.Context, labelID string) ([]*label.Member, error) {
	var members []*label.Member
	query := `SELECT label_id, account_id, created_at, created_by FROM label_members WHERE label_id = $1 ORDER BY created_at ASC, account_id ASC`
	if err := r.db.SelectContext(ctx, &members, query, labelID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list label members").
			Mark(ierr.ErrDatabase)
	}
	return members, nil
}
