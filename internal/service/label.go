package service

import (
	"context"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/domain/label"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

// LabelService manages enterprise labels and their membership
type LabelService interface {
	CreateLabel(ctx context.Context, req dto.CreateLabelRequest) (*dto.LabelResponse, error)
	GetLabel(ctx context.Context, id string) (*dto.LabelResponse, error)
	ListLabels(ctx context.Context) (*dto.ListLabelsResponse, error)
	AddMembers(ctx context.Context, labelID string, req dto.AddLabelMembersRequest) (*dto.ListLabelMembersResponse, error)
	RemoveMember(ctx context.Context, labelID, accountID string) error
	ListMembers(ctx context.Context, labelID string) (*dto.ListLabelMembersResponse, error)
}

type labelService struct {
	ServiceParams
}

func NewLabelService(params ServiceParams) LabelService {
	return &labelService{ServiceParams: params}
}

func (s *labelService) CreateLabel(ctx context.Context, req dto.CreateLabelRequest) (*dto.LabelResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l := req.ToLabel(ctx)
	if err := s.LabelRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.Logger.Infow("created enterprise label", "label_id", l.ID, "code", l.Code)
	return &dto.LabelResponse{EnterpriseLabel: l}, nil
}

func (s *labelService) GetLabel(ctx context.Context, id string) (*dto.LabelResponse, error) {
	if id == "" {
		return nil, ierr.NewError("label id is required").
			WithHint("Label ID is required").
			Mark(ierr.ErrValidation)
	}
	l, err := s.LabelRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.LabelResponse{EnterpriseLabel: l}, nil
}

func (s *labelService) ListLabels(ctx context.Context) (*dto.ListLabelsResponse, error) {
	labels, err := s.LabelRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ListLabelsResponse{
		Items: lo.Map(labels, func(l *label.EnterpriseLabel, _ int) *dto.LabelResponse {
			return &dto.LabelResponse{EnterpriseLabel: l}
		}),
		Pagination: types.NewPaginationResponse(len(labels), len(labels), 0),
	}, nil
}

func (s *labelService) AddMembers(ctx context.Context, labelID string, req dto.AddLabelMembersRequest) (*dto.ListLabelMembersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.LabelRepo.Get(ctx, labelID); err != nil {
		return nil, err
	}

	if err := s.LabelRepo.AddMembers(ctx, labelID, req.AccountIDs); err != nil {
		return nil, err
	}

	s.Logger.Infow("added label members", "label_id", labelID, "count", len(req.AccountIDs))
	return s.ListMembers(ctx, labelID)
}

func (s *labelService) RemoveMember(ctx context.Context, labelID, accountID string) error {
	if _, err := s.LabelRepo.Get(ctx, labelID); err != nil {
		return err
	}
	return s.LabelRepo.RemoveMember(ctx, labelID, accountID)
}

func (s *labelService) ListMembers(ctx context.Context, labelID string) (*dto.ListLabelMembersResponse, error) {
	if _, err := s.LabelRepo.Get(ctx, labelID); err != nil {
		return nil, err
	}

	members, err := s.LabelRepo.ListMembers(ctx, labelID)
	if err != nil {
		return nil, err
	}
	return &dto.ListLabelMembersResponse{
		Items: lo.Map(members, func(m *label.Member, _ int) *dto.LabelMemberResponse {
			return &dto.LabelMemberResponse{Member: m}
		}),
		Pagination: types.NewPaginationResponse(len(members), len(members), 0),
	}, nil
}
