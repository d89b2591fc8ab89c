package service

import (
	"context"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/domain/subscription"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService owns the account-facing subscription operations
type SubscriptionService interface {
	// EnsureTrial creates a TRIAL subscription for a trial-eligible account on first login.
	// An existing subscription is returned untouched.
	EnsureTrial(ctx context.Context, accountID string) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, accountID string) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, accountID string, req dto.CancelSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ListHistory(ctx context.Context, accountID string) (*dto.ListSubscriptionHistoryResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func requireAccountID(accountID string) error {
	if accountID == "" {
		return ierr.NewError("account id is required").
			WithHint("Account ID is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (s *subscriptionService) EnsureTrial(ctx context.Context, accountID string) (*dto.SubscriptionResponse, error) {
	if err := requireAccountID(accountID); err != nil {
		return nil, err
	}

	existing, err := s.SubRepo.GetByAccountID(ctx, accountID)
	if err == nil {
		return dto.NewSubscriptionResponse(existing), nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	role, err := s.Identity.GetAccountRole(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !role.IsTrialEligible() {
		return nil, ierr.NewError("account is not eligible for a trial").
			WithHint("This account is not eligible for a trial").
			WithReportableDetails(map[string]any{
				"account_id": accountID,
				"role":       role,
			}).
			Mark(ierr.ErrPermissionDenied)
	}

	sub, err := subscription.NewTrial(ctx, accountID, s.now(), s.Config.Billing.TrialDays)
	if err != nil {
		return nil, err
	}
	sub.Version = 1

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.Create(ctx, sub); err != nil {
			return err
		}
		return s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, sub,
			types.SubscriptionActionTrialStarted, "", "first eligible login", nil))
	})
	if ierr.IsAlreadyExists(err) {
		// another login won the race
		existing, getErr := s.SubRepo.GetByAccountID(ctx, accountID)
		if getErr != nil {
			return nil, getErr
		}
		return dto.NewSubscriptionResponse(existing), nil
	}
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("started trial",
		"account_id", accountID,
		"subscription_id", sub.ID,
		"trial_ends_at", sub.TrialEndsAt)
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, accountID string) (*dto.SubscriptionResponse, error) {
	if err := requireAccountID(accountID); err != nil {
		return nil, err
	}
	sub, err := s.SubRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

// CancelSubscription stops the provider agreement first so a failed provider call leaves
// the subscription unchanged.
func (s *subscriptionService) CancelSubscription(ctx context.Context, accountID string, req dto.CancelSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := requireAccountID(accountID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if sub.IsClosed() {
		return nil, ierr.NewError("subscription is already closed").
			WithHintf("Subscription is already %s", sub.Status).
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"status":          sub.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	// a trial that checkout already linked to an agreement still stops it
	if sub.ExternalAgreementID != nil && sub.Provider != nil {
		provider, err := s.Providers.GetProvider(*sub.Provider)
		if err != nil {
			return nil, err
		}
		if err := provider.CancelRecurring(ctx, *sub.ExternalAgreementID); err != nil {
			return nil, err
		}
	}

	var cancelled *subscription.Subscription
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.SubRepo.GetForUpdate(ctx, sub.ID)
		if err != nil {
			return err
		}
		if current.IsClosed() {
			cancelled = current
			return nil
		}

		oldStatus := current.Status
		now := s.now()
		current.Cancel(now)
		current.Touch(ctx, now)
		if err := s.SubRepo.Update(ctx, current); err != nil {
			return err
		}
		cancelled = current
		return s.SubRepo.CreateHistory(ctx, subscription.NewHistory(ctx, current,
			types.SubscriptionActionCancelled, oldStatus, lo.CoalesceOrEmpty(req.Reason, "cancelled by account"), nil))
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled subscription",
		"account_id", accountID,
		"subscription_id", cancelled.ID,
		"agreement_id", lo.FromPtr(cancelled.ExternalAgreementID))
	return dto.NewSubscriptionResponse(cancelled), nil
}

func (s *subscriptionService) ListHistory(ctx context.Context, accountID string) (*dto.ListSubscriptionHistoryResponse, error) {
	if err := requireAccountID(accountID); err != nil {
		return nil, err
	}
	sub, err := s.SubRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	history, err := s.SubRepo.ListHistory(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ListSubscriptionHistoryResponse{
		Items: lo.Map(history, func(h *subscription.History, _ int) *dto.SubscriptionHistoryResponse {
			return &dto.SubscriptionHistoryResponse{History: h}
		}),
		Pagination: types.NewPaginationResponse(len(history), len(history), 0),
	}, nil
}
