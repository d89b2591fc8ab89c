package testutil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flexprice/recurring/internal/domain/payment"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

var _ payment.Repository = (*InMemoryPaymentStore)(nil)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

// copyPayment detaches the stored row from the caller, metadata included
func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	c := *p
	if raw, err := json.Marshal(p.Metadata); err == nil {
		var md payment.Metadata
		if err := json.Unmarshal(raw, &md); err == nil {
			c.Metadata = md
		}
	}
	return &c
}

func (s *InMemoryPaymentStore) externalIDTaken(ctx context.Context, p *payment.Payment) bool {
	if p.ExternalID == nil {
		return false
	}
	_, taken := s.Find(ctx, func(existing *payment.Payment) bool {
		return existing.ID != p.ID &&
			existing.Provider == p.Provider &&
			lo.FromPtr(existing.ExternalID) == *p.ExternalID
	})
	return taken
}

func duplicateExternalID(p *payment.Payment) error {
	return ierr.NewErrorf("payment with external id %s already exists", p.GetExternalID()).
		WithHint("Payment already exists").
		WithReportableDetails(map[string]any{
			"provider":    p.Provider,
			"external_id": p.GetExternalID(),
		}).
		Mark(ierr.ErrAlreadyExists)
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if err := p.Metadata.Validate(); err != nil {
		return err
	}
	if s.externalIDTaken(ctx, p) {
		return duplicateExternalID(p)
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("Payment", map[string]any{"payment_id": id})
	}
	return copyPayment(p), nil
}

func (s *InMemoryPaymentStore) GetForUpdate(ctx context.Context, id string) (*payment.Payment, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryPaymentStore) GetByExternalID(ctx context.Context, provider types.PaymentProvider, externalID string) (*payment.Payment, error) {
	p, ok := s.Find(ctx, func(p *payment.Payment) bool {
		return p.Provider == provider && lo.FromPtr(p.ExternalID) == externalID
	})
	if !ok {
		return nil, notFound("Payment", map[string]any{
			"provider":    provider,
			"external_id": externalID,
		})
	}
	return copyPayment(p), nil
}

func (s *InMemoryPaymentStore) GetByExternalIDForUpdate(ctx context.Context, provider types.PaymentProvider, externalID string) (*payment.Payment, error) {
	return s.GetByExternalID(ctx, provider, externalID)
}

func (s *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	if err := p.Metadata.Validate(); err != nil {
		return err
	}
	if s.externalIDTaken(ctx, p) {
		return duplicateExternalID(p)
	}
	next := copyPayment(p)
	next.Version = p.Version + 1
	err := s.CompareAndSwap(ctx, p.ID, next, func(stored *payment.Payment) error {
		if stored.Version != p.Version {
			return versionConflict("Payment", p.ID, p.Version)
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.Version++
	return nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	items, err := s.InMemoryStore.List(ctx, filter.QueryFilter, func(_ context.Context, p *payment.Payment, _ interface{}) bool {
		return paymentMatches(p, filter)
	}, func(a, b *payment.Payment) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *payment.Payment, _ int) *payment.Payment {
		return copyPayment(p)
	}), nil
}

func paymentMatches(p *payment.Payment, f *types.PaymentFilter) bool {
	if f.AccountID != "" && p.AccountID != f.AccountID {
		return false
	}
	if f.SubscriptionID != "" && p.GetSubscriptionID() != f.SubscriptionID {
		return false
	}
	if f.LabelID != "" && lo.FromPtr(p.LabelID) != f.LabelID {
		return false
	}
	if f.Provider != "" && p.Provider != f.Provider {
		return false
	}
	if f.AgreementID != "" && (p.Metadata.Simple == nil || p.Metadata.Simple.AgreementID != f.AgreementID) {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, p.Status) {
		return false
	}
	return true
}

func (s *InMemoryPaymentStore) CountFailedSince(ctx context.Context, subscriptionID string, since time.Time) (int, error) {
	return s.Count(ctx, nil, func(_ context.Context, p *payment.Payment, _ interface{}) bool {
		return p.GetSubscriptionID() == subscriptionID &&
			p.Status == types.PaymentStatusFailed &&
			p.FailedAt != nil && !p.FailedAt.Before(since) &&
			lo.FromPtr(p.FailureReason) != types.FailureReasonExpired
	})
}
