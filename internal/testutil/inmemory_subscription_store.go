package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flexprice/recurring/internal/domain/subscription"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

var _ subscription.Repository = (*InMemorySubscriptionStore)(nil)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
	mu          sync.RWMutex
	history     []*subscription.History
	writeErrors map[string]error
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
		writeErrors:   make(map[string]error),
	}
}

// FailWritesFor makes Create and Update fail with err for accountID
func (s *InMemorySubscriptionStore) FailWritesFor(accountID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErrors[accountID] = err
}

func (s *InMemorySubscriptionStore) writeError(accountID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writeErrors[accountID]
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	c := *sub
	return &c
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.writeError(sub.AccountID); err != nil {
		return err
	}
	if _, exists := s.Find(ctx, func(existing *subscription.Subscription) bool {
		return existing.AccountID == sub.AccountID
	}); exists {
		return ierr.NewErrorf("subscription for account %s already exists", sub.AccountID).
			WithHint("Subscription already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	if sub.Version == 0 {
		sub.Version = 1
	}
	return s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("Subscription", map[string]any{"id": id})
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	return s.Get(ctx, id)
}

func (s *InMemorySubscriptionStore) GetByAccountID(ctx context.Context, accountID string) (*subscription.Subscription, error) {
	sub, ok := s.Find(ctx, func(sub *subscription.Subscription) bool {
		return sub.AccountID == accountID
	})
	if !ok {
		return nil, notFound("Subscription", map[string]any{"account_id": accountID})
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) GetByAccountIDForUpdate(ctx context.Context, accountID string) (*subscription.Subscription, error) {
	return s.GetByAccountID(ctx, accountID)
}

func (s *InMemorySubscriptionStore) GetByExternalAgreementID(ctx context.Context, agreementID string) (*subscription.Subscription, error) {
	sub, ok := s.Find(ctx, func(sub *subscription.Subscription) bool {
		return lo.FromPtr(sub.ExternalAgreementID) == agreementID
	})
	if !ok {
		return nil, notFound("Subscription", map[string]any{"external_agreement_id": agreementID})
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.writeError(sub.AccountID); err != nil {
		return err
	}
	next := copySubscription(sub)
	next.Version = sub.Version + 1
	err := s.CompareAndSwap(ctx, sub.ID, next, func(stored *subscription.Subscription) error {
		if stored.Version != sub.Version {
			return versionConflict("Subscription", sub.ID, sub.Version)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sub.Version++
	return nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	items, err := s.InMemoryStore.List(ctx, filter.QueryFilter, func(_ context.Context, sub *subscription.Subscription, _ interface{}) bool {
		return subscriptionMatches(sub, filter)
	}, func(a, b *subscription.Subscription) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func subscriptionMatches(sub *subscription.Subscription, f *types.SubscriptionFilter) bool {
	if len(f.AccountIDs) > 0 && !lo.Contains(f.AccountIDs, sub.AccountID) {
		return false
	}
	if f.LabelID != "" && lo.FromPtr(sub.LabelID) != f.LabelID {
		return false
	}
	if len(f.Plans) > 0 && !lo.Contains(f.Plans, sub.Plan) {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, sub.Status) {
		return false
	}
	if !withinBounds(sub.TrialEndsAt, f.TrialEndsFrom, f.TrialEndsTo) {
		return false
	}
	if !withinBounds(sub.CurrentPeriodEnd, f.PeriodEndFrom, f.PeriodEndTo) {
		return false
	}
	if f.LapsedBefore != nil {
		lapsed := (sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.Before(*f.LapsedBefore)) ||
			(sub.ExpiresAt != nil && sub.ExpiresAt.Before(*f.LapsedBefore))
		if !lapsed {
			return false
		}
	}
	return true
}

// withinBounds mirrors SQL semantics: a NULL column never satisfies a bound
func withinBounds(v *time.Time, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if v == nil {
		return false
	}
	if from != nil && v.Before(*from) {
		return false
	}
	if to != nil && v.After(*to) {
		return false
	}
	return true
}

func (s *InMemorySubscriptionStore) CreateHistory(ctx context.Context, history *subscription.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *history
	s.history = append(s.history, &c)
	return nil
}

func (s *InMemorySubscriptionStore) ListHistory(ctx context.Context, subscriptionID string) ([]*subscription.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := lo.Filter(s.history, func(h *subscription.History, _ int) bool {
		return h.SubscriptionID == subscriptionID
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Clear resets all stored data
func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InMemoryStore.Clear()
	s.history = nil
	s.writeErrors = make(map[string]error)
}
