package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/recurring/internal/domain/label"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
)

var _ label.Repository = (*InMemoryLabelStore)(nil)

// InMemoryLabelStore implements label.Repository
type InMemoryLabelStore struct {
	*InMemoryStore[*label.EnterpriseLabel]
	mu      sync.RWMutex
	members map[string][]*label.Member
}

func NewInMemoryLabelStore() *InMemoryLabelStore {
	return &InMemoryLabelStore{
		InMemoryStore: NewInMemoryStore[*label.EnterpriseLabel](),
		members:       make(map[string][]*label.Member),
	}
}

func (s *InMemoryLabelStore) Create(ctx context.Context, l *label.EnterpriseLabel) error {
	if _, exists := s.Find(ctx, func(existing *label.EnterpriseLabel) bool {
		return existing.Code == l.Code
	}); exists {
		return ierr.NewErrorf("label %s already exists", l.Code).
			WithHint("Label code already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	c := *l
	return s.InMemoryStore.Create(ctx, l.ID, &c)
}

func (s *InMemoryLabelStore) Get(ctx context.Context, id string) (*label.EnterpriseLabel, error) {
	l, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("Label", map[string]any{"label_id": id})
	}
	c := *l
	return &c, nil
}

func (s *InMemoryLabelStore) GetByCode(ctx context.Context, code string) (*label.EnterpriseLabel, error) {
	l, ok := s.Find(ctx, func(l *label.EnterpriseLabel) bool {
		return l.Code == code
	})
	if !ok {
		return nil, notFound("Label", map[string]any{"code": code})
	}
	c := *l
	return &c, nil
}

func (s *InMemoryLabelStore) List(ctx context.Context) ([]*label.EnterpriseLabel, error) {
	return s.InMemoryStore.List(ctx, nil, nil, func(a, b *label.EnterpriseLabel) bool {
		return a.Name < b.Name
	})
}

func (s *InMemoryLabelStore) AddMembers(ctx context.Context, labelID string, accountIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, accountID := range lo.Uniq(accountIDs) {
		exists := lo.ContainsBy(s.members[labelID], func(m *label.Member) bool {
			return m.AccountID == accountID
		})
		if exists {
			continue
		}
		s.members[labelID] = append(s.members[labelID], &label.Member{
			LabelID:   labelID,
			AccountID: accountID,
			CreatedAt: now,
			CreatedBy: types.GetActor(ctx),
		})
	}
	return nil
}

func (s *InMemoryLabelStore) RemoveMember(ctx context.Context, labelID string, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.members[labelID]
	kept := lo.Reject(members, func(m *label.Member, _ int) bool {
		return m.AccountID == accountID
	})
	if len(kept) == len(members) {
		return notFound("Label member", map[string]any{
			"label_id":   labelID,
			"account_id": accountID,
		})
	}
	s.members[labelID] = kept
	return nil
}

func (s *InMemoryLabelStore) ListMembers(ctx context.Context, labelID string) ([]*label.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.members[labelID], func(m *label.Member, _ int) *label.Member {
		c := *m
		return &c
	}), nil
}

// Clear resets all stored data
func (s *InMemoryLabelStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InMemoryStore.Clear()
	s.members = make(map[string][]*label.Member)
}
