package store

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/yodda/internal/domain"
)

// SubscriptionState is the persisted shape of the subscription store.
type SubscriptionState struct {
	Subscriptions []domain.Subscription `json:"subscriptions"`
}

// SubscriptionStore owns the subscriptions, newest first.
type SubscriptionStore struct {
	mu        sync.RWMutex
	subs      []domain.Subscription
	listeners listeners[SubscriptionState]
	now       func() time.Time
}

func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{
		subs: []domain.Subscription{},
		now:  time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (s *SubscriptionStore) Snapshot() SubscriptionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SubscriptionState{Subscriptions: slices.Clone(s.subs)}
}

// Restore replaces the whole state without notifying subscribers.
func (s *SubscriptionStore) Restore(state SubscriptionState) {
	subs := slices.Clone(state.Subscriptions)
	if subs == nil {
		subs = []domain.Subscription{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = subs
}

// Subscribe registers fn to receive a snapshot after every mutation.
// fn runs while the store is locked and must not call back into it.
func (s *SubscriptionStore) Subscribe(fn func(SubscriptionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.add(fn)
}

func (s *SubscriptionStore) commitLocked(subs []domain.Subscription) {
	s.subs = subs
	s.listeners.notify(SubscriptionState{Subscriptions: slices.Clone(subs)})
}

// List returns the subscriptions, newest first.
func (s *SubscriptionStore) List() []domain.Subscription {
	return s.Snapshot().Subscriptions
}

// AddSubscription stores a new subscription in front of the others.
func (s *SubscriptionStore) AddSubscription(in domain.SubscriptionInput) domain.Subscription {
	sub := domain.Subscription{
		ID:                uuid.NewString(),
		Name:              in.Name,
		Category:          in.Category,
		Amount:            in.Amount,
		Currency:          in.Currency,
		BillingCycleType:  in.BillingCycleType,
		BillingCycleValue: in.BillingCycleValue,
		NextBillingDate:   in.NextBillingDate,
		ReminderDays:      in.ReminderDays,
		Notes:             in.Notes,
		IsFreeTrial:       in.IsFreeTrial,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub.CreatedAt = s.now()
	subs := make([]domain.Subscription, 0, len(s.subs)+1)
	subs = append(subs, sub)
	subs = append(subs, s.subs...)
	s.commitLocked(subs)
	return sub
}

// UpdateSubscription merges patch into the subscription with the given id.
// It returns false when the id is unknown.
func (s *SubscriptionStore) UpdateSubscription(id string, patch domain.SubscriptionPatch) (domain.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.subs, func(sub domain.Subscription) bool { return sub.ID == id })
	if i < 0 {
		return domain.Subscription{}, false
	}
	subs := slices.Clone(s.subs)
	subs[i] = patch.Apply(subs[i])
	s.commitLocked(subs)
	return subs[i], true
}

// DeleteSubscription removes a subscription by id.
func (s *SubscriptionStore) DeleteSubscription(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := slices.DeleteFunc(slices.Clone(s.subs), func(sub domain.Subscription) bool { return sub.ID == id })
	s.commitLocked(subs)
}

// Subscription returns the subscription with the given id.
func (s *SubscriptionStore) Subscription(id string) (domain.Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.subs, func(sub domain.Subscription) bool { return sub.ID == id })
	if i < 0 {
		return domain.Subscription{}, false
	}
	return s.subs[i], true
}

// SortedByNextBilling returns the subscriptions ordered by next billing date,
// earliest first. Unparseable dates go last.
func (s *SubscriptionStore) SortedByNextBilling() []domain.Subscription {
	subs := s.List()
	key := func(sub domain.Subscription) (time.Time, bool) {
		t, err := domain.ParseBillingDate(sub.NextBillingDate)
		return t, err == nil
	}
	sort.SliceStable(subs, func(i, j int) bool {
		ti, okI := key(subs[i])
		tj, okJ := key(subs[j])
		if okI != okJ {
			return okI
		}
		return ti.Before(tj)
	})
	return subs
}
