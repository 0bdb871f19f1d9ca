// Package memory is a process-local record store used for demos and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	transactions map[string]core.Transaction
	bills        map[string]core.Bill
	goals        map[string]core.Goal
	investments  map[string]core.Investment
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:          func() time.Time { return time.Now().UTC() },
		transactions: map[string]core.Transaction{},
		bills:        map[string]core.Bill{},
		goals:        map[string]core.Goal{},
		investments:  map[string]core.Investment{},
	}
}

// WithClock replaces the timestamp source, for deterministic tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func newID() string { return uuid.NewString() }

// collect returns the user's records sorted with less. Values are copied.
func collect[T any](m map[string]T, owner func(T) string, userID string, less func(a, b T) bool) []T {
	out := make([]T, 0)
	for _, v := range m {
		if owner(v) == userID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Transactions

func (s *Store) ListTransactions(_ context.Context, sess core.Session) ([]core.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.transactions, func(t core.Transaction) string { return t.UserID }, sess.UserID,
		func(a, b core.Transaction) bool {
			if !a.Date.Equal(b.Date.Time) {
				return a.Date.After(b.Date.Time)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}), nil
}

func (s *Store) GetTransaction(_ context.Context, sess core.Session, id string) (core.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != sess.UserID {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, sess core.Session, t core.Transaction) (core.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = newID()
	t.UserID = sess.UserID
	t.CreatedAt = s.stamp()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, sess core.Session, id string, t core.Transaction) (core.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.transactions[id]
	if !ok || cur.UserID != sess.UserID {
		return core.Transaction{}, store.ErrNotFound
	}
	t.ID, t.UserID, t.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
	s.transactions[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, sess core.Session, id string) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.transactions[id]
	if !ok || cur.UserID != sess.UserID {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

// Bills

func (s *Store) ListBills(_ context.Context, sess core.Session) ([]core.Bill, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.bills, func(b core.Bill) string { return b.UserID }, sess.UserID,
		func(a, b core.Bill) bool {
			if !a.DueDate.Equal(b.DueDate.Time) {
				return a.DueDate.Before(b.DueDate)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}), nil
}

func (s *Store) GetBill(_ context.Context, sess core.Session, id string) (core.Bill, error) {
	if err := sess.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok || b.UserID != sess.UserID {
		return core.Bill{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) CreateBill(_ context.Context, sess core.Session, b core.Bill) (core.Bill, error) {
	if err := sess.Validate(); err != nil {
		return core.Bill{}, err
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = newID()
	b.UserID = sess.UserID
	b.CreatedAt = s.stamp()
	s.bills[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBill(_ context.Context, sess core.Session, id string, b core.Bill) (core.Bill, error) {
	if err := sess.Validate(); err != nil {
		return core.Bill{}, err
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bills[id]
	if !ok || cur.UserID != sess.UserID {
		return core.Bill{}, store.ErrNotFound
	}
	b.ID, b.UserID, b.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
	s.bills[id] = b
	return b, nil
}

func (s *Store) DeleteBill(_ context.Context, sess core.Session, id string) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bills[id]
	if !ok || cur.UserID != sess.UserID {
		return store.ErrNotFound
	}
	delete(s.bills, id)
	return nil
}

// Goals

func (s *Store) ListGoals(_ context.Context, sess core.Session) ([]core.Goal, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.goals, func(g core.Goal) string { return g.UserID }, sess.UserID,
		func(a, b core.Goal) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (s *Store) GetGoal(_ context.Context, sess core.Session, id string) (core.Goal, error) {
	if err := sess.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != sess.UserID {
		return core.Goal{}, store.ErrNotFound
	}
	return g, nil
}

func (s *Store) CreateGoal(_ context.Context, sess core.Session, g core.Goal) (core.Goal, error) {
	if err := sess.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.stamp()
	g.ID = newID()
	g.UserID = sess.UserID
	g.CreatedAt, g.UpdatedAt = now, now
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, sess core.Session, id string, g core.Goal) (core.Goal, error) {
	if err := sess.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.goals[id]
	if !ok || cur.UserID != sess.UserID {
		return core.Goal{}, store.ErrNotFound
	}
	g.ID, g.UserID, g.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
	g.UpdatedAt = s.stamp()
	s.goals[id] = g
	return g, nil
}

func (s *Store) DeleteGoal(_ context.Context, sess core.Session, id string) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.goals[id]
	if !ok || cur.UserID != sess.UserID {
		return store.ErrNotFound
	}
	now := s.stamp()
	for invID, inv := range s.investments {
		if inv.UserID == sess.UserID && inv.GoalID == id {
			inv.GoalID = ""
			inv.UpdatedAt = now
			s.investments[invID] = inv
		}
	}
	delete(s.goals, id)
	return nil
}

// Investments

// checkGoal must be called with s.mu held.
func (s *Store) checkGoal(userID, goalID string) error {
	if goalID == "" {
		return nil
	}
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return store.ErrInvalidReference
	}
	return nil
}

func (s *Store) ListInvestments(_ context.Context, sess core.Session) ([]core.Investment, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return collect(s.investments, func(i core.Investment) string { return i.UserID }, sess.UserID,
		func(a, b core.Investment) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (s *Store) GetInvestment(_ context.Context, sess core.Session, id string) (core.Investment, error) {
	if err := sess.Validate(); err != nil {
		return core.Investment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.investments[id]
	if !ok || i.UserID != sess.UserID {
		return core.Investment{}, store.ErrNotFound
	}
	return i, nil
}

func (s *Store) CreateInvestment(_ context.Context, sess core.Session, i core.Investment) (core.Investment, error) {
	if err := sess.Validate(); err != nil {
		return core.Investment{}, err
	}
	if err := i.Validate(); err != nil {
		return core.Investment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkGoal(sess.UserID, i.GoalID); err != nil {
		return core.Investment{}, err
	}
	now := s.stamp()
	i.ID = newID()
	i.UserID = sess.UserID
	i.CreatedAt, i.UpdatedAt = now, now
	s.investments[i.ID] = i
	return i, nil
}

func (s *Store) UpdateInvestment(_ context.Context, sess core.Session, id string, i core.Investment) (core.Investment, error) {
	if err := sess.Validate(); err != nil {
		return core.Investment{}, err
	}
	if err := i.Validate(); err != nil {
		return core.Investment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.investments[id]
	if !ok || cur.UserID != sess.UserID {
		return core.Investment{}, store.ErrNotFound
	}
	if err := s.checkGoal(sess.UserID, i.GoalID); err != nil {
		return core.Investment{}, err
	}
	i.ID, i.UserID, i.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
	i.UpdatedAt = s.stamp()
	s.investments[id] = i
	return i, nil
}

func (s *Store) DeleteInvestment(_ context.Context, sess core.Session, id string) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.investments[id]
	if !ok || cur.UserID != sess.UserID {
		return store.ErrNotFound
	}
	delete(s.investments, id)
	return nil
}
