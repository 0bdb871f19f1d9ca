package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/store"
)

// StoreCallTimeout bounds each list call of a snapshot load.
const StoreCallTimeout = 7 * time.Second

// DashboardService loads a user's records as one snapshot and memoizes the
// derived dashboard until the user writes again or the entry expires.
type DashboardService struct {
	store store.Store
	cache *cache.LRUCache[report.Dashboard]
	today func() core.Date

	// generations counts invalidations per user. A dashboard is only
	// memoized if no invalidation happened while its snapshot was loading.
	mu          sync.Mutex
	generations map[string]uint64
}

func NewDashboardService(st store.Store, maxUsers int, ttl time.Duration) *DashboardService {
	return &DashboardService{
		store: st,
		cache: cache.NewLRUCache[report.Dashboard](maxUsers, ttl),
		today: core.Today,

		generations: make(map[string]uint64),
	}
}

// WithToday replaces the calendar used for bill status resolution.
func (s *DashboardService) WithToday(today func() core.Date) *DashboardService {
	s.today = today
	return s
}

// Cache exposes the memo so it can be registered with a cache.Manager.
func (s *DashboardService) Cache() *cache.LRUCache[report.Dashboard] { return s.cache }

func cacheKey(userID string, today core.Date) string {
	return userID + "|" + today.String()
}

// LoadSnapshot fetches the four record lists concurrently. If any fetch
// fails the whole load fails and the remaining fetches are cancelled.
func (s *DashboardService) LoadSnapshot(ctx context.Context, sess core.Session) (core.Snapshot, error) {
	if err := sess.Validate(); err != nil {
		return core.Snapshot{}, err
	}

	var snap core.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, StoreCallTimeout)
		defer cancel()
		txs, err := s.store.ListTransactions(c, sess)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, StoreCallTimeout)
		defer cancel()
		bills, err := s.store.ListBills(c, sess)
		if err != nil {
			return fmt.Errorf("list bills: %w", err)
		}
		snap.Bills = bills
		return nil
	})
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, StoreCallTimeout)
		defer cancel()
		goals, err := s.store.ListGoals(c, sess)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		snap.Goals = goals
		return nil
	})
	g.Go(func() error {
		c, cancel := context.WithTimeout(gctx, StoreCallTimeout)
		defer cancel()
		investments, err := s.store.ListInvestments(c, sess)
		if err != nil {
			return fmt.Errorf("list investments: %w", err)
		}
		snap.Investments = investments
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Dashboard returns the user's dashboard for today, computing it from a
// fresh snapshot on a cache miss.
func (s *DashboardService) Dashboard(ctx context.Context, sess core.Session) (report.Dashboard, error) {
	today := s.today()
	key := cacheKey(sess.UserID, today)

	if d, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "Dashboard cache hit", "user_id", sess.UserID)
		return d, nil
	}

	gen := s.generation(sess.UserID)
	snap, err := s.LoadSnapshot(ctx, sess)
	if err != nil {
		return report.Dashboard{}, err
	}
	d := report.BuildDashboard(snap, today)

	s.mu.Lock()
	if s.generations[sess.UserID] == gen {
		s.cache.Set(key, d)
	} else {
		slog.DebugContext(ctx, "Records changed during load, not memoizing dashboard", "user_id", sess.UserID)
	}
	s.mu.Unlock()

	slog.DebugContext(ctx, "Dashboard computed",
		"user_id", sess.UserID,
		"transactions", len(snap.Transactions),
		"bills", len(snap.Bills))
	return d, nil
}

// Invalidate drops every memoized dashboard of the user, whatever day it
// was computed for.
func (s *DashboardService) Invalidate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	s.cache.DeletePrefix(userID + "|")
}

func (s *DashboardService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}
