package memory

import (
	"context"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestConcurrentCreates(t *testing.T) {
	s := New()
	sess := core.Session{UserID: "u"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateTransaction(context.Background(), sess, core.Transaction{
				Type: core.Income, Amount: core.Money{Cents: 1}, Category: "c", Date: core.NewDate(2025, 1, 1),
			})
			if err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()
	list, err := s.ListTransactions(context.Background(), sess)
	if err != nil || len(list) != 50 {
		t.Fatalf("expected 50 transactions, got %d (err=%v)", len(list), err)
	}
}
