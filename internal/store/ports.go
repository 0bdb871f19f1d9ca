// Package store defines the user-scoped persistence contract for the four
// record types. Implementations live in store/memory and storage.
package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var (
	// ErrNotFound covers both missing records and records owned by someone
	// else; callers cannot tell the two apart.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned when an investment points at a goal
	// the caller does not own.
	ErrInvalidReference = errors.New("referenced goal not found")
)

// Ports for the record store. Every call is scoped to sess.UserID; a record's
// ID, UserID and CreatedAt are assigned by the store and never taken from the
// caller.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, sess core.Session) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, sess core.Session, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, sess core.Session, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, sess core.Session, id string, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, sess core.Session, id string) error
	}

	BillStore interface {
		ListBills(ctx context.Context, sess core.Session) ([]core.Bill, error)
		GetBill(ctx context.Context, sess core.Session, id string) (core.Bill, error)
		CreateBill(ctx context.Context, sess core.Session, b core.Bill) (core.Bill, error)
		UpdateBill(ctx context.Context, sess core.Session, id string, b core.Bill) (core.Bill, error)
		DeleteBill(ctx context.Context, sess core.Session, id string) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context, sess core.Session) ([]core.Goal, error)
		GetGoal(ctx context.Context, sess core.Session, id string) (core.Goal, error)
		CreateGoal(ctx context.Context, sess core.Session, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, sess core.Session, id string, g core.Goal) (core.Goal, error)
		// DeleteGoal clears goalId on the user's linked investments; it never
		// deletes them.
		DeleteGoal(ctx context.Context, sess core.Session, id string) error
	}

	InvestmentStore interface {
		ListInvestments(ctx context.Context, sess core.Session) ([]core.Investment, error)
		GetInvestment(ctx context.Context, sess core.Session, id string) (core.Investment, error)
		CreateInvestment(ctx context.Context, sess core.Session, i core.Investment) (core.Investment, error)
		UpdateInvestment(ctx context.Context, sess core.Session, id string, i core.Investment) (core.Investment, error)
		DeleteInvestment(ctx context.Context, sess core.Session, id string) error
	}

	// Store is the full record store a backend provides.
	Store interface {
		TransactionStore
		BillStore
		GoalStore
		InvestmentStore
		Ping(ctx context.Context) error
		Close() error
	}
)
