// Package storetest holds the behaviour every store.Store implementation
// must share. Backends call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Factory returns an empty store. Cleanup is the factory's responsibility.
type Factory func(t *testing.T) store.Store

var (
	alice = core.Session{UserID: "alice"}
	bob   = core.Session{UserID: "bob"}
)

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("TransactionsCRUD", func(t *testing.T) { testTransactionsCRUD(t, newStore(t)) })
	t.Run("TransactionsOrderedByDateDesc", func(t *testing.T) { testTransactionOrder(t, newStore(t)) })
	t.Run("BillsCRUD", func(t *testing.T) { testBillsCRUD(t, newStore(t)) })
	t.Run("GoalsCRUD", func(t *testing.T) { testGoalsCRUD(t, newStore(t)) })
	t.Run("InvestmentsCRUD", func(t *testing.T) { testInvestmentsCRUD(t, newStore(t)) })
	t.Run("UserIsolation", func(t *testing.T) { testUserIsolation(t, newStore(t)) })
	t.Run("GoalDeleteClearsReference", func(t *testing.T) { testGoalDeleteClearsReference(t, newStore(t)) })
	t.Run("ForeignGoalReferenceRejected", func(t *testing.T) { testForeignGoalReference(t, newStore(t)) })
	t.Run("InvalidInputNotPersisted", func(t *testing.T) { testInvalidInput(t, newStore(t)) })
	t.Run("RequiresSession", func(t *testing.T) { testRequiresSession(t, newStore(t)) })
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Type:        core.Expense,
		Amount:      core.Money{Cents: 4250},
		Category:    "groceries",
		Description: "weekly shop",
		Date:        core.NewDate(2025, 4, 12),
	}
}

func sampleBill() core.Bill {
	return core.Bill{
		Name:      "Internet",
		Amount:    core.Money{Cents: 2999},
		DueDate:   core.NewDate(2025, 4, 30),
		Status:    core.BillPending,
		Category:  "utilities",
		Recurring: true,
	}
}

func sampleGoal() core.Goal {
	return core.Goal{
		Title:         "Emergency fund",
		TargetAmount:  core.Money{Cents: 500000},
		CurrentAmount: core.Money{Cents: 120000},
		Deadline:      core.NewDate(2026, 12, 31),
		Category:      "savings",
		Description:   "six months of expenses",
	}
}

func sampleInvestment(goalID string) core.Investment {
	return core.Investment{
		Name:           "Global index",
		Type:           "etf",
		AmountInvested: core.Money{Cents: 100000},
		CurrentValue:   core.Money{Cents: 108321},
		PurchaseDate:   core.NewDate(2024, 9, 1),
		GoalID:         goalID,
	}
}

func testTransactionsCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.CreateTransaction(ctx, alice, sampleTransaction())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.UserID)
	assert.False(t, created.CreatedAt.IsZero())

	list, err := s.ListTransactions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])

	edit := created
	edit.Amount = core.Money{Cents: 5000}
	edit.Type = core.Income
	edit.UserID = "mallory"
	updated, err := s.UpdateTransaction(ctx, alice, created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), updated.Amount.Cents)
	assert.Equal(t, core.Income, updated.Type)
	assert.Equal(t, "alice", updated.UserID, "owner cannot be changed by update")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := s.GetTransaction(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, s.DeleteTransaction(ctx, alice, created.ID))
	_, err = s.GetTransaction(ctx, alice, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, alice, created.ID), store.ErrNotFound)

	list, err = s.ListTransactions(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testTransactionOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, d := range []core.Date{core.NewDate(2025, 1, 5), core.NewDate(2025, 3, 1), core.NewDate(2024, 12, 24)} {
		tx := sampleTransaction()
		tx.Date = d
		_, err := s.CreateTransaction(ctx, alice, tx)
		require.NoError(t, err)
	}
	list, err := s.ListTransactions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2025-03-01", list[0].Date.String())
	assert.Equal(t, "2025-01-05", list[1].Date.String())
	assert.Equal(t, "2024-12-24", list[2].Date.String())
}

func testBillsCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	late := sampleBill()
	late.DueDate = core.NewDate(2025, 4, 1)
	_, err := s.CreateBill(ctx, alice, sampleBill())
	require.NoError(t, err)
	first, err := s.CreateBill(ctx, alice, late)
	require.NoError(t, err)

	list, err := s.ListBills(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "bills are ordered by due date")
	assert.True(t, list[0].Recurring)

	paid := first
	paid.Status = core.BillPaid
	updated, err := s.UpdateBill(ctx, alice, first.ID, paid)
	require.NoError(t, err)
	assert.Equal(t, core.BillPaid, updated.Status)

	got, err := s.GetBill(ctx, alice, first.ID)
	require.NoError(t, err)
	assert.Equal(t, core.BillPaid, got.Status)

	require.NoError(t, s.DeleteBill(ctx, alice, first.ID))
	list, err = s.ListBills(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testGoalsCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.CreateGoal(ctx, alice, sampleGoal())
	require.NoError(t, err)
	assert.Equal(t, "2026-12-31", created.Deadline.String())
	assert.False(t, created.UpdatedAt.IsZero())

	noDeadline := sampleGoal()
	noDeadline.Title = "Someday"
	noDeadline.Deadline = core.Date{}
	other, err := s.CreateGoal(ctx, alice, noDeadline)
	require.NoError(t, err)

	got, err := s.GetGoal(ctx, alice, other.ID)
	require.NoError(t, err)
	assert.True(t, got.Deadline.IsZero())

	edit := created
	edit.CurrentAmount = core.Money{Cents: 500000}
	updated, err := s.UpdateGoal(ctx, alice, created.ID, edit)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, updated.Progress(), 1e-9)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	list, err := s.ListGoals(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func testInvestmentsCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, alice, sampleGoal())
	require.NoError(t, err)

	created, err := s.CreateInvestment(ctx, alice, sampleInvestment(goal.ID))
	require.NoError(t, err)
	assert.Equal(t, goal.ID, created.GoalID)

	unlink := created
	unlink.GoalID = ""
	unlink.CurrentValue = core.Money{Cents: 99000}
	updated, err := s.UpdateInvestment(ctx, alice, created.ID, unlink)
	require.NoError(t, err)
	assert.Empty(t, updated.GoalID)
	assert.Equal(t, int64(99000), updated.CurrentValue.Cents)

	list, err := s.ListInvestments(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, updated, list[0])

	require.NoError(t, s.DeleteInvestment(ctx, alice, created.ID))
	_, err = s.GetInvestment(ctx, alice, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUserIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()

	tx, err := s.CreateTransaction(ctx, alice, sampleTransaction())
	require.NoError(t, err)
	bill, err := s.CreateBill(ctx, alice, sampleBill())
	require.NoError(t, err)
	goal, err := s.CreateGoal(ctx, alice, sampleGoal())
	require.NoError(t, err)
	inv, err := s.CreateInvestment(ctx, alice, sampleInvestment(""))
	require.NoError(t, err)

	txs, err := s.ListTransactions(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, txs)
	bills, err := s.ListBills(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bills)
	goals, err := s.ListGoals(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, goals)
	invs, err := s.ListInvestments(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, invs)

	_, err = s.GetTransaction(ctx, bob, tx.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.UpdateTransaction(ctx, bob, tx.ID, sampleTransaction())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, bob, tx.ID), store.ErrNotFound)

	_, err = s.UpdateBill(ctx, bob, bill.ID, sampleBill())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBill(ctx, bob, bill.ID), store.ErrNotFound)

	_, err = s.UpdateGoal(ctx, bob, goal.ID, sampleGoal())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteGoal(ctx, bob, goal.ID), store.ErrNotFound)

	_, err = s.UpdateInvestment(ctx, bob, inv.ID, sampleInvestment(""))
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteInvestment(ctx, bob, inv.ID), store.ErrNotFound)

	// Alice still sees everything untouched.
	got, err := s.GetTransaction(ctx, alice, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)
}

func testGoalDeleteClearsReference(t *testing.T, s store.Store) {
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, alice, sampleGoal())
	require.NoError(t, err)
	linked, err := s.CreateInvestment(ctx, alice, sampleInvestment(goal.ID))
	require.NoError(t, err)
	unlinked, err := s.CreateInvestment(ctx, alice, sampleInvestment(""))
	require.NoError(t, err)

	require.NoError(t, s.DeleteGoal(ctx, alice, goal.ID))

	invs, err := s.ListInvestments(ctx, alice)
	require.NoError(t, err)
	require.Len(t, invs, 2, "investments survive goal deletion")
	for _, inv := range invs {
		assert.Empty(t, inv.GoalID)
	}

	got, err := s.GetInvestment(ctx, alice, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, linked.CurrentValue, got.CurrentValue)
	_, err = s.GetInvestment(ctx, alice, unlinked.ID)
	require.NoError(t, err)
}

func testForeignGoalReference(t *testing.T, s store.Store) {
	ctx := context.Background()

	bobsGoal, err := s.CreateGoal(ctx, bob, sampleGoal())
	require.NoError(t, err)

	_, err = s.CreateInvestment(ctx, alice, sampleInvestment(bobsGoal.ID))
	assert.ErrorIs(t, err, store.ErrInvalidReference)

	_, err = s.CreateInvestment(ctx, alice, sampleInvestment("does-not-exist"))
	assert.ErrorIs(t, err, store.ErrInvalidReference)

	inv, err := s.CreateInvestment(ctx, alice, sampleInvestment(""))
	require.NoError(t, err)
	inv.GoalID = bobsGoal.ID
	_, err = s.UpdateInvestment(ctx, alice, inv.ID, inv)
	assert.ErrorIs(t, err, store.ErrInvalidReference)

	invs, err := s.ListInvestments(ctx, alice)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Empty(t, invs[0].GoalID)
}

func testInvalidInput(t *testing.T, s store.Store) {
	ctx := context.Background()

	bad := sampleTransaction()
	bad.Date = core.Date{}
	_, err := s.CreateTransaction(ctx, alice, bad)
	assert.True(t, core.IsValidationError(err), "got %v", err)

	badBill := sampleBill()
	badBill.Amount = core.Money{Cents: -1}
	_, err = s.CreateBill(ctx, alice, badBill)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	txs, err := s.ListTransactions(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, txs)
	bills, err := s.ListBills(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func testRequiresSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.ListTransactions(ctx, core.Session{})
	assert.ErrorIs(t, err, core.ErrNoSession)
	_, err = s.CreateGoal(ctx, core.Session{}, sampleGoal())
	assert.ErrorIs(t, err, core.ErrNoSession)
}
