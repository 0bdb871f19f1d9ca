package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestGoalSummariesZeroTarget(t *testing.T) {
	goals := []core.Goal{
		{ID: "g0", Title: "Someday"},
		{ID: "g1", Title: "Car", TargetAmount: core.Money{Cents: 1000000}, CurrentAmount: core.Money{Cents: 250000}},
	}
	investments := []core.Investment{
		{GoalID: "g1", CurrentValue: core.Money{Cents: 1000}},
		{GoalID: "g1", CurrentValue: core.Money{Cents: 500}},
		{CurrentValue: core.Money{Cents: 99}},
	}
	got := GoalSummaries(goals, investments)
	require.Len(t, got, 2)

	assert.Zero(t, got[0].Progress)
	assert.False(t, got[0].Completed)

	assert.InDelta(t, 25.0, got[1].Progress, 1e-9)
	assert.Equal(t, int64(750000), got[1].Remaining.Cents)
	assert.Equal(t, int64(1500), got[1].Linked.Cents)
}

func TestPortfolioSummary(t *testing.T) {
	p := PortfolioSummary([]core.Investment{
		{Type: "etf", AmountInvested: core.Money{Cents: 10000}, CurrentValue: core.Money{Cents: 12000}},
		{Type: "bond", AmountInvested: core.Money{Cents: 10000}, CurrentValue: core.Money{Cents: 9000}},
		{Type: "etf", AmountInvested: core.Money{Cents: 5000}, CurrentValue: core.Money{Cents: 9000}},
	})
	assert.Equal(t, int64(25000), p.Invested.Cents)
	assert.Equal(t, int64(30000), p.Value.Cents)
	assert.Equal(t, int64(5000), p.Gain.Cents)
	assert.InDelta(t, 20.0, p.Return, 1e-9)
	require.Len(t, p.Allocation, 2)
	assert.Equal(t, "etf", p.Allocation[0].Type)
	assert.InDelta(t, 70.0, p.Allocation[0].Percentage, 1e-9)

	empty := PortfolioSummary(nil)
	assert.Zero(t, empty.Return)
	assert.Empty(t, empty.Allocation)
}

func TestBillSummary(t *testing.T) {
	today := core.NewDate(2025, 6, 15)
	bills := []core.Bill{
		{ID: "late", Amount: core.Money{Cents: 100}, DueDate: core.NewDate(2025, 6, 1), Status: core.BillPending},
		{ID: "paid", Amount: core.Money{Cents: 200}, DueDate: core.NewDate(2025, 5, 1), Status: core.BillPaid},
		{ID: "soon", Amount: core.Money{Cents: 300}, DueDate: core.NewDate(2025, 6, 20), Status: core.BillPending},
		{ID: "today", Amount: core.Money{Cents: 400}, DueDate: today, Status: core.BillPending},
	}
	s := BillSummary(bills, today, 2)

	assert.Equal(t, 1, s.Overdue.Count)
	assert.Equal(t, int64(100), s.Overdue.Amount.Cents)
	assert.Equal(t, 1, s.Paid.Count)
	assert.Equal(t, 2, s.Pending.Count)
	assert.Equal(t, int64(700), s.Pending.Amount.Cents)

	require.Len(t, s.Upcoming, 2)
	assert.Equal(t, "late", s.Upcoming[0].ID)
	assert.Equal(t, core.BillOverdue, s.Upcoming[0].Status)
	assert.Equal(t, "today", s.Upcoming[1].ID)

	assert.Equal(t, core.BillPending, bills[0].Status, "input must not be mutated")
}

func TestBuildDashboard(t *testing.T) {
	snap := core.Snapshot{
		Transactions: scenario(),
		Investments:  []core.Investment{{Type: "etf", CurrentValue: core.Money{Cents: 10000}}},
		Goals:        []core.Goal{{ID: "g", Title: "Zero"}},
	}
	d := BuildDashboard(snap, core.NewDate(2025, 3, 31))
	assert.False(t, d.Empty)
	assert.Equal(t, int64(60000), d.NetWorth.Cents)
	assert.InDelta(t, 50.0, d.SavingsRate, 1e-9)
	require.Len(t, d.Monthly, 1)
	require.Len(t, d.Goals, 1)
	assert.Zero(t, d.Goals[0].Progress)

	assert.True(t, BuildDashboard(core.Snapshot{}, core.Today()).Empty)
}
