package report

import (
	"time"

	"fintrack/internal/core"
)

// Dashboard is every derived view of one snapshot.
type Dashboard struct {
	AsOf              core.Date       `json:"asOf"`
	GeneratedAt       time.Time       `json:"generatedAt"`
	TotalIncome       core.Money      `json:"totalIncome"`
	TotalExpense      core.Money      `json:"totalExpense"`
	NetWorth          core.Money      `json:"netWorth"`
	SavingsRate       float64         `json:"savingsRate"`
	ExpenseCategories []CategoryShare `json:"expenseCategories"`
	IncomeCategories  []CategoryShare `json:"incomeCategories"`
	Monthly           []MonthTotals   `json:"monthly"`
	Goals             []GoalSummary   `json:"goals"`
	Portfolio         Portfolio       `json:"portfolio"`
	Bills             Bills           `json:"bills"`
	Empty             bool            `json:"empty"`
}

// BuildDashboard computes all dashboard views from a snapshot in one pass
// per view. today drives bill status resolution.
func BuildDashboard(s core.Snapshot, today core.Date) Dashboard {
	return Dashboard{
		AsOf:              today,
		GeneratedAt:       time.Now().UTC(),
		TotalIncome:       TotalByType(s.Transactions, core.Income),
		TotalExpense:      TotalByType(s.Transactions, core.Expense),
		NetWorth:          NetWorth(s.Transactions, s.Investments),
		SavingsRate:       SavingsRate(s.Transactions),
		ExpenseCategories: CategoryBreakdown(s.Transactions, core.Expense),
		IncomeCategories:  CategoryBreakdown(s.Transactions, core.Income),
		Monthly:           MonthlySeries(s.Transactions),
		Goals:             GoalSummaries(s.Goals, s.Investments),
		Portfolio:         PortfolioSummary(s.Investments),
		Bills:             BillSummary(s.Bills, today, DefaultUpcomingBills),
		Empty:             s.IsEmpty(),
	}
}
