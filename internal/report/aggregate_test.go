package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func tx(typ core.TransactionType, cents int64, category string, date core.Date) core.Transaction {
	return core.Transaction{Type: typ, Amount: core.Money{Cents: cents}, Category: category, Date: date}
}

func scenario() []core.Transaction {
	d := core.NewDate(2025, 3, 1)
	return []core.Transaction{
		tx(core.Income, 100000, "salary", d),
		tx(core.Expense, 40000, "rent", d),
		tx(core.Expense, 10000, "food", d),
	}
}

func TestScenarioSalaryRentFood(t *testing.T) {
	txs := scenario()

	assert.Equal(t, int64(100000), TotalByType(txs, core.Income).Cents)
	assert.Equal(t, int64(50000), TotalByType(txs, core.Expense).Cents)
	assert.InDelta(t, 50.0, SavingsRate(txs), 1e-9)

	got := CategoryBreakdown(txs, core.Expense)
	require.Len(t, got, 2)
	assert.Equal(t, "rent", got[0].Category)
	assert.Equal(t, int64(40000), got[0].Amount.Cents)
	assert.InDelta(t, 80.0, got[0].Percentage, 1e-9)
	assert.Equal(t, "food", got[1].Category)
	assert.Equal(t, int64(10000), got[1].Amount.Cents)
	assert.InDelta(t, 20.0, got[1].Percentage, 1e-9)
}

func TestEmptyInputsDegradeToZero(t *testing.T) {
	assert.Zero(t, TotalByType(nil, core.Income).Cents)
	assert.Zero(t, SavingsRate(nil))
	assert.Zero(t, NetWorth(nil, nil).Cents)
	assert.Empty(t, CategoryBreakdown(nil, core.Expense))
	assert.Empty(t, MonthlySeries(nil))
}

func TestSavingsRateWithoutIncome(t *testing.T) {
	txs := []core.Transaction{tx(core.Expense, 500, "food", core.NewDate(2025, 1, 1))}
	assert.Zero(t, SavingsRate(txs))
}

func TestCategoryBreakdownZeroTotal(t *testing.T) {
	d := core.NewDate(2025, 1, 1)
	txs := []core.Transaction{
		tx(core.Expense, 0, "gift", d),
		tx(core.Expense, 0, "misc", d),
	}
	rows := CategoryBreakdown(txs, core.Expense)
	require.Len(t, rows, 2)
	var sum float64
	for _, r := range rows {
		assert.Zero(t, r.Percentage)
		sum += r.Percentage
	}
	assert.Zero(t, sum)
}

func TestCategoryBreakdownPercentagesSumTo100(t *testing.T) {
	d := core.NewDate(2025, 1, 1)
	txs := []core.Transaction{
		tx(core.Expense, 333, "a", d),
		tx(core.Expense, 333, "b", d),
		tx(core.Expense, 334, "c", d),
		tx(core.Expense, 1, "d", d),
		tx(core.Income, 99999, "salary", d),
	}
	var sum float64
	for _, r := range CategoryBreakdown(txs, core.Expense) {
		sum += r.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestCategoryBreakdownStableTieBreak(t *testing.T) {
	d := core.NewDate(2025, 1, 1)
	txs := []core.Transaction{
		tx(core.Expense, 100, "books", d),
		tx(core.Expense, 300, "travel", d),
		tx(core.Expense, 100, "coffee", d),
		tx(core.Expense, 100, "apps", d),
	}
	rows := CategoryBreakdown(txs, core.Expense)
	var order []string
	for _, r := range rows {
		order = append(order, r.Category)
	}
	assert.Equal(t, []string{"travel", "books", "coffee", "apps"}, order)
}

func TestMonthlySeriesIsChronological(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, 100, "food", core.NewDate(2025, 3, 10)),
		tx(core.Income, 1000, "salary", core.NewDate(2024, 12, 31)),
		tx(core.Income, 500, "salary", core.NewDate(2025, 3, 1)),
		tx(core.Expense, 200, "rent", core.NewDate(2025, 1, 5)),
	}
	series := MonthlySeries(txs)
	require.Len(t, series, 3)
	assert.Equal(t, "2024-12", series[0].Month)
	assert.Equal(t, "2025-01", series[1].Month)
	assert.Equal(t, "2025-03", series[2].Month)
	assert.Equal(t, int64(500), series[2].Income.Cents)
	assert.Equal(t, int64(100), series[2].Expense.Cents)
	assert.Equal(t, int64(400), series[2].Net().Cents)
}

func TestNetWorth(t *testing.T) {
	txs := scenario()
	assert.Equal(t, int64(50000), NetWorth(txs, nil).Cents, "no investments equals income minus expense")

	investments := []core.Investment{
		{CurrentValue: core.Money{Cents: 2500}},
		{CurrentValue: core.Money{Cents: 7500}},
	}
	assert.Equal(t, int64(60000), NetWorth(txs, investments).Cents)

	debt := []core.Transaction{tx(core.Expense, 900, "rent", core.NewDate(2025, 1, 1))}
	assert.Equal(t, int64(-900), NetWorth(debt, nil).Cents)
}
