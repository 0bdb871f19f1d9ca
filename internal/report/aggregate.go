// Package report turns raw record lists into the derived views shown on the
// dashboard: totals, category breakdowns, monthly series, net worth and
// savings rate. Every function is pure; none of them performs authorization.
package report

import (
	"sort"

	"fintrack/internal/core"
)

// CategoryShare is one row of a category breakdown.
type CategoryShare struct {
	Category   string     `json:"category"`
	Amount     core.Money `json:"amount"`
	Percentage float64    `json:"percentage"`
}

// MonthTotals holds the income and expense sums for one YYYY-MM bucket.
type MonthTotals struct {
	Month   string     `json:"month"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// Net is income minus expense for the month.
func (m MonthTotals) Net() core.Money {
	return m.Income.Sub(m.Expense)
}

// TotalByType sums the amounts of transactions of the given type.
func TotalByType(txs []core.Transaction, typ core.TransactionType) core.Money {
	var total core.Money
	for _, tx := range txs {
		if tx.Type == typ {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CategoryBreakdown groups transactions of one type by category. Rows are
// ordered by descending amount; equal amounts keep the order in which their
// category was first seen. With a zero total every percentage is 0.
func CategoryBreakdown(txs []core.Transaction, typ core.TransactionType) []CategoryShare {
	index := make(map[string]int)
	var rows []CategoryShare
	var total int64
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(rows)
			index[tx.Category] = i
			rows = append(rows, CategoryShare{Category: tx.Category})
		}
		rows[i].Amount = rows[i].Amount.Add(tx.Amount)
		total += tx.Amount.Cents
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Amount.Cents > rows[b].Amount.Cents
	})

	if total == 0 {
		return rows
	}
	for i := range rows {
		rows[i].Percentage = float64(rows[i].Amount.Cents) / float64(total) * 100
	}
	return rows
}

// MonthlySeries buckets transactions by the YYYY-MM of their date and returns
// the buckets in chronological order.
func MonthlySeries(txs []core.Transaction) []MonthTotals {
	byMonth := make(map[string]*MonthTotals)
	for _, tx := range txs {
		key := tx.Date.MonthKey()
		m, ok := byMonth[key]
		if !ok {
			m = &MonthTotals{Month: key}
			byMonth[key] = m
		}
		switch tx.Type {
		case core.Income:
			m.Income = m.Income.Add(tx.Amount)
		case core.Expense:
			m.Expense = m.Expense.Add(tx.Amount)
		}
	}

	series := make([]MonthTotals, 0, len(byMonth))
	for _, m := range byMonth {
		series = append(series, *m)
	}
	// YYYY-MM sorts lexically in calendar order.
	sort.Slice(series, func(a, b int) bool { return series[a].Month < series[b].Month })
	return series
}

// NetWorth is total income minus total expense plus the current value of
// every investment. It may be negative.
func NetWorth(txs []core.Transaction, investments []core.Investment) core.Money {
	worth := TotalByType(txs, core.Income).Sub(TotalByType(txs, core.Expense))
	for _, inv := range investments {
		worth = worth.Add(inv.CurrentValue)
	}
	return worth
}

// SavingsRate is (income - expense) / income as a percentage, 0 without income.
func SavingsRate(txs []core.Transaction) float64 {
	income := TotalByType(txs, core.Income)
	if income.Cents == 0 {
		return 0
	}
	expense := TotalByType(txs, core.Expense)
	return float64(income.Cents-expense.Cents) / float64(income.Cents) * 100
}
