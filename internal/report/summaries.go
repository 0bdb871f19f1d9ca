package report

import (
	"sort"

	"fintrack/internal/core"
)

// DefaultUpcomingBills caps the upcoming list on the dashboard.
const DefaultUpcomingBills = 5

type GoalSummary struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Target    core.Money `json:"target"`
	Current   core.Money `json:"current"`
	Remaining core.Money `json:"remaining"`
	Progress  float64    `json:"progress"`
	Deadline  core.Date  `json:"deadline"`
	Completed bool       `json:"completed"`
	// Linked sums the current value of investments pointing at the goal.
	Linked core.Money `json:"linked"`
}

type Allocation struct {
	Type       string     `json:"type"`
	Value      core.Money `json:"value"`
	Percentage float64    `json:"percentage"`
}

type Portfolio struct {
	Invested   core.Money   `json:"invested"`
	Value      core.Money   `json:"value"`
	Gain       core.Money   `json:"gain"`
	Return     float64      `json:"returnPercentage"`
	Allocation []Allocation `json:"allocation"`
}

type StatusTotals struct {
	Count  int        `json:"count"`
	Amount core.Money `json:"amount"`
}

type Bills struct {
	Paid     StatusTotals `json:"paid"`
	Pending  StatusTotals `json:"pending"`
	Overdue  StatusTotals `json:"overdue"`
	Upcoming []core.Bill  `json:"upcoming"`
}

// GoalSummaries reports progress per goal, in input order.
func GoalSummaries(goals []core.Goal, investments []core.Investment) []GoalSummary {
	linked := make(map[string]core.Money)
	for _, inv := range investments {
		if inv.GoalID != "" {
			linked[inv.GoalID] = linked[inv.GoalID].Add(inv.CurrentValue)
		}
	}
	out := make([]GoalSummary, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalSummary{
			ID:        g.ID,
			Title:     g.Title,
			Target:    g.TargetAmount,
			Current:   g.CurrentAmount,
			Remaining: g.Remaining(),
			Progress:  g.Progress(),
			Deadline:  g.Deadline,
			Completed: g.TargetAmount.Cents > 0 && g.CurrentAmount.Cents >= g.TargetAmount.Cents,
			Linked:    linked[g.ID],
		})
	}
	return out
}

// PortfolioSummary totals the holdings and splits current value by type.
// Allocation follows the same ordering rules as CategoryBreakdown.
func PortfolioSummary(investments []core.Investment) Portfolio {
	var p Portfolio
	index := make(map[string]int)
	for _, inv := range investments {
		p.Invested = p.Invested.Add(inv.AmountInvested)
		p.Value = p.Value.Add(inv.CurrentValue)
		i, ok := index[inv.Type]
		if !ok {
			i = len(p.Allocation)
			index[inv.Type] = i
			p.Allocation = append(p.Allocation, Allocation{Type: inv.Type})
		}
		p.Allocation[i].Value = p.Allocation[i].Value.Add(inv.CurrentValue)
	}
	p.Gain = p.Value.Sub(p.Invested)
	if p.Invested.Cents != 0 {
		p.Return = float64(p.Gain.Cents) / float64(p.Invested.Cents) * 100
	}
	sort.SliceStable(p.Allocation, func(a, b int) bool {
		return p.Allocation[a].Value.Cents > p.Allocation[b].Value.Cents
	})
	if p.Value.Cents != 0 {
		for i := range p.Allocation {
			p.Allocation[i].Percentage = float64(p.Allocation[i].Value.Cents) / float64(p.Value.Cents) * 100
		}
	}
	return p
}

// BillSummary counts bills by effective status as of today and lists the
// next unpaid bills by due date, overdue ones first. Bills in the result
// carry their effective status; the input slice is not modified.
func BillSummary(bills []core.Bill, today core.Date, upcoming int) Bills {
	var s Bills
	var unpaid []core.Bill
	for _, b := range bills {
		shown := b.WithEffectiveStatus(today)
		var bucket *StatusTotals
		switch shown.Status {
		case core.BillPaid:
			bucket = &s.Paid
		case core.BillOverdue:
			bucket = &s.Overdue
			unpaid = append(unpaid, shown)
		default:
			bucket = &s.Pending
			unpaid = append(unpaid, shown)
		}
		bucket.Count++
		bucket.Amount = bucket.Amount.Add(b.Amount)
	}
	sort.SliceStable(unpaid, func(a, b int) bool {
		return unpaid[a].DueDate.Before(unpaid[b].DueDate)
	})
	if upcoming >= 0 && len(unpaid) > upcoming {
		unpaid = unpaid[:upcoming]
	}
	s.Upcoming = unpaid
	return s
}
