package export

import (
	"fmt"
	"strconv"
	"time"

	"fintrack/internal/core"
)

// Kind names an exportable record list.
type Kind string

const (
	KindTransactions Kind = "transactions"
	KindBills        Kind = "bills"
	KindGoals        Kind = "goals"
	KindInvestments  Kind = "investments"
)

// Kinds lists every exportable kind in backup order.
var Kinds = []Kind{KindGoals, KindTransactions, KindBills, KindInvestments}

// ParseKind validates a kind coming from a URL or command line.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func TransactionRows(txs []core.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, Row{
			{"id", t.ID},
			{"userId", t.UserID},
			{"type", string(t.Type)},
			{"amount", t.Amount.String()},
			{"category", t.Category},
			{"description", t.Description},
			{"date", t.Date.String()},
			{"createdAt", timestamp(t.CreatedAt)},
		})
	}
	return rows
}

// BillRows exports bills with their stored status. When today is non-zero an
// effectiveStatus column is appended.
func BillRows(bills []core.Bill, today core.Date) []Row {
	rows := make([]Row, 0, len(bills))
	for _, b := range bills {
		row := Row{
			{"id", b.ID},
			{"userId", b.UserID},
			{"name", b.Name},
			{"amount", b.Amount.String()},
			{"dueDate", b.DueDate.String()},
			{"status", string(b.Status)},
			{"category", b.Category},
			{"recurring", strconv.FormatBool(b.Recurring)},
			{"createdAt", timestamp(b.CreatedAt)},
		}
		if !today.IsZero() {
			row = append(row, Field{"effectiveStatus", string(b.EffectiveStatus(today))})
		}
		rows = append(rows, row)
	}
	return rows
}

func GoalRows(goals []core.Goal) []Row {
	rows := make([]Row, 0, len(goals))
	for _, g := range goals {
		rows = append(rows, Row{
			{"id", g.ID},
			{"userId", g.UserID},
			{"title", g.Title},
			{"targetAmount", g.TargetAmount.String()},
			{"currentAmount", g.CurrentAmount.String()},
			{"deadline", g.Deadline.String()},
			{"category", g.Category},
			{"description", g.Description},
			{"createdAt", timestamp(g.CreatedAt)},
			{"updatedAt", timestamp(g.UpdatedAt)},
		})
	}
	return rows
}

func InvestmentRows(investments []core.Investment) []Row {
	rows := make([]Row, 0, len(investments))
	for _, i := range investments {
		rows = append(rows, Row{
			{"id", i.ID},
			{"userId", i.UserID},
			{"name", i.Name},
			{"type", i.Type},
			{"amountInvested", i.AmountInvested.String()},
			{"currentValue", i.CurrentValue.String()},
			{"purchaseDate", i.PurchaseDate.String()},
			{"goalId", i.GoalID},
			{"createdAt", timestamp(i.CreatedAt)},
			{"updatedAt", timestamp(i.UpdatedAt)},
		})
	}
	return rows
}

// SnapshotRows picks the rows of one kind out of a snapshot.
func SnapshotRows(s core.Snapshot, kind Kind, today core.Date) []Row {
	switch kind {
	case KindTransactions:
		return TransactionRows(s.Transactions)
	case KindBills:
		return BillRows(s.Bills, today)
	case KindGoals:
		return GoalRows(s.Goals)
	case KindInvestments:
		return InvestmentRows(s.Investments)
	}
	return nil
}

// Filename suggests a download name such as transactions-2025-06-01.csv.
func Filename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", name, now.UTC().Format(core.DateLayout), ext)
}
