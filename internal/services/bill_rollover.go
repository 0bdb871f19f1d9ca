package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
)

// rollForward creates the pending bill that follows a paid recurring bill,
// unless the user already has a bill with the same name on that due date.
func (s *RecordService) rollForward(ctx context.Context, sess core.Session, paid core.Bill) (core.Bill, error) {
	next := paid.NextOccurrence()

	bills, err := s.store.ListBills(ctx, sess)
	if err != nil {
		return core.Bill{}, fmt.Errorf("roll bill forward: %w", err)
	}
	if existing, ok := findOccurrence(bills, next); ok {
		return existing, nil
	}

	created, err := s.store.CreateBill(ctx, sess, next)
	if err != nil {
		return core.Bill{}, fmt.Errorf("roll bill forward: %w", err)
	}
	s.changed(ctx, sess, export.KindBills, amqp.OpCreated, created.ID)

	slog.InfoContext(ctx, "Created next occurrence of recurring bill",
		"bill_id", paid.ID,
		"next_id", created.ID,
		"name", created.Name,
		"due_date", created.DueDate.String())
	return created, nil
}

func findOccurrence(bills []core.Bill, next core.Bill) (core.Bill, bool) {
	for _, b := range bills {
		if b.Name == next.Name && b.DueDate.Equal(next.DueDate.Time) {
			return b, true
		}
	}
	return core.Bill{}, false
}

// RolloverPaidBills makes sure every paid recurring bill of the user has its
// following occurrence. It catches up bills marked paid outside MarkPaid,
// for instance through a restored backup, and is safe to run repeatedly.
// It returns the number of bills created.
func (s *RecordService) RolloverPaidBills(ctx context.Context, sess core.Session) (int, error) {
	bills, err := s.store.ListBills(ctx, sess)
	if err != nil {
		return 0, fmt.Errorf("list bills: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring bills",
		"total", len(bills),
		"user_id", sess.UserID)

	created := 0
	for _, b := range bills {
		if !b.Recurring || b.Status != core.BillPaid {
			continue
		}
		next := b.NextOccurrence()
		if _, ok := findOccurrence(bills, next); ok {
			continue
		}
		n, err := s.store.CreateBill(ctx, sess, next)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create next bill occurrence",
				"bill_id", b.ID,
				"error", err)
			continue
		}
		bills = append(bills, n)
		s.changed(ctx, sess, export.KindBills, amqp.OpCreated, n.ID)
		created++
	}

	slog.InfoContext(ctx, "Recurring bill processing complete",
		"created", created,
		"user_id", sess.UserID)
	return created, nil
}
