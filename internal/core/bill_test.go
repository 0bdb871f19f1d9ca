package core

import (
	"testing"
	"time"
)

func TestEffectiveStatus(t *testing.T) {
	today := NewDate(2025, 6, 15)
	yesterday := NewDate(2025, 6, 14)
	tomorrow := NewDate(2025, 6, 16)

	cases := []struct {
		name   string
		stored BillStatus
		due    Date
		want   BillStatus
	}{
		{"pending due yesterday", BillPending, yesterday, BillOverdue},
		{"paid due yesterday", BillPaid, yesterday, BillPaid},
		{"pending due today", BillPending, today, BillPending},
		{"pending due tomorrow", BillPending, tomorrow, BillPending},
		{"stored overdue moved forward", BillOverdue, tomorrow, BillPending},
		{"stored overdue still late", BillOverdue, yesterday, BillOverdue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectiveStatus(tc.stored, tc.due, today)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			if again := EffectiveStatus(tc.stored, tc.due, today); again != got {
				t.Fatalf("not idempotent: %s then %s", got, again)
			}
		})
	}
}

func TestEffectiveStatusIgnoresTimeOfDay(t *testing.T) {
	due := Date{Time: time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)}
	today := Date{Time: time.Date(2025, 6, 15, 0, 1, 0, 0, time.UTC)}
	if got := EffectiveStatus(BillPending, due, today); got != BillPending {
		t.Fatalf("same day must be pending, got %s", got)
	}
}

func TestPaidIsNeverDowngraded(t *testing.T) {
	due := NewDate(2020, 1, 1)
	for offset := -400; offset <= 400; offset += 37 {
		today := Date{Time: due.AddDate(0, 0, offset)}
		if got := EffectiveStatus(BillPaid, due, today); got != BillPaid {
			t.Fatalf("offset %d: paid bill became %s", offset, got)
		}
	}
}

func TestWithEffectiveStatusDoesNotMutate(t *testing.T) {
	b := Bill{Name: "Power", Status: BillPending, DueDate: NewDate(2025, 1, 1)}
	shown := b.WithEffectiveStatus(NewDate(2025, 2, 1))
	if shown.Status != BillOverdue {
		t.Fatalf("expected overdue copy, got %s", shown.Status)
	}
	if b.Status != BillPending {
		t.Fatalf("receiver mutated to %s", b.Status)
	}
}

func TestNextOccurrence(t *testing.T) {
	b := Bill{
		ID: "b1", UserID: "u1", Name: "Rent", Amount: Money{Cents: 90000},
		DueDate: NewDate(2025, 1, 31), Status: BillPaid, Category: "home", Recurring: true,
	}
	next := b.NextOccurrence()
	if next.ID != "" {
		t.Fatalf("next occurrence must not reuse id")
	}
	if next.Status != BillPending || !next.Recurring {
		t.Fatalf("unexpected next bill %+v", next)
	}
	if !next.DueDate.Equal(NewDate(2025, 2, 28).Time) {
		t.Fatalf("expected 2025-02-28, got %s", next.DueDate)
	}
}
