package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-03-09", true},
		{" 2024-02-29 ", true},
		{"2025-02-30", false},
		{"09/03/2025", false},
		{"2025-3-9", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && (err != nil || d.IsZero()) {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("expected zero to be valid, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Amount:   Money{Cents: 100},
		Category: "food",
		Date:     NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "transfer", Amount: Money{Cents: 1}, Category: "c", Date: NewDate(2025, 1, 1)},
		{Type: Income, Amount: Money{Cents: -1}, Category: "c", Date: NewDate(2025, 1, 1)},
		{Type: Income, Amount: Money{Cents: 1}, Category: " ", Date: NewDate(2025, 1, 1)},
		{Type: Income, Amount: Money{Cents: 1}, Category: "c"}, // zero date
		{Type: Income, Amount: Money{Cents: 1}, Category: "c", Date: NewDate(2025, 1, 1), Description: strings.Repeat("x", 201)},
	}
	for i, tx := range bads {
		err := tx.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !IsValidationError(err) {
			t.Fatalf("case %d expected ValidationError, got %T", i, err)
		}
	}
}

func TestValidationErrorUnwraps(t *testing.T) {
	err := Bill{Name: "rent", Amount: Money{Cents: 1}, Status: BillPending, Category: "home"}.Validate()
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "dueDate" {
		t.Fatalf("expected dueDate field, got %v", err)
	}
}

func TestGoalProgress(t *testing.T) {
	cases := []struct {
		target, current int64
		want            float64
	}{
		{0, 0, 0},
		{0, 500, 0},
		{1000, 250, 25},
		{1000, 1500, 150},
	}
	for _, tc := range cases {
		g := Goal{TargetAmount: Money{Cents: tc.target}, CurrentAmount: Money{Cents: tc.current}}
		if got := g.Progress(); got != tc.want {
			t.Fatalf("target=%d current=%d: expected %v, got %v", tc.target, tc.current, tc.want, got)
		}
	}
}

func TestGoalDeadlineOptional(t *testing.T) {
	g := Goal{Title: "Holiday", TargetAmount: Money{Cents: 100000}, Category: "travel"}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok without deadline, got %v", err)
	}
}

func TestGoalRequiresCategory(t *testing.T) {
	err := Goal{Title: "Holiday", TargetAmount: Money{Cents: 100000}, Category: "  "}.Validate()
	if !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "category" {
		t.Fatalf("expected category field, got %v", err)
	}
}

func TestDescriptionLimitCountsCharacters(t *testing.T) {
	tx := Transaction{Type: Expense, Amount: Money{Cents: 1}, Category: "c", Date: NewDate(2025, 1, 1)}

	tx.Description = strings.Repeat("é", MaxDescriptionLength) // 400 bytes
	if err := tx.Validate(); err != nil {
		t.Fatalf("200 accented characters should pass, got %v", err)
	}
	tx.Description = strings.Repeat("é", MaxDescriptionLength+1)
	if err := tx.Validate(); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Date `json:"a"`
		B Date `json:"b"`
	}{A: NewDate(2025, 7, 4)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":"2025-07-04","b":null}` {
		t.Fatalf("unexpected json %s", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2025-13-01"`), &d); err == nil {
		t.Fatalf("expected error for month 13")
	}
}

func TestAddMonthsClampsDay(t *testing.T) {
	cases := []struct {
		from Date
		n    int
		want Date
	}{
		{NewDate(2025, 1, 31), 1, NewDate(2025, 2, 28)},
		{NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{NewDate(2025, 12, 15), 1, NewDate(2026, 1, 15)},
		{NewDate(2025, 3, 31), 1, NewDate(2025, 4, 30)},
	}
	for _, tc := range cases {
		if got := tc.from.AddMonths(tc.n); !got.Equal(tc.want.Time) {
			t.Fatalf("%s + %d months: expected %s, got %s", tc.from, tc.n, tc.want, got)
		}
	}
}

func TestSession(t *testing.T) {
	if _, err := NewSession("  "); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	s, err := NewSession("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := WithSession(context.Background(), s)
	got, ok := SessionFrom(ctx)
	if !ok || got.UserID != "user-1" {
		t.Fatalf("expected session in context, got %+v", got)
	}
}
