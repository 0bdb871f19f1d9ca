package memory

import (
	"context"
	"testing"
)

func TestReplaceAndRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	rows := [][]string{{"id", "amount"}, {"t1", "12.50"}}
	if err := s.ReplaceSheet(ctx, "alice transactions", rows); err != nil {
		t.Fatalf("replace: %v", err)
	}
	rows[1][1] = "mutated"

	got, err := s.ReadSheet(ctx, "alice transactions")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[1][1] != "12.50" {
		t.Fatalf("expected stored copy, got %v", got)
	}

	if err := s.ReplaceSheet(ctx, "alice transactions", [][]string{{"id"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ = s.ReadSheet(ctx, "alice transactions")
	if len(got) != 1 {
		t.Fatalf("expected contents replaced, got %v", got)
	}
	if s.Writes() != 2 {
		t.Fatalf("expected 2 writes, got %d", s.Writes())
	}
}

func TestReadMissingSheet(t *testing.T) {
	if _, err := New().ReadSheet(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing sheet")
	}
}

func TestTitlesSorted(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.ReplaceSheet(ctx, "bob bills", nil)
	_ = s.ReplaceSheet(ctx, "alice goals", nil)

	titles := s.Titles()
	if len(titles) != 2 || titles[0] != "alice goals" || titles[1] != "bob bills" {
		t.Fatalf("unexpected titles %v", titles)
	}
	if err := s.ReplaceSheet(ctx, "", nil); err == nil {
		t.Fatal("expected error for empty title")
	}
}
