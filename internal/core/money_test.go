package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		123456: "1234.56",
		-2550:  "-25.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("%d cents: expected %q, got %q", cents, want, got)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 100050})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "1000.50" {
		t.Fatalf("expected bare number, got %s", b)
	}

	for in, want := range map[string]int64{`12.5`: 1250, `"7,25"`: 725, `null`: 0, `-3`: -300} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("%s: unexpected error %v", in, err)
		}
		if m.Cents != want {
			t.Fatalf("%s: expected %d, got %d", in, want, m.Cents)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"ten"`), &m); err == nil {
		t.Fatalf("expected error for non numeric string")
	}
}
