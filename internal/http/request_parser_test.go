package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func parserFor(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	p := NewRequestBodyParser(httptest.NewRecorder(), r)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p
}

func TestRequestBodyParser_JSONAndForm(t *testing.T) {
	j := parserFor(t, "application/json", `{"amount": 12.5, "recurring": true, "name": "  Rent\u0007 "}`)
	if !j.IsJSON() {
		t.Error("expected JSON body")
	}
	if j.Get("amount") != "12.5" || !j.Bool("recurring") || j.Get("name") != "Rent" {
		t.Errorf("json values: amount=%q recurring=%v name=%q", j.Get("amount"), j.Bool("recurring"), j.Get("name"))
	}

	f := parserFor(t, "application/x-www-form-urlencoded", "amount=12%2C50&recurring=on")
	if f.IsJSON() {
		t.Error("form body detected as JSON")
	}
	m, err := f.Money("amount")
	if err != nil || m.Cents != 1250 {
		t.Errorf("Money = %v, %v", m, err)
	}
	if !f.Bool("recurring") || f.Bool("missing") {
		t.Error("checkbox parsing")
	}
}

func TestRequestBodyParser_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":`))
	p := NewRequestBodyParser(httptest.NewRecorder(), r)
	if err := p.Parse(); !errors.Is(err, errMalformedBody) {
		t.Errorf("Parse() error = %v, want errMalformedBody", err)
	}
}

func TestRequestBodyParser_FieldErrors(t *testing.T) {
	p := parserFor(t, "", "amount=abc&date=tomorrow")

	_, err := p.Money("amount")
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount" || !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Money error = %v", err)
	}
	if _, err := p.Date("date"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("Date error = %v", err)
	}
	if d, err := p.OptionalDate("deadline"); err != nil || !d.IsZero() {
		t.Errorf("OptionalDate = %v, %v", d, err)
	}
	if m, err := p.OptionalMoney("currentAmount"); err != nil || m.Cents != 0 {
		t.Errorf("OptionalMoney = %v, %v", m, err)
	}
}

func TestParseBillDefaultsToPending(t *testing.T) {
	p := parserFor(t, "", "name=Rent&amount=900&dueDate=2025-03-01&category=Housing")
	b, err := parseBill(p)
	if err != nil {
		t.Fatalf("parseBill: %v", err)
	}
	if b.Status != core.BillPending || b.Recurring {
		t.Errorf("bill = %+v", b)
	}
}

func TestFormatEuros(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "€0,00"},
		{5, "€0,05"},
		{123456, "€1.234,56"},
		{-100000050, "-€1.000.000,50"},
	}
	for _, tt := range tests {
		if got := formatEuros(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("formatEuros(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
