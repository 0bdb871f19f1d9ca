// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request bodies.
// JSON and form-encoded bodies go through the same accessors so a handler
// serves both API clients and HTMX forms.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// MaxBodyBytes bounds JSON and form bodies.
const MaxBodyBytes = 1 << 20

// errMalformedBody marks a body that could not be decoded at all; it maps to
// 400 where field-level problems map to 422.
var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r, up to MaxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || body[0] == '{' || body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Money reads a required amount field.
func (p *RequestBodyParser) Money(key string) (core.Money, error) {
	m, err := core.ParseMoney(p.Get(key))
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: key, Err: core.ErrInvalidAmount}
	}
	return m, nil
}

// OptionalMoney reads an amount field that defaults to zero when absent.
func (p *RequestBodyParser) OptionalMoney(key string) (core.Money, error) {
	if p.Get(key) == "" {
		return core.Money{}, nil
	}
	return p.Money(key)
}

// Date reads a required YYYY-MM-DD field.
func (p *RequestBodyParser) Date(key string) (core.Date, error) {
	d, err := core.ParseDate(p.Get(key))
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: key, Err: core.ErrInvalidDate}
	}
	return d, nil
}

// OptionalDate reads a date field that stays zero when absent.
func (p *RequestBodyParser) OptionalDate(key string) (core.Date, error) {
	if p.Get(key) == "" {
		return core.Date{}, nil
	}
	return p.Date(key)
}

// Bool accepts JSON booleans and the values HTML checkboxes send.
func (p *RequestBodyParser) Bool(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func parseTransaction(p *RequestBodyParser) (core.Transaction, error) {
	amount, err := p.Money("amount")
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := p.Date("date")
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Type:        core.TransactionType(strings.ToLower(p.Get("type"))),
		Amount:      amount,
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        date,
	}, nil
}

func parseBill(p *RequestBodyParser) (core.Bill, error) {
	amount, err := p.Money("amount")
	if err != nil {
		return core.Bill{}, err
	}
	due, err := p.Date("dueDate")
	if err != nil {
		return core.Bill{}, err
	}
	status := core.BillStatus(strings.ToLower(p.Get("status")))
	if status == "" {
		status = core.BillPending
	}
	return core.Bill{
		Name:      p.Get("name"),
		Amount:    amount,
		DueDate:   due,
		Status:    status,
		Category:  p.Get("category"),
		Recurring: p.Bool("recurring"),
	}, nil
}

func parseGoal(p *RequestBodyParser) (core.Goal, error) {
	target, err := p.Money("targetAmount")
	if err != nil {
		return core.Goal{}, err
	}
	current, err := p.OptionalMoney("currentAmount")
	if err != nil {
		return core.Goal{}, err
	}
	deadline, err := p.OptionalDate("deadline")
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		Title:         p.Get("title"),
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
		Category:      p.Get("category"),
		Description:   p.Get("description"),
	}, nil
}

func parseInvestment(p *RequestBodyParser) (core.Investment, error) {
	invested, err := p.Money("amountInvested")
	if err != nil {
		return core.Investment{}, err
	}
	current, err := p.Money("currentValue")
	if err != nil {
		return core.Investment{}, err
	}
	purchased, err := p.Date("purchaseDate")
	if err != nil {
		return core.Investment{}, err
	}
	return core.Investment{
		Name:           p.Get("name"),
		Type:           p.Get("type"),
		AmountInvested: invested,
		CurrentValue:   current,
		PurchaseDate:   purchased,
		GoalID:         p.Get("goalId"),
	}, nil
}
