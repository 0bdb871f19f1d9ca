package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	BillPaid    BillStatus = "paid"
	BillPending BillStatus = "pending"
	BillOverdue BillStatus = "overdue"
)

// MaxDescriptionLength bounds free-text descriptions on every record type.
const MaxDescriptionLength = 200

type (
	TransactionType string
	BillStatus      string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	Bill struct {
		ID        string     `json:"id"`
		UserID    string     `json:"userId"`
		Name      string     `json:"name"`
		Amount    Money      `json:"amount"`
		DueDate   Date       `json:"dueDate"`
		Status    BillStatus `json:"status"`
		Category  string     `json:"category"`
		Recurring bool       `json:"recurring"`
		CreatedAt time.Time  `json:"createdAt"`
	}

	Goal struct {
		ID            string    `json:"id"`
		UserID        string    `json:"userId"`
		Title         string    `json:"title"`
		TargetAmount  Money     `json:"targetAmount"`
		CurrentAmount Money     `json:"currentAmount"`
		Deadline      Date      `json:"deadline"` // optional
		Category      string    `json:"category"`
		Description   string    `json:"description"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	Investment struct {
		ID             string    `json:"id"`
		UserID         string    `json:"userId"`
		Name           string    `json:"name"`
		Type           string    `json:"type"`
		AmountInvested Money     `json:"amountInvested"`
		CurrentValue   Money     `json:"currentValue"`
		PurchaseDate   Date      `json:"purchaseDate"`
		GoalID         string    `json:"goalId"` // weak reference, empty when unlinked
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidStatus      = errors.New("invalid bill status")
	ErrEmptyTitle         = errors.New("empty title")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyCategory      = errors.New("empty category")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
)

// ValidationError marks input that was rejected before reaching the store.
// Field names the offending attribute using its JSON name.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidationError reports whether err was produced by record validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (s BillStatus) Valid() bool {
	switch s {
	case BillPaid, BillPending, BillOverdue:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validateDescription(s string) error {
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return invalid("description", ErrDescriptionTooLong)
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return invalid("type", ErrInvalidType)
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if err := t.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	return validateDescription(t.Description)
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if err := b.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if err := b.DueDate.Validate(); err != nil {
		return invalid("dueDate", err)
	}
	if !b.Status.Valid() {
		return invalid("status", ErrInvalidStatus)
	}
	if strings.TrimSpace(b.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return invalid("title", ErrEmptyTitle)
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return invalid("targetAmount", err)
	}
	if err := g.CurrentAmount.Validate(); err != nil {
		return invalid("currentAmount", err)
	}
	if strings.TrimSpace(g.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	// Deadline is optional; a zero date means "no deadline".
	if !g.Deadline.IsZero() {
		if err := g.Deadline.Validate(); err != nil {
			return invalid("deadline", err)
		}
	}
	return validateDescription(g.Description)
}

func (i Investment) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if strings.TrimSpace(i.Type) == "" {
		return invalid("type", ErrInvalidType)
	}
	if err := i.AmountInvested.Validate(); err != nil {
		return invalid("amountInvested", err)
	}
	if err := i.CurrentValue.Validate(); err != nil {
		return invalid("currentValue", err)
	}
	if err := i.PurchaseDate.Validate(); err != nil {
		return invalid("purchaseDate", err)
	}
	return nil
}

// Progress returns currentAmount/targetAmount as a percentage.
// A zero target yields 0 rather than dividing by zero.
func (g Goal) Progress() float64 {
	if g.TargetAmount.Cents == 0 {
		return 0
	}
	return float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
}

// Remaining returns how much is still missing to reach the target, never negative.
func (g Goal) Remaining() Money {
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		return Money{}
	}
	return Money{Cents: g.TargetAmount.Cents - g.CurrentAmount.Cents}
}

// Gain is the unrealized result of the holding; it can be negative.
func (i Investment) Gain() Money {
	return Money{Cents: i.CurrentValue.Cents - i.AmountInvested.Cents}
}
