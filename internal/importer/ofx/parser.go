// Package ofx turns OFX/QFX bank and credit card statements into
// transactions.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aclindsa/ofxgo"

	"fintrack/internal/core"
)

// Default categories for imported rows; OFX carries none of its own.
const (
	DefaultIncomeCategory  = "Income"
	DefaultExpenseCategory = "Uncategorized"
)

// ErrInvalidFile wraps every failure to read or parse a statement.
var ErrInvalidFile = errors.New("invalid OFX file")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct {
	IncomeCategory  string
	ExpenseCategory string
}

func NewParser() *Parser {
	return &Parser{
		IncomeCategory:  DefaultIncomeCategory,
		ExpenseCategory: DefaultExpenseCategory,
	}
}

// preprocess fixes formatting issues seen in real bank exports.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	// SGML files sometimes lose the closing bracket of a bare opening tag
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse reads one statement file. Credits become income and debits expense,
// both with the absolute amount.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]core.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrInvalidFile, err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	var txs []core.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			txs = append(txs, p.convertAll(ctx, stmt.BankTranList.Transactions)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			txs = append(txs, p.convertAll(ctx, stmt.BankTranList.Transactions)...)
		}
	}

	slog.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", len(txs),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)
	return txs, nil
}

func (p *Parser) convertAll(ctx context.Context, in []ofxgo.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(in))
	for _, t := range in {
		tx, err := p.convert(t)
		if err != nil {
			slog.WarnContext(ctx, "Skipping OFX transaction",
				"fitid", string(t.FiTID),
				"error", err)
			continue
		}
		out = append(out, tx)
	}
	return out
}

func (p *Parser) convert(t ofxgo.Transaction) (core.Transaction, error) {
	amount := t.TrnAmt.FloatString(2)
	typ := core.Expense
	if t.TrnAmt.Sign() > 0 {
		typ = core.Income
	}
	cents, err := core.ParseDecimalToCents(strings.TrimPrefix(amount, "-"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %s: %w", amount, err)
	}

	tx := core.Transaction{
		Type:        typ,
		Amount:      core.Money{Cents: cents},
		Category:    p.category(t, typ),
		Description: truncate(description(t), core.MaxDescriptionLength),
		Date:        core.DateOf(t.DtPosted.Time),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (p *Parser) category(t ofxgo.Transaction, typ core.TransactionType) string {
	switch t.TrnType {
	case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
		return "Interest"
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		return "Bank Fees"
	case ofxgo.TrnTypeATM:
		return "Cash"
	}
	if typ == core.Income {
		return p.IncomeCategory
	}
	return p.ExpenseCategory
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

var namePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// description picks the cleanest counterparty text the bank supplied.
func description(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}

	name := strings.TrimSpace(string(t.Name))
	if t.Memo != "" && (name == "" || genericNames[strings.ToUpper(name)]) {
		name = strings.TrimSpace(string(t.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range namePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// leading "MM/DD " posting dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

// truncate keeps at most max characters of s.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
