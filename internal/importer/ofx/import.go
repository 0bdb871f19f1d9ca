package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"fintrack/internal/core"
)

// TransactionWriter is what Import needs from the record layer.
// services.RecordService and every store.Store satisfy it.
type TransactionWriter interface {
	ListTransactions(ctx context.Context, sess core.Session) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, sess core.Session, t core.Transaction) (core.Transaction, error)
}

// Result summarizes one import run.
type Result struct {
	Parsed   int `json:"parsed"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func fingerprint(t core.Transaction) string {
	return t.Date.String() + "|" + string(t.Type) + "|" +
		strconv.FormatInt(t.Amount.Cents, 10) + "|" + t.Description
}

// Deduplicate drops incoming transactions that match an existing one on
// date, type, amount and description, so re-importing an overlapping
// statement adds nothing twice. Duplicates inside incoming are kept, since
// two identical card payments on one day are legitimate.
func Deduplicate(existing, incoming []core.Transaction) []core.Transaction {
	seen := make(map[string]int, len(existing))
	for _, t := range existing {
		seen[fingerprint(t)]++
	}
	out := make([]core.Transaction, 0, len(incoming))
	for _, t := range incoming {
		k := fingerprint(t)
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		out = append(out, t)
	}
	return out
}

// Import parses r and creates the transactions the user does not have yet.
func (p *Parser) Import(ctx context.Context, sess core.Session, r io.Reader, dst TransactionWriter) (Result, error) {
	parsed, err := p.Parse(ctx, r)
	if err != nil {
		return Result{}, err
	}
	existing, err := dst.ListTransactions(ctx, sess)
	if err != nil {
		return Result{}, fmt.Errorf("list transactions: %w", err)
	}

	fresh := Deduplicate(existing, parsed)
	res := Result{Parsed: len(parsed), Skipped: len(parsed) - len(fresh)}
	for _, t := range fresh {
		if _, err := dst.CreateTransaction(ctx, sess, t); err != nil {
			return res, fmt.Errorf("create transaction: %w", err)
		}
		res.Imported++
	}

	slog.InfoContext(ctx, "OFX import complete",
		"user_id", sess.UserID,
		"parsed", res.Parsed,
		"imported", res.Imported,
		"skipped", res.Skipped)
	return res, nil
}
