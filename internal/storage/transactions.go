package storage

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

const transactionColumns = `id, user_id, type, amount_cents, category, description, date, created_at`

func scanTransaction(sc interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var typ string
	err := sc.Scan(&t.ID, &t.UserID, &typ, &t.Amount.Cents, &t.Category, &t.Description,
		dateColumn{&t.Date}, timeColumn{&t.CreatedAt})
	t.Type = core.TransactionType(typ)
	return t, err
}

func (r *Repository) ListTransactions(ctx context.Context, sess core.Session) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0)
	err := r.withTx(ctx, sess, func(q querier) error {
		rows, err := q.query(ctx, `SELECT `+transactionColumns+` FROM transactions
			WHERE user_id = ? ORDER BY date DESC, created_at DESC, id`, sess.UserID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			t, err := scanTransaction(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func getTransaction(ctx context.Context, q querier, userID, id string) (core.Transaction, error) {
	t, err := scanTransaction(q.queryRow(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE id = ? AND user_id = ?`, id, userID))
	return t, notFound(err)
}

func (r *Repository) GetTransaction(ctx context.Context, sess core.Session, id string) (core.Transaction, error) {
	var t core.Transaction
	err := r.withTx(ctx, sess, func(q querier) (err error) {
		t, err = getTransaction(ctx, q, sess.UserID, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, sess core.Session, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = newID()
	t.UserID = sess.UserID
	t.CreatedAt = r.stamp()

	err := r.withTx(ctx, sess, func(q querier) error {
		_, err := q.exec(ctx, `INSERT INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.UserID, string(t.Type), t.Amount.Cents, t.Category, t.Description,
			dateValue(t.Date), timeValue(t.CreatedAt))
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, sess core.Session, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	err := r.withTx(ctx, sess, func(q querier) error {
		cur, err := getTransaction(ctx, q, sess.UserID, id)
		if err != nil {
			return err
		}
		t.ID, t.UserID, t.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
		res, err := q.exec(ctx, `UPDATE transactions
			SET type = ?, amount_cents = ?, category = ?, description = ?, date = ?
			WHERE id = ? AND user_id = ?`,
			string(t.Type), t.Amount.Cents, t.Category, t.Description, dateValue(t.Date),
			id, sess.UserID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction updated", "id", id, "user_id", sess.UserID)
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, sess core.Session, id string) error {
	err := r.withTx(ctx, sess, func(q querier) error {
		res, err := q.exec(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, sess.UserID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", sess.UserID)
	return nil
}
