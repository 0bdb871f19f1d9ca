package storage

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

const billColumns = `id, user_id, name, amount_cents, due_date, status, category, recurring, created_at`

func scanBill(sc interface{ Scan(...any) error }) (core.Bill, error) {
	var b core.Bill
	var status string
	err := sc.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount.Cents, dateColumn{&b.DueDate}, &status,
		&b.Category, &b.Recurring, timeColumn{&b.CreatedAt})
	b.Status = core.BillStatus(status)
	return b, err
}

func (r *Repository) ListBills(ctx context.Context, sess core.Session) ([]core.Bill, error) {
	out := make([]core.Bill, 0)
	err := r.withTx(ctx, sess, func(q querier) error {
		rows, err := q.query(ctx, `SELECT `+billColumns+` FROM bills
			WHERE user_id = ? ORDER BY due_date, created_at, id`, sess.UserID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			b, err := scanBill(rows)
			if err != nil {
				return err
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return out, nil
}

func getBill(ctx context.Context, q querier, userID, id string) (core.Bill, error) {
	b, err := scanBill(q.queryRow(ctx, `SELECT `+billColumns+` FROM bills
		WHERE id = ? AND user_id = ?`, id, userID))
	return b, notFound(err)
}

func (r *Repository) GetBill(ctx context.Context, sess core.Session, id string) (core.Bill, error) {
	var b core.Bill
	err := r.withTx(ctx, sess, func(q querier) (err error) {
		b, err = getBill(ctx, q, sess.UserID, id)
		return err
	})
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

func (r *Repository) CreateBill(ctx context.Context, sess core.Session, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	b.ID = newID()
	b.UserID = sess.UserID
	b.CreatedAt = r.stamp()

	err := r.withTx(ctx, sess, func(q querier) error {
		_, err := q.exec(ctx, `INSERT INTO bills (`+billColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.UserID, b.Name, b.Amount.Cents, dateValue(b.DueDate), string(b.Status),
			b.Category, b.Recurring, timeValue(b.CreatedAt))
		return err
	})
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}

	slog.InfoContext(ctx, "Bill saved",
		"id", b.ID,
		"user_id", b.UserID,
		"name", b.Name,
		"amount_cents", b.Amount.Cents,
		"due_date", b.DueDate.String())

	return b, nil
}

func (r *Repository) UpdateBill(ctx context.Context, sess core.Session, id string, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	err := r.withTx(ctx, sess, func(q querier) error {
		cur, err := getBill(ctx, q, sess.UserID, id)
		if err != nil {
			return err
		}
		b.ID, b.UserID, b.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
		res, err := q.exec(ctx, `UPDATE bills
			SET name = ?, amount_cents = ?, due_date = ?, status = ?, category = ?, recurring = ?
			WHERE id = ? AND user_id = ?`,
			b.Name, b.Amount.Cents, dateValue(b.DueDate), string(b.Status), b.Category, b.Recurring,
			id, sess.UserID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}
	slog.InfoContext(ctx, "Bill updated", "id", id, "user_id", sess.UserID, "status", b.Status)
	return b, nil
}

func (r *Repository) DeleteBill(ctx context.Context, sess core.Session, id string) error {
	err := r.withTx(ctx, sess, func(q querier) error {
		res, err := q.exec(ctx, `DELETE FROM bills WHERE id = ? AND user_id = ?`, id, sess.UserID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	slog.InfoContext(ctx, "Bill deleted", "id", id, "user_id", sess.UserID)
	return nil
}
