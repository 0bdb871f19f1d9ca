package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const investmentColumns = `id, user_id, name, type, invested_cents, current_cents, purchase_date, goal_id, created_at, updated_at`

func scanInvestment(sc interface{ Scan(...any) error }) (core.Investment, error) {
	var i core.Investment
	var goalID sql.NullString
	err := sc.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.AmountInvested.Cents, &i.CurrentValue.Cents,
		dateColumn{&i.PurchaseDate}, &goalID, timeColumn{&i.CreatedAt}, timeColumn{&i.UpdatedAt})
	i.GoalID = goalID.String
	return i, err
}

// checkGoal verifies that goalID, when set, names one of the user's goals.
func checkGoal(ctx context.Context, q querier, userID, goalID string) error {
	if goalID == "" {
		return nil
	}
	var one int
	err := q.queryRow(ctx, `SELECT 1 FROM goals WHERE id = ? AND user_id = ?`, goalID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrInvalidReference
	}
	return err
}

func (r *Repository) ListInvestments(ctx context.Context, sess core.Session) ([]core.Investment, error) {
	out := make([]core.Investment, 0)
	err := r.withTx(ctx, sess, func(q querier) error {
		rows, err := q.query(ctx, `SELECT `+investmentColumns+` FROM investments
			WHERE user_id = ? ORDER BY created_at, id`, sess.UserID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			i, err := scanInvestment(rows)
			if err != nil {
				return err
			}
			out = append(out, i)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return out, nil
}

func getInvestment(ctx context.Context, q querier, userID, id string) (core.Investment, error) {
	i, err := scanInvestment(q.queryRow(ctx, `SELECT `+investmentColumns+` FROM investments
		WHERE id = ? AND user_id = ?`, id, userID))
	return i, notFound(err)
}

func (r *Repository) GetInvestment(ctx context.Context, sess core.Session, id string) (core.Investment, error) {
	var i core.Investment
	err := r.withTx(ctx, sess, func(q querier) (err error) {
		i, err = getInvestment(ctx, q, sess.UserID, id)
		return err
	})
	if err != nil {
		return core.Investment{}, fmt.Errorf("get investment: %w", err)
	}
	return i, nil
}

func (r *Repository) CreateInvestment(ctx context.Context, sess core.Session, i core.Investment) (core.Investment, error) {
	if err := i.Validate(); err != nil {
		return core.Investment{}, err
	}
	now := r.stamp()
	i.ID = newID()
	i.UserID = sess.UserID
	i.CreatedAt, i.UpdatedAt = now, now

	err := r.withTx(ctx, sess, func(q querier) error {
		if err := checkGoal(ctx, q, sess.UserID, i.GoalID); err != nil {
			return err
		}
		_, err := q.exec(ctx, `INSERT INTO investments (`+investmentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i.ID, i.UserID, i.Name, i.Type, i.AmountInvested.Cents, i.CurrentValue.Cents,
			dateValue(i.PurchaseDate), nullable(i.GoalID),
			timeValue(i.CreatedAt), timeValue(i.UpdatedAt))
		return err
	})
	if err != nil {
		return core.Investment{}, fmt.Errorf("create investment: %w", err)
	}

	slog.InfoContext(ctx, "Investment saved",
		"id", i.ID,
		"user_id", i.UserID,
		"name", i.Name,
		"goal_id", i.GoalID)

	return i, nil
}

func (r *Repository) UpdateInvestment(ctx context.Context, sess core.Session, id string, i core.Investment) (core.Investment, error) {
	if err := i.Validate(); err != nil {
		return core.Investment{}, err
	}
	err := r.withTx(ctx, sess, func(q querier) error {
		cur, err := getInvestment(ctx, q, sess.UserID, id)
		if err != nil {
			return err
		}
		if err := checkGoal(ctx, q, sess.UserID, i.GoalID); err != nil {
			return err
		}
		i.ID, i.UserID, i.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
		i.UpdatedAt = r.stamp()
		res, err := q.exec(ctx, `UPDATE investments
			SET name = ?, type = ?, invested_cents = ?, current_cents = ?, purchase_date = ?,
			    goal_id = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			i.Name, i.Type, i.AmountInvested.Cents, i.CurrentValue.Cents, dateValue(i.PurchaseDate),
			nullable(i.GoalID), timeValue(i.UpdatedAt),
			id, sess.UserID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return core.Investment{}, fmt.Errorf("update investment: %w", err)
	}
	slog.InfoContext(ctx, "Investment updated", "id", id, "user_id", sess.UserID)
	return i, nil
}

func (r *Repository) DeleteInvestment(ctx context.Context, sess core.Session, id string) error {
	err := r.withTx(ctx, sess, func(q querier) error {
		res, err := q.exec(ctx, `DELETE FROM investments WHERE id = ? AND user_id = ?`, id, sess.UserID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	slog.InfoContext(ctx, "Investment deleted", "id", id, "user_id", sess.UserID)
	return nil
}
