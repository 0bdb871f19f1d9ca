package storage

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

const goalColumns = `id, user_id, title, target_cents, current_cents, deadline, category, description, created_at, updated_at`

func scanGoal(sc interface{ Scan(...any) error }) (core.Goal, error) {
	var g core.Goal
	err := sc.Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		dateColumn{&g.Deadline}, &g.Category, &g.Description,
		timeColumn{&g.CreatedAt}, timeColumn{&g.UpdatedAt})
	return g, err
}

func (r *Repository) ListGoals(ctx context.Context, sess core.Session) ([]core.Goal, error) {
	out := make([]core.Goal, 0)
	err := r.withTx(ctx, sess, func(q querier) error {
		rows, err := q.query(ctx, `SELECT `+goalColumns+` FROM goals
			WHERE user_id = ? ORDER BY created_at, id`, sess.UserID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			g, err := scanGoal(rows)
			if err != nil {
				return err
			}
			out = append(out, g)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return out, nil
}

func getGoal(ctx context.Context, q querier, userID, id string) (core.Goal, error) {
	g, err := scanGoal(q.queryRow(ctx, `SELECT `+goalColumns+` FROM goals
		WHERE id = ? AND user_id = ?`, id, userID))
	return g, notFound(err)
}

func (r *Repository) GetGoal(ctx context.Context, sess core.Session, id string) (core.Goal, error) {
	var g core.Goal
	err := r.withTx(ctx, sess, func(q querier) (err error) {
		g, err = getGoal(ctx, q, sess.UserID, id)
		return err
	})
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *Repository) CreateGoal(ctx context.Context, sess core.Session, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	now := r.stamp()
	g.ID = newID()
	g.UserID = sess.UserID
	g.CreatedAt, g.UpdatedAt = now, now

	err := r.withTx(ctx, sess, func(q querier) error {
		_, err := q.exec(ctx, `INSERT INTO goals (`+goalColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.UserID, g.Title, g.TargetAmount.Cents, g.CurrentAmount.Cents,
			dateValue(g.Deadline), g.Category, g.Description,
			timeValue(g.CreatedAt), timeValue(g.UpdatedAt))
		return err
	})
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved",
		"id", g.ID,
		"user_id", g.UserID,
		"title", g.Title,
		"target_cents", g.TargetAmount.Cents)

	return g, nil
}

func (r *Repository) UpdateGoal(ctx context.Context, sess core.Session, id string, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	err := r.withTx(ctx, sess, func(q querier) error {
		cur, err := getGoal(ctx, q, sess.UserID, id)
		if err != nil {
			return err
		}
		g.ID, g.UserID, g.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
		g.UpdatedAt = r.stamp()
		res, err := q.exec(ctx, `UPDATE goals
			SET title = ?, target_cents = ?, current_cents = ?, deadline = ?, category = ?,
			    description = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			g.Title, g.TargetAmount.Cents, g.CurrentAmount.Cents, dateValue(g.Deadline), g.Category,
			g.Description, timeValue(g.UpdatedAt),
			id, sess.UserID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal updated", "id", id, "user_id", sess.UserID)
	return g, nil
}

// DeleteGoal unlinks the user's investments from the goal and then removes
// it, in one transaction. Linked investments are kept.
func (r *Repository) DeleteGoal(ctx context.Context, sess core.Session, id string) error {
	var unlinked int64
	err := r.withTx(ctx, sess, func(q querier) error {
		res, err := q.exec(ctx, `UPDATE investments SET goal_id = NULL, updated_at = ?
			WHERE goal_id = ? AND user_id = ?`, timeValue(r.stamp()), id, sess.UserID)
		if err != nil {
			return err
		}
		if unlinked, err = res.RowsAffected(); err != nil {
			return err
		}
		res, err = q.exec(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, sess.UserID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal deleted", "id", id, "user_id", sess.UserID, "unlinked_investments", unlinked)
	return nil
}
