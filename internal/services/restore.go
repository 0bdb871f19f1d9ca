package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// RestoreResult counts the records created by Restore, per kind.
type RestoreResult struct {
	Goals        int `json:"goals"`
	Transactions int `json:"transactions"`
	Bills        int `json:"bills"`
	Investments  int `json:"investments"`
}

// Restore recreates the records of snap under sess. Records get fresh ids;
// investments are relinked to the new ids of their goals, and a goalId that
// names no goal in snap is dropped. Restore stops at the first failure and
// reports what was created up to that point.
func (s *RecordService) Restore(ctx context.Context, sess core.Session, snap core.Snapshot) (RestoreResult, error) {
	var res RestoreResult
	goalIDs := make(map[string]string, len(snap.Goals))

	for _, g := range snap.Goals {
		created, err := s.CreateGoal(ctx, sess, g)
		if err != nil {
			return res, fmt.Errorf("restore goal %q: %w", g.Title, err)
		}
		goalIDs[g.ID] = created.ID
		res.Goals++
	}
	for _, t := range snap.Transactions {
		if _, err := s.CreateTransaction(ctx, sess, t); err != nil {
			return res, fmt.Errorf("restore transaction %q: %w", t.Description, err)
		}
		res.Transactions++
	}
	for _, b := range snap.Bills {
		if _, err := s.CreateBill(ctx, sess, b); err != nil {
			return res, fmt.Errorf("restore bill %q: %w", b.Name, err)
		}
		res.Bills++
	}
	for _, i := range snap.Investments {
		if i.GoalID != "" {
			i.GoalID = goalIDs[i.GoalID]
		}
		if _, err := s.CreateInvestment(ctx, sess, i); err != nil {
			return res, fmt.Errorf("restore investment %q: %w", i.Name, err)
		}
		res.Investments++
	}

	slog.InfoContext(ctx, "Backup restored",
		"user_id", sess.UserID,
		"goals", res.Goals,
		"transactions", res.Transactions,
		"bills", res.Bills,
		"investments", res.Investments)
	return res, nil
}
