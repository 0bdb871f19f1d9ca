package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/sheets"
	"fintrack/internal/store"
)

// MirrorWorker keeps one spreadsheet tab per user and record kind in line
// with the store. Each change event rewrites the whole tab from a fresh
// list, so events may arrive out of order or twice without harm.
type MirrorWorker struct {
	store  store.Store
	sheets sheets.TableWriter
	today  func() core.Date
}

func NewMirrorWorker(st store.Store, writer sheets.TableWriter) *MirrorWorker {
	return &MirrorWorker{
		store:  st,
		sheets: writer,
		today:  core.Today,
	}
}

// WithToday replaces the calendar used for the effective bill status column.
func (w *MirrorWorker) WithToday(today func() core.Date) *MirrorWorker {
	w.today = today
	return w
}

// HandleRecordChange is an amqp.Handler. Events for unknown kinds are
// dropped; store and sheet failures are returned so the delivery is retried.
func (w *MirrorWorker) HandleRecordChange(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	kind, err := export.ParseKind(msg.Kind)
	if err != nil {
		slog.WarnContext(ctx, "Ignoring change event for unknown kind",
			"kind", msg.Kind,
			"user_id", msg.UserID)
		return nil
	}

	slog.InfoContext(ctx, "Processing change event",
		"kind", kind,
		"op", msg.Op,
		"id", msg.ID,
		"user_id", msg.UserID)

	sess, err := core.NewSession(msg.UserID)
	if err != nil {
		return nil
	}
	return w.MirrorKind(ctx, sess, kind)
}

// MirrorKind rewrites the user's tab for one kind.
func (w *MirrorWorker) MirrorKind(ctx context.Context, sess core.Session, kind export.Kind) error {
	snap, err := w.load(ctx, sess, kind)
	if err != nil {
		return err
	}

	values, err := export.Values(export.SnapshotRows(snap, kind, w.today()))
	if err != nil {
		return fmt.Errorf("build %s rows: %w", kind, err)
	}

	title := sheets.SheetTitle(sess.UserID, string(kind))
	if err := w.sheets.ReplaceSheet(ctx, title, values); err != nil {
		return fmt.Errorf("mirror %s to sheet: %w", kind, err)
	}

	slog.InfoContext(ctx, "Mirrored records to sheet",
		"kind", kind,
		"sheet", title,
		"rows", max(len(values)-1, 0))
	return nil
}

// MirrorUser rewrites every tab of the user. It is used for a full resync
// after the worker missed events.
func (w *MirrorWorker) MirrorUser(ctx context.Context, sess core.Session) error {
	successCount, errorCount := 0, 0
	var firstErr error
	for _, kind := range export.Kinds {
		if err := w.MirrorKind(ctx, sess, kind); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror kind",
				"kind", kind,
				"user_id", sess.UserID,
				"error", err)
			errorCount++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Resync completed",
		"user_id", sess.UserID,
		"success_count", successCount,
		"error_count", errorCount)
	return firstErr
}

func (w *MirrorWorker) load(ctx context.Context, sess core.Session, kind export.Kind) (core.Snapshot, error) {
	var (
		snap core.Snapshot
		err  error
	)
	switch kind {
	case export.KindTransactions:
		snap.Transactions, err = w.store.ListTransactions(ctx, sess)
	case export.KindBills:
		snap.Bills, err = w.store.ListBills(ctx, sess)
	case export.KindGoals:
		snap.Goals, err = w.store.ListGoals(ctx, sess)
	case export.KindInvestments:
		snap.Investments, err = w.store.ListInvestments(ctx, sess)
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list %s: %w", kind, err)
	}
	return snap, nil
}
