package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/store"
)

// Publisher is the change feed a RecordService announces writes on.
// *amqp.Client satisfies it.
type Publisher interface {
	PublishRecordChange(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// Invalidator drops memoized views for a user after a write.
type Invalidator interface {
	Invalidate(userID string)
}

// RecordService validates user input, writes it through the store and then,
// best-effort, invalidates the user's dashboard and publishes a change
// event. Side-effect failures are logged and never fail the write.
type RecordService struct {
	store       store.Store
	publisher   Publisher
	invalidator Invalidator
	today       func() core.Date
}

func NewRecordService(st store.Store, publisher Publisher, invalidator Invalidator) *RecordService {
	return &RecordService{
		store:       st,
		publisher:   publisher,
		invalidator: invalidator,
		today:       core.Today,
	}
}

// WithToday replaces the calendar used for bill status resolution.
func (s *RecordService) WithToday(today func() core.Date) *RecordService {
	s.today = today
	return s
}

// Store exposes the underlying store for read paths.
func (s *RecordService) Store() store.Store { return s.store }

func (s *RecordService) changed(ctx context.Context, sess core.Session, kind export.Kind, op, id string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(sess.UserID)
	}
	slog.InfoContext(ctx, "Record changed",
		"kind", kind,
		"op", op,
		"id", id,
		"user_id", sess.UserID)

	if s.publisher == nil {
		slog.DebugContext(ctx, "Change feed not configured, skipping publish")
		return
	}
	msg := amqp.NewRecordChangedMessage(string(kind), op, sess.UserID, id)
	if err := s.publisher.PublishRecordChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"kind", kind,
			"id", id,
			"error", err)
	}
}

// Transactions

func (s *RecordService) ListTransactions(ctx context.Context, sess core.Session) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *RecordService) CreateTransaction(ctx context.Context, sess core.Session, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, sess, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.changed(ctx, sess, export.KindTransactions, amqp.OpCreated, created.ID)
	return created, nil
}

func (s *RecordService) UpdateTransaction(ctx context.Context, sess core.Session, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.store.UpdateTransaction(ctx, sess, id, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.changed(ctx, sess, export.KindTransactions, amqp.OpUpdated, id)
	return updated, nil
}

func (s *RecordService) DeleteTransaction(ctx context.Context, sess core.Session, id string) error {
	if err := s.store.DeleteTransaction(ctx, sess, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.changed(ctx, sess, export.KindTransactions, amqp.OpDeleted, id)
	return nil
}

// Bills

// ListBills returns the user's bills with their effective status.
func (s *RecordService) ListBills(ctx context.Context, sess core.Session) ([]core.Bill, error) {
	bills, err := s.store.ListBills(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	today := s.today()
	for i := range bills {
		bills[i] = bills[i].WithEffectiveStatus(today)
	}
	return bills, nil
}

func (s *RecordService) CreateBill(ctx context.Context, sess core.Session, b core.Bill) (core.Bill, error) {
	if b.Status == "" {
		b.Status = core.BillPending
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	created, err := s.store.CreateBill(ctx, sess, b)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	s.changed(ctx, sess, export.KindBills, amqp.OpCreated, created.ID)
	return created, nil
}

// UpdateBill stores b. When the update marks a recurring bill paid, the
// following month's bill is created as well.
func (s *RecordService) UpdateBill(ctx context.Context, sess core.Session, id string, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	before, err := s.store.GetBill(ctx, sess, id)
	if err != nil {
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}
	updated, err := s.store.UpdateBill(ctx, sess, id, b)
	if err != nil {
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}
	s.changed(ctx, sess, export.KindBills, amqp.OpUpdated, id)

	if before.Status != core.BillPaid && updated.Status == core.BillPaid && updated.Recurring {
		if _, err := s.rollForward(ctx, sess, updated); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

// MarkPaid sets a bill's stored status to paid. For a recurring bill the
// next pending occurrence is returned as well; next is nil otherwise.
// Paying an already paid bill changes nothing.
func (s *RecordService) MarkPaid(ctx context.Context, sess core.Session, id string) (paid core.Bill, next *core.Bill, err error) {
	b, err := s.store.GetBill(ctx, sess, id)
	if err != nil {
		return core.Bill{}, nil, fmt.Errorf("mark bill paid: %w", err)
	}
	if b.Status == core.BillPaid {
		return b, nil, nil
	}

	b.Status = core.BillPaid
	paid, err = s.store.UpdateBill(ctx, sess, id, b)
	if err != nil {
		return core.Bill{}, nil, fmt.Errorf("mark bill paid: %w", err)
	}
	s.changed(ctx, sess, export.KindBills, amqp.OpUpdated, id)

	if !paid.Recurring {
		return paid, nil, nil
	}
	n, err := s.rollForward(ctx, sess, paid)
	if err != nil {
		return paid, nil, err
	}
	return paid, &n, nil
}

func (s *RecordService) DeleteBill(ctx context.Context, sess core.Session, id string) error {
	if err := s.store.DeleteBill(ctx, sess, id); err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	s.changed(ctx, sess, export.KindBills, amqp.OpDeleted, id)
	return nil
}

// Goals

func (s *RecordService) ListGoals(ctx context.Context, sess core.Session) ([]core.Goal, error) {
	goals, err := s.store.ListGoals(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *RecordService) CreateGoal(ctx context.Context, sess core.Session, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	created, err := s.store.CreateGoal(ctx, sess, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.changed(ctx, sess, export.KindGoals, amqp.OpCreated, created.ID)
	return created, nil
}

func (s *RecordService) UpdateGoal(ctx context.Context, sess core.Session, id string, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	updated, err := s.store.UpdateGoal(ctx, sess, id, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	s.changed(ctx, sess, export.KindGoals, amqp.OpUpdated, id)
	return updated, nil
}

// DeleteGoal removes a goal. Investments that referenced it lose the link,
// so the investments list changes too.
func (s *RecordService) DeleteGoal(ctx context.Context, sess core.Session, id string) error {
	if err := s.store.DeleteGoal(ctx, sess, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.changed(ctx, sess, export.KindGoals, amqp.OpDeleted, id)
	s.changed(ctx, sess, export.KindInvestments, amqp.OpUpdated, "")
	return nil
}

// Investments

func (s *RecordService) ListInvestments(ctx context.Context, sess core.Session) ([]core.Investment, error) {
	investments, err := s.store.ListInvestments(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return investments, nil
}

func (s *RecordService) CreateInvestment(ctx context.Context, sess core.Session, i core.Investment) (core.Investment, error) {
	if err := i.Validate(); err != nil {
		return core.Investment{}, err
	}
	created, err := s.store.CreateInvestment(ctx, sess, i)
	if err != nil {
		return core.Investment{}, fmt.Errorf("create investment: %w", err)
	}
	s.changed(ctx, sess, export.KindInvestments, amqp.OpCreated, created.ID)
	return created, nil
}

func (s *RecordService) UpdateInvestment(ctx context.Context, sess core.Session, id string, i core.Investment) (core.Investment, error) {
	if err := i.Validate(); err != nil {
		return core.Investment{}, err
	}
	updated, err := s.store.UpdateInvestment(ctx, sess, id, i)
	if err != nil {
		return core.Investment{}, fmt.Errorf("update investment: %w", err)
	}
	s.changed(ctx, sess, export.KindInvestments, amqp.OpUpdated, id)
	return updated, nil
}

func (s *RecordService) DeleteInvestment(ctx context.Context, sess core.Session, id string) error {
	if err := s.store.DeleteInvestment(ctx, sess, id); err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	s.changed(ctx, sess, export.KindInvestments, amqp.OpDeleted, id)
	return nil
}

// Close closes both the store and the change feed publisher when it has a
// Close method.
func (s *RecordService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}

	return nil
}
