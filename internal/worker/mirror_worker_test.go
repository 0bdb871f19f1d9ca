package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
	storemem "fintrack/internal/store/memory"
)

type brokenWriter struct{}

func (brokenWriter) ReplaceSheet(context.Context, string, [][]string) error {
	return errors.New("quota exceeded")
}

var alice = core.Session{UserID: "alice"}

func seed(t *testing.T) *storemem.Store {
	t.Helper()
	st := storemem.New()
	ctx := context.Background()
	_, err := st.CreateTransaction(ctx, alice, core.Transaction{
		Type: core.Expense, Amount: core.Money{Cents: 1250}, Category: "Food",
		Description: "lunch, with \"friends\"", Date: core.NewDate(2025, 3, 2),
	})
	require.NoError(t, err)
	_, err = st.CreateBill(ctx, alice, core.Bill{
		Name: "Rent", Amount: core.Money{Cents: 90000}, DueDate: core.NewDate(2025, 3, 1),
		Status: core.BillPending, Category: "Housing",
	})
	require.NoError(t, err)
	return st
}

func TestHandleRecordChangeMirrorsKind(t *testing.T) {
	st := seed(t)
	sheet := memory.New()
	w := NewMirrorWorker(st, sheet).WithToday(func() core.Date { return core.NewDate(2025, 3, 15) })

	msg := amqp.NewRecordChangedMessage("transactions", amqp.OpCreated, "alice", "t1")
	require.NoError(t, w.HandleRecordChange(context.Background(), msg))

	rows, err := sheet.ReadSheet(context.Background(), "alice transactions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Contains(t, rows[1], "12.50")
	assert.Contains(t, rows[1], "lunch, with \"friends\"")
	assert.Equal(t, []string{"alice transactions"}, sheet.Titles())
}

func TestMirrorBillsIncludesEffectiveStatus(t *testing.T) {
	st := seed(t)
	sheet := memory.New()
	w := NewMirrorWorker(st, sheet).WithToday(func() core.Date { return core.NewDate(2025, 3, 15) })

	require.NoError(t, w.MirrorKind(context.Background(), alice, "bills"))

	rows, err := sheet.ReadSheet(context.Background(), "alice bills")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "effectiveStatus")
	assert.Contains(t, rows[1], "overdue")
	assert.Contains(t, rows[1], "pending")
}

func TestDeletedRecordsClearTheTab(t *testing.T) {
	st := seed(t)
	sheet := memory.New()
	w := NewMirrorWorker(st, sheet)
	ctx := context.Background()

	require.NoError(t, w.MirrorKind(ctx, alice, "transactions"))
	txs, err := st.ListTransactions(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, st.DeleteTransaction(ctx, alice, txs[0].ID))

	msg := amqp.NewRecordChangedMessage("transactions", amqp.OpDeleted, "alice", txs[0].ID)
	require.NoError(t, w.HandleRecordChange(ctx, msg))

	rows, err := sheet.ReadSheet(ctx, "alice transactions")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUnknownKindIsDropped(t *testing.T) {
	sheet := memory.New()
	w := NewMirrorWorker(storemem.New(), sheet)

	msg := amqp.NewRecordChangedMessage("expenses", amqp.OpCreated, "alice", "x")
	require.NoError(t, w.HandleRecordChange(context.Background(), msg))
	assert.Zero(t, sheet.Writes())
}

func TestSheetFailureIsReturnedForRetry(t *testing.T) {
	w := NewMirrorWorker(seed(t), brokenWriter{})

	msg := amqp.NewRecordChangedMessage("goals", amqp.OpUpdated, "alice", "g1")
	err := w.HandleRecordChange(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestMirrorUserWritesEveryKind(t *testing.T) {
	sheet := memory.New()
	w := NewMirrorWorker(seed(t), sheet)

	require.NoError(t, w.MirrorUser(context.Background(), alice))
	assert.Equal(t, []string{"alice bills", "alice goals", "alice investments", "alice transactions"}, sheet.Titles())
}

func TestUsersAreIsolated(t *testing.T) {
	sheet := memory.New()
	w := NewMirrorWorker(seed(t), sheet)

	require.NoError(t, w.MirrorKind(context.Background(), core.Session{UserID: "bob"}, "transactions"))
	rows, err := sheet.ReadSheet(context.Background(), "bob transactions")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
