package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func fixture() core.Snapshot {
	created := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	return core.Snapshot{
		Transactions: []core.Transaction{
			{ID: "t1", UserID: "u1", Type: core.Income, Amount: core.Money{Cents: 100000}, Category: "salary", Description: "May", Date: core.NewDate(2025, 5, 1), CreatedAt: created},
			{ID: "t2", UserID: "u1", Type: core.Expense, Amount: core.Money{Cents: 1299}, Category: "food", Description: "pizza, \"large\"\nextra cheese", Date: core.NewDate(2025, 5, 2), CreatedAt: created},
		},
		Bills: []core.Bill{
			{ID: "b1", UserID: "u1", Name: "Rent", Amount: core.Money{Cents: 90000}, DueDate: core.NewDate(2025, 5, 31), Status: core.BillPending, Category: "home", Recurring: true, CreatedAt: created},
		},
		Goals: []core.Goal{
			{ID: "g1", UserID: "u1", Title: "Bike", TargetAmount: core.Money{Cents: 150000}, CurrentAmount: core.Money{Cents: 1}, Category: "fun", CreatedAt: created, UpdatedAt: created},
			{ID: "g2", UserID: "u1", Title: "House", TargetAmount: core.Money{Cents: 0}, Deadline: core.NewDate(2030, 1, 1), CreatedAt: created, UpdatedAt: created},
		},
		Investments: []core.Investment{
			{ID: "i1", UserID: "u1", Name: "World ETF", Type: "etf", AmountInvested: core.Money{Cents: 50000}, CurrentValue: core.Money{Cents: 51234}, PurchaseDate: core.NewDate(2024, 1, 10), GoalID: "g1", CreatedAt: created, UpdatedAt: created},
			{ID: "i2", UserID: "u1", Name: "Bond", Type: "bond", AmountInvested: core.Money{Cents: 1000}, CurrentValue: core.Money{Cents: 1000}, PurchaseDate: core.NewDate(2024, 2, 10), CreatedAt: created, UpdatedAt: created},
		},
	}
}

func TestWriteCSVQuoting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, TransactionRows(fixture().Transactions)))

	want := "id,userId,type,amount,category,description,date,createdAt\n" +
		"t1,u1,income,1000.00,salary,May,2025-05-01,2025-05-01T09:30:00Z\n" +
		"t2,u1,expense,12.99,food,\"pizza, \"\"large\"\"\nextra cheese\",2025-05-02,2025-05-01T09:30:00Z\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVIsDeterministic(t *testing.T) {
	rows := InvestmentRows(fixture().Investments)
	var a, b bytes.Buffer
	require.NoError(t, WriteCSV(&a, rows))
	require.NoError(t, WriteCSV(&b, rows))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestWriteCSVEmptyAndMissing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Empty(t, buf.String())

	rows := []Row{
		{{"a", "1"}, {"b", "2"}, {"c", "3"}},
		{{"c", "z"}, {"a", "x"}},
	}
	buf.Reset()
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t, "a,b,c\n1,2,3\nx,,z\n", buf.String())
}

func TestWriteCSVRejectsHeterogeneousRows(t *testing.T) {
	rows := []Row{
		{{"a", "1"}},
		{{"a", "2"}, {"extra", "3"}},
	}
	err := WriteCSV(&bytes.Buffer{}, rows)
	assert.ErrorIs(t, err, ErrHeterogeneousRecords)
}

func TestWriteCSVWritesNothingOnRejectedRows(t *testing.T) {
	// enough good rows to overflow the csv writer's buffer before the bad one
	rows := make([]Row, 0, 301)
	for i := 0; i < 300; i++ {
		rows = append(rows, Row{{"a", strings.Repeat("x", 40)}, {"b", "y"}})
	}
	rows = append(rows, Row{{"a", "1"}, {"extra", "2"}})

	var buf bytes.Buffer
	err := WriteCSV(&buf, rows)
	require.ErrorIs(t, err, ErrHeterogeneousRecords)
	assert.Zero(t, buf.Len(), "rejected list must not produce partial output")

	buf.Reset()
	err = WriteCSV(&buf, []Row{{{"a", "1"}, {"a", "2"}}})
	require.ErrorIs(t, err, ErrHeterogeneousRecords)
	assert.Zero(t, buf.Len())
}

func TestBillRowsEffectiveStatus(t *testing.T) {
	bills := fixture().Bills
	rows := BillRows(bills, core.NewDate(2025, 6, 1))
	require.Len(t, rows, 1)
	last := rows[0][len(rows[0])-1]
	assert.Equal(t, Field{"effectiveStatus", "overdue"}, last)

	withoutToday := BillRows(bills, core.Date{})
	assert.Len(t, withoutToday[0], len(rows[0])-1)
}

func TestGoalRowsOptionalDeadline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, GoalRows(fixture().Goals)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], ",1500.00,0.01,,fun,")
	assert.Contains(t, lines[2], ",0.00,0.00,2030-01-01,,")
}

func TestBackupRoundTrip(t *testing.T) {
	snap := fixture()
	exportedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteBackup(&buf, NewBackup(snap, exportedAt)))

	got, err := ReadBackup(&buf)
	require.NoError(t, err)
	assert.Equal(t, exportedAt, got.ExportedAt)
	assert.Equal(t, snap, got.Snapshot())
}

func TestBackupShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBackup(&buf, NewBackup(core.Snapshot{}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))))
	assert.Contains(t, buf.String(), "\n  \"goals\": []", "pretty printed with empty arrays")

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{"goals", "transactions", "bills", "investments", "exportedAt"} {
		assert.Contains(t, doc, key)
	}
}

func TestReadBackupRejectsGarbage(t *testing.T) {
	_, err := ReadBackup(strings.NewReader(`{"transactions":[{"amount":"lots"}]}`))
	assert.Error(t, err)
}

func TestParseKindAndFilename(t *testing.T) {
	k, err := ParseKind("bills")
	require.NoError(t, err)
	assert.Equal(t, KindBills, k)
	_, err = ParseKind("users")
	assert.Error(t, err)

	name := Filename(string(KindTransactions), "csv", time.Date(2025, 10, 19, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "transactions-2025-10-19.csv", name)
}
