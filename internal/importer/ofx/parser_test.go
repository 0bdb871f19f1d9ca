package ofx

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250101120000[0:GMT]
<DTEND>20250131120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250101120000[0:GMT]
<TRNAMT>3000.00
<FITID>2025010101
<NAME>ACME PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250105120000[0:GMT]
<TRNAMT>-900.00
<FITID>2025010501
<NAME>ACH DEBIT LANDLORD LLC
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250110120000[0:GMT]
<TRNAMT>-25.50
<FITID>2025011001
<NAME>DEBIT
<MEMO>CORNER GROCERY
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20250131120000[0:GMT]
<TRNAMT>-2.00
<FITID>2025013101
<NAME>MONTHLY FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2072.50
<DTASOF>20250131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseMapsCreditsAndDebits(t *testing.T) {
	txs, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, txs, 4)

	assert.Equal(t, core.Income, txs[0].Type)
	assert.Equal(t, int64(300000), txs[0].Amount.Cents)
	assert.Equal(t, DefaultIncomeCategory, txs[0].Category)
	assert.Equal(t, "2025-01-01", txs[0].Date.String())

	assert.Equal(t, core.Expense, txs[1].Type)
	assert.Equal(t, int64(90000), txs[1].Amount.Cents)
	assert.Equal(t, "LANDLORD LLC", txs[1].Description)
	assert.Equal(t, DefaultExpenseCategory, txs[1].Category)

	assert.Equal(t, int64(2550), txs[2].Amount.Cents)
	assert.Equal(t, "CORNER GROCERY", txs[2].Description)

	assert.Equal(t, "Bank Fees", txs[3].Category)
	assert.Equal(t, int64(200), txs[3].Amount.Cents)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), strings.NewReader("not valid OFX"))
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = NewParser().Parse(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseToleratesLeadingWhitespace(t *testing.T) {
	data := "\n\n  " + sampleBankOFX
	txs, err := NewParser().Parse(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, txs, 4)
}

func TestDeduplicate(t *testing.T) {
	d := core.NewDate(2025, 1, 10)
	a := core.Transaction{Type: core.Expense, Amount: core.Money{Cents: 100}, Date: d, Description: "coffee"}
	b := core.Transaction{Type: core.Expense, Amount: core.Money{Cents: 250}, Date: d, Description: "bread"}

	got := Deduplicate([]core.Transaction{a}, []core.Transaction{a, a, b})
	assert.Equal(t, []core.Transaction{a, b}, got)
}

func TestImportIsIdempotent(t *testing.T) {
	st := memory.New()
	sess := core.Session{UserID: "alice"}
	p := NewParser()
	ctx := context.Background()

	res, err := p.Import(ctx, sess, strings.NewReader(sampleBankOFX), st)
	require.NoError(t, err)
	assert.Equal(t, Result{Parsed: 4, Imported: 4}, res)

	res, err = p.Import(ctx, sess, strings.NewReader(sampleBankOFX), st)
	require.NoError(t, err)
	assert.Equal(t, Result{Parsed: 4, Skipped: 4}, res)

	txs, err := st.ListTransactions(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, txs, 4)
}

func TestTruncateCountsCharacters(t *testing.T) {
	short := strings.Repeat("é", 150)
	assert.Equal(t, short, truncate(short, core.MaxDescriptionLength))

	long := strings.Repeat("é", 250)
	got := truncate(long, core.MaxDescriptionLength)
	assert.Equal(t, core.MaxDescriptionLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(long, got))
}

func TestCategoryFollowsTransactionType(t *testing.T) {
	p := NewParser()
	assert.Equal(t, "Interest", p.category(ofxgo.Transaction{TrnType: ofxgo.TrnTypeInt}, core.Income))
	assert.Equal(t, "Bank Fees", p.category(ofxgo.Transaction{TrnType: ofxgo.TrnTypeSrvChg}, core.Expense))
	assert.Equal(t, "Cash", p.category(ofxgo.Transaction{TrnType: ofxgo.TrnTypeATM}, core.Expense))
	assert.Equal(t, DefaultExpenseCategory, p.category(ofxgo.Transaction{TrnType: ofxgo.TrnTypeDebit}, core.Expense))
	assert.Equal(t, DefaultIncomeCategory, p.category(ofxgo.Transaction{TrnType: ofxgo.TrnTypeCredit}, core.Income))
}
