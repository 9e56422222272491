package ofx

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
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
<DTSERVER>20240315120000[0:GMT]
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
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240102120000[0:GMT]
<TRNAMT>1650.00
<FITID>2024010201
<NAME>PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1124.50
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
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
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestSource_Load(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{name: "valid bank statement", ofxData: sampleBankOFX, expectedCount: 3},
		{name: "valid credit card statement", ofxData: sampleCreditCardOFX, expectedCount: 2},
		{name: "invalid OFX data", ofxData: "not valid OFX", expectedError: true},
		{name: "empty OFX", ofxData: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSource()
			err := src.Load(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			txs, err := src.GetTransactions(context.Background(), BudgetID)
			require.NoError(t, err)
			assert.Len(t, txs, tt.expectedCount)
		})
	}
}

func TestSource_BankStatement(t *testing.T) {
	src := NewSource()
	require.NoError(t, src.Load(context.Background(), strings.NewReader(sampleBankOFX)))

	accounts, err := src.GetAccounts(context.Background(), BudgetID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "1234567890", accounts[0].ID)
	assert.Equal(t, "Checking ...7890", accounts[0].Name)
	assert.Equal(t, model.AccountTypeChecking, accounts[0].Type)
	assert.Equal(t, model.Milliunits(1124500), accounts[0].Balance)

	txs, err := src.GetTransactionsByAccount(context.Background(), BudgetID, "1234567890", nil, nil)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, "2024010201", txs[0].ID)
	assert.Equal(t, model.Milliunits(1650000), txs[0].Amount)
	assert.Equal(t, model.Date(2024, time.January, 2), txs[0].Date)

	assert.Equal(t, model.Milliunits(-25500), txs[1].Amount)
	assert.Equal(t, model.Milliunits(-500000), txs[2].Amount)
}

func TestSource_CreditCardStatement(t *testing.T) {
	src := NewSource()
	require.NoError(t, src.Load(context.Background(), strings.NewReader(sampleCreditCardOFX)))

	accounts, err := src.GetAccounts(context.Background(), BudgetID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, model.AccountTypeCreditCard, accounts[0].Type)
	assert.Equal(t, "Credit Card ...1111", accounts[0].Name)
	assert.Equal(t, model.Milliunits(-500000), accounts[0].Balance)

	txs, err := src.GetTransactionsByAccount(context.Background(), BudgetID, "4111111111111111", nil, nil)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, model.Milliunits(-45990), txs[0].Amount)
	assert.Equal(t, model.Milliunits(-15000), txs[1].Amount)
}

func TestSource_DeduplicatesOverlappingDownloads(t *testing.T) {
	src := NewSource()
	require.NoError(t, src.Load(context.Background(), strings.NewReader(sampleBankOFX)))
	require.NoError(t, src.Load(context.Background(), strings.NewReader(sampleBankOFX)))

	txs, err := src.GetTransactions(context.Background(), BudgetID)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestSource_DateBounds(t *testing.T) {
	src := NewSource()
	require.NoError(t, src.Load(context.Background(), strings.NewReader(sampleBankOFX)))

	start := model.Date(2024, time.January, 10)
	end := model.Date(2024, time.January, 20)
	txs, err := src.GetTransactionsByAccount(context.Background(), BudgetID, "1234567890", &start, &end)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2024011501", txs[0].ID)
}

func TestSource_Errors(t *testing.T) {
	src := NewSource()
	require.NoError(t, src.Load(context.Background(), strings.NewReader(sampleBankOFX)))

	_, err := src.GetTransactionsByAccount(context.Background(), BudgetID, "missing", nil, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, err, common.ErrDataSource)

	_, err = src.GetAccounts(context.Background(), "other-budget")
	assert.ErrorIs(t, err, common.ErrNotFound)

	categories, err := src.GetMonthCategories(context.Background(), BudgetID, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	bank := filepath.Join(dir, "bank.ofx")
	card := filepath.Join(dir, "card.qfx")
	require.NoError(t, os.WriteFile(bank, []byte(sampleBankOFX), 0o600))
	require.NoError(t, os.WriteFile(card, []byte(sampleCreditCardOFX), 0o600))

	src, err := LoadFiles(context.Background(), bank, card)
	require.NoError(t, err)

	accounts, err := src.GetAccounts(context.Background(), BudgetID)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	_, err = LoadFiles(context.Background(), filepath.Join(dir, "missing.ofx"))
	assert.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n<SEVERITY>Info</SEVERITY>\n<CODE\n"
	out := preprocessOFX(in)
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<CODE>\n", out)
}
