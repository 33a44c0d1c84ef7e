package ofx

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

const sgmlHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1><SONRS><STATUS><CODE>0<SEVERITY>INFO</STATUS>
<DTSERVER>20240315120000[0:GMT]<LANGUAGE>ENG</SONRS></SIGNONMSGSRSV1>
`

// entry is one STMTTRN line: posted day in January 2024, amount, FITID, name.
type entry struct {
	day    int
	amount string
	fitID  string
	name   string
}

func (e entry) sgml() string {
	kind := "DEBIT"
	if !strings.HasPrefix(e.amount, "-") {
		kind = "CREDIT"
	}
	return fmt.Sprintf("<STMTTRN><TRNTYPE>%s<DTPOSTED>202401%02d120000[0:GMT]<TRNAMT>%s<FITID>%s<NAME>%s</STMTTRN>\n",
		kind, e.day, e.amount, e.fitID, e.name)
}

func tranList(entries []entry) string {
	var b strings.Builder
	b.WriteString("<BANKTRANLIST><DTSTART>20240101120000[0:GMT]<DTEND>20240131120000[0:GMT]\n")
	for _, e := range entries {
		b.WriteString(e.sgml())
	}
	b.WriteString("</BANKTRANLIST>\n")
	return b.String()
}

func checkingStatement(acct string, entries ...entry) string {
	return sgmlHeader +
		"<BANKMSGSRSV1><STMTTRNRS><TRNUID>1<STATUS><CODE>0<SEVERITY>INFO</STATUS>\n" +
		"<STMTRS><CURDEF>USD<BANKACCTFROM><BANKID>123456789<ACCTID>" + acct + "<ACCTTYPE>CHECKING</BANKACCTFROM>\n" +
		tranList(entries) +
		"<LEDGERBAL><BALAMT>0.00<DTASOF>20240131120000[0:GMT]</LEDGERBAL></STMTRS></STMTTRNRS></BANKMSGSRSV1>\n</OFX>"
}

func cardStatement(acct string, entries ...entry) string {
	return sgmlHeader +
		"<CREDITCARDMSGSRSV1><CCSTMTTRNRS><TRNUID>1<STATUS><CODE>0<SEVERITY>INFO</STATUS>\n" +
		"<CCSTMTRS><CURDEF>USD<CCACCTFROM><ACCTID>" + acct + "</CCACCTFROM>\n" +
		tranList(entries) +
		"<LEDGERBAL><BALAMT>0.00<DTASOF>20240131120000[0:GMT]</LEDGERBAL></CCSTMTRS></CCSTMTTRNRS></CREDITCARDMSGSRSV1>\n</OFX>"
}

var (
	checking = checkingStatement("1234567890",
		entry{15, "-25.50", "C1", "POS PURCHASE CORNER CAFE"},
		entry{20, "-125.00", "C2", "Green Market"},
		entry{25, "-500.00", "C3", "CHECK #1234"},
	)
	card = cardStatement("4111111111111111",
		entry{10, "-45.99", "V1", "BOOKSHOP.COM"},
		entry{15, "-15.00", "V2", "STREAMFLIX"},
	)
	payroll = checkingStatement("555",
		entry{1, "5000.00", "DEP1", "ACME PAYROLL"},
		entry{1, "5000.00", "DEP1", "ACME PAYROLL"},
	)
)

func parse(t *testing.T, doc string) (Statement, error) {
	t.Helper()
	return NewParser(common.DiscardLogger()).ParseFile(context.Background(), strings.NewReader(doc))
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		accounts []string
		count    int
		wantErr  bool
	}{
		{name: "checking", doc: checking, accounts: []string{"1234567890"}, count: 3},
		{name: "credit card", doc: card, accounts: []string{"4111111111111111"}, count: 2},
		{name: "repeated fitid", doc: payroll, accounts: []string{"555"}, count: 1},
		{name: "leading whitespace", doc: "\r\n\t " + checking, accounts: []string{"1234567890"}, count: 3},
		{name: "lower case severity", doc: strings.Replace(checking, "<SEVERITY>INFO</STATUS>", "<SEVERITY>Info</SEVERITY></STATUS>", 1), accounts: []string{"1234567890"}, count: 3},
		{name: "not ofx", doc: "not valid OFX", wantErr: true},
		{name: "empty", doc: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parse(t, tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.accounts, stmt.Accounts)
			assert.Len(t, stmt.Transactions, tt.count)
		})
	}
}

func TestParseFile_Debits(t *testing.T) {
	stmt, err := parse(t, checking)
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 3)

	cafe := stmt.Transactions[0]
	assert.Equal(t, "CORNER CAFE", cafe.Description)
	assert.Equal(t, "25.50", cafe.Amount.StringFixed(2))
	assert.Equal(t, model.TypeExpense, cafe.Type)
	assert.Empty(t, cafe.Category, "expenses are left for categorization")
	assert.Equal(t, time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC), cafe.Date)

	assert.Equal(t, "CHECK #1234", stmt.Transactions[2].Description)
	assert.Equal(t, "500.00", stmt.Transactions[2].Amount.StringFixed(2))
}

func TestParseFile_Credits(t *testing.T) {
	stmt, err := parse(t, payroll)
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 1)

	dep := stmt.Transactions[0]
	assert.Equal(t, model.TypeIncome, dep.Type)
	assert.Equal(t, model.CategoryIncome, dep.Category)
	assert.Equal(t, "5000.00", dep.Amount.StringFixed(2))

	norm, err := dep.Normalize(model.DefaultTaxonomy())
	require.NoError(t, err)
	assert.Equal(t, "ACME PAYROLL", norm.Description)
}

func TestParseFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).ParseFile(ctx, strings.NewReader(checking))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPayeeName(t *testing.T) {
	tests := []struct {
		name  string
		entry ofxgo.Transaction
		want  string
	}{
		{name: "processor prefix", entry: ofxgo.Transaction{Name: "CHECK CARD BAKERY"}, want: "BAKERY"},
		{name: "prefix is case insensitive", entry: ofxgo.Transaction{Name: "Visa Purchase Hardware Hut"}, want: "Hardware Hut"},
		{name: "clean name kept", entry: ofxgo.Transaction{Name: "STREAMFLIX"}, want: "STREAMFLIX"},
		{name: "whitespace", entry: ofxgo.Transaction{Name: "  BOOKSHOP.COM  "}, want: "BOOKSHOP.COM"},
		{name: "posting date", entry: ofxgo.Transaction{Name: "01/15 CORNER CAFE"}, want: "CORNER CAFE"},
		{name: "prefix then posting date", entry: ofxgo.Transaction{Name: "PURCHASE AUTHORIZED ON 02/03 GAS STOP"}, want: "GAS STOP"},
		{name: "generic name falls back to memo", entry: ofxgo.Transaction{Name: "payment", Memo: "CITY WATER"}, want: "CITY WATER"},
		{name: "payee wins", entry: ofxgo.Transaction{Name: "ACH DEBIT 123", Payee: &ofxgo.Payee{Name: "Electric Co"}}, want: "Electric Co"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payeeName(tt.entry))
		})
	}
}
