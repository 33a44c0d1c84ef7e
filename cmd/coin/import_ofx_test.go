package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

const checkingOFX = `OFXHEADER:100
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
<ACCTID>555
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240101120000[0:GMT]
<TRNAMT>5000.00
<FITID>DEP1
<NAME>ACME PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240105120000[0:GMT]
<TRNAMT>-150.75
<FITID>DEB1
<NAME>CORNER GROCERY
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>4849.25
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func writeStatement(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeStatement(t, dir, "a.qfx", checkingOFX)
	b := writeStatement(t, dir, "b.qfx", checkingOFX)
	writeStatement(t, dir, "notes.txt", "ignored")

	files, err := expandFiles([]string{filepath.Join(dir, "*.qfx")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)

	files, err = expandFiles([]string{a, filepath.Join(dir, "missing.ofx")})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)

	_, err = expandFiles([]string{filepath.Join(dir, "*.ofx")})
	assert.Error(t, err)
}

func TestParseStatements(t *testing.T) {
	dir := t.TempDir()
	first := writeStatement(t, dir, "jan.qfx", checkingOFX)
	overlap := writeStatement(t, dir, "jan-again.qfx", checkingOFX)
	broken := writeStatement(t, dir, "broken.qfx", "not an ofx file")

	rows, err := parseStatements(context.Background(), []string{first, broken, overlap})
	require.NoError(t, err)
	require.Len(t, rows, 2, "overlapping statements are imported once")

	byDesc := make(map[string]model.ImportedTransaction)
	for _, r := range rows {
		byDesc[r.Description] = r
	}

	deposit := byDesc["ACME PAYROLL"]
	assert.Equal(t, model.TypeIncome, deposit.Type)
	assert.Equal(t, model.CategoryIncome, deposit.Category)
	assert.Equal(t, "5000.00", deposit.Amount.StringFixed(2))

	grocery := byDesc["CORNER GROCERY"]
	assert.Equal(t, model.TypeExpense, grocery.Type)
	assert.Empty(t, grocery.Category, "expenses are left for the categorizer")
	assert.Equal(t, "150.75", grocery.Amount.StringFixed(2))
}

func TestParseStatements_Canceled(t *testing.T) {
	dir := t.TempDir()
	path := writeStatement(t, dir, "jan.qfx", checkingOFX)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parseStatements(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}
