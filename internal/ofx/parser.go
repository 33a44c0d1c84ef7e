// Package ofx reads OFX/QFX bank and credit card statements into importable
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

// Banks export sloppy SGML. These repair the two faults ofxgo rejects:
// lower case SEVERITY values and opening tags missing their closing bracket.
var (
	severityValue = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	unclosedTag   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	postingDate   = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

// Card processors prepend these to the merchant name.
var processorPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"DEBIT PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
}

// Statement is the parsed content of one OFX file.
type Statement struct {
	Accounts     []string
	Transactions []model.ImportedTransaction
}

// Parser converts OFX documents into imported transactions.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser that logs skipped entries to logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

type accountList struct {
	account string
	list    *ofxgo.TransactionList
}

// ParseFile reads one OFX/QFX document. Debits become uncategorized
// expenses and credits become Income. An entry whose FITID already appeared
// in the document is dropped.
func (p *Parser) ParseFile(ctx context.Context, r io.Reader) (Statement, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Statement{}, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(repairSGML(string(raw))))
	if err != nil {
		return Statement{}, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var stmt Statement
	fitIDs := make(map[string]struct{})

	for _, al := range statementLists(resp) {
		if al.account != "" && !slices.Contains(stmt.Accounts, al.account) {
			stmt.Accounts = append(stmt.Accounts, al.account)
		}
		if al.list == nil {
			continue
		}

		for _, entry := range al.list.Transactions {
			if err := ctx.Err(); err != nil {
				return Statement{}, err
			}

			fitID := string(entry.FiTID)
			if _, dup := fitIDs[fitID]; dup && fitID != "" {
				p.logger.Debug("skipping duplicate OFX transaction", "fitid", fitID)
				continue
			}
			fitIDs[fitID] = struct{}{}

			txn, err := toImported(entry)
			if err != nil {
				p.logger.Warn("skipping OFX transaction", "fitid", fitID, "error", err)
				continue
			}
			stmt.Transactions = append(stmt.Transactions, txn)
		}
	}
	slices.Sort(stmt.Accounts)

	p.logger.Info("Parsed OFX file",
		"transactions", len(stmt.Transactions),
		"accounts", len(stmt.Accounts))
	return stmt, nil
}

func repairSGML(doc string) string {
	doc = strings.TrimLeft(doc, " \t\r\n")
	doc = severityValue.ReplaceAllStringFunc(doc, strings.ToUpper)
	return unclosedTag.ReplaceAllString(doc, "$1>")
}

func statementLists(resp *ofxgo.Response) []accountList {
	var out []accountList
	for _, msg := range resp.Bank {
		if s, ok := msg.(*ofxgo.StatementResponse); ok {
			out = append(out, accountList{account: string(s.BankAcctFrom.AcctID), list: s.BankTranList})
		}
	}
	for _, msg := range resp.CreditCard {
		if s, ok := msg.(*ofxgo.CCStatementResponse); ok {
			out = append(out, accountList{account: string(s.CCAcctFrom.AcctID), list: s.BankTranList})
		}
	}
	return out
}

func toImported(entry ofxgo.Transaction) (model.ImportedTransaction, error) {
	amount, err := decimal.NewFromString(entry.TrnAmt.Rat.FloatString(2))
	if err != nil {
		return model.ImportedTransaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	in := model.TransactionInput{
		Description: payeeName(entry),
		Amount:      amount.Abs(),
		Type:        model.TypeExpense,
	}
	if amount.IsPositive() {
		in.Type = model.TypeIncome
		in.Category = model.CategoryIncome
	}
	return model.ImportedTransaction{Date: entry.DtPosted.Time.UTC(), TransactionInput: in}, nil
}

// payeeName picks the most readable merchant name an entry carries.
func payeeName(entry ofxgo.Transaction) string {
	if entry.Payee != nil && entry.Payee.Name != "" {
		return strings.TrimSpace(string(entry.Payee.Name))
	}

	name := strings.TrimSpace(string(entry.Name))
	if entry.Memo != "" && genericName(name) {
		name = strings.TrimSpace(string(entry.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range processorPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(postingDate.ReplaceAllString(name, ""))
}

func genericName(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
