package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/report"
)

var errNoCategorizer = errors.New("categorization is not configured")

// shortIDLen is how much of a record id the tables show.
const shortIDLen = 8

// errorText renders err for the terminal. Auth and user errors show their
// message only; everything else shows the full chain.
func errorText(err error) string {
	var authErr *common.AuthError
	if errors.As(err, &authErr) {
		return cli.FormatError(authErr.Message)
	}
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return cli.FormatError(userErr.UserMessage)
	}
	return cli.FormatError(err.Error())
}

// parseAmount reads a non-negative money amount such as "12.50" or "$1,200".
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, errors.New("amount is required")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, model.ErrNegativeAmount
	}
	return d.Round(2), nil
}

// parseType accepts income/expense and their first letters.
func parseType(s string) (model.TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "i", "in":
		return model.TypeIncome, nil
	case "expense", "e", "out", "":
		return model.TypeExpense, nil
	default:
		return "", fmt.Errorf("%w: %q (use income or expense)", model.ErrInvalidType, s)
	}
}

// parseDate reads a calendar date in the local time zone.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(report.DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// monthStart returns the first day of now's month.
func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// findTransaction resolves a full id or a unique id prefix.
func findTransaction(txns []model.Transaction, ref string) (model.Transaction, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Transaction{}, errors.New("transaction id is required")
	}

	var matches []model.Transaction
	for _, t := range txns {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return model.Transaction{}, common.NewUserError(fmt.Sprintf("No transaction matches %q.", ref), common.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Transaction{}, common.NewUserError(fmt.Sprintf("%q matches %d transactions, use a longer id.", ref, len(matches)), nil)
	}
}

// transactionRows formats transactions for cli.RenderTable.
func transactionRows(txns []model.Transaction) [][]string {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		amount := cli.FormatMoney(t.Amount)
		if t.Type == model.TypeExpense {
			amount = "-" + amount
		}
		rows = append(rows, []string{
			shortID(t.ID),
			t.Date.Local().Format(report.DateLayout),
			t.Description,
			t.Category,
			amount,
		})
	}
	return rows
}

var transactionHeaders = []string{"ID", "Date", "Description", "Category", "Amount"}
