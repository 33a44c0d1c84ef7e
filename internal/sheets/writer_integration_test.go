//go:build integration
// +build integration

package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/report"
	"github.com/itsNik05/Coin-Tracker-01/internal/testutil"
)

func TestWriter_Integration_OAuth2(t *testing.T) {
	clientID := os.Getenv("COIN_SHEETS_CLIENT_ID")
	clientSecret := os.Getenv("COIN_SHEETS_CLIENT_SECRET")
	tokenFile := os.Getenv("COIN_SHEETS_TOKEN_FILE")

	if clientID == "" || clientSecret == "" || tokenFile == "" {
		t.Skip("OAuth2 credentials not available")
	}

	cfg := DefaultConfig()
	cfg.ClientID = clientID
	cfg.ClientSecret = clientSecret
	cfg.TokenFile = tokenFile
	cfg.SpreadsheetName = "Coin Report - Integration"

	writeLargeReport(t, cfg, 50)
}

func TestWriter_Integration_ServiceAccount(t *testing.T) {
	path := os.Getenv("COIN_SHEETS_SERVICE_ACCOUNT_PATH")
	spreadsheetID := os.Getenv("COIN_SHEETS_SPREADSHEET_ID")
	if path == "" || spreadsheetID == "" {
		t.Skip("Service account path not available")
	}

	cfg := DefaultConfig()
	cfg.ServiceAccountPath = path
	cfg.SpreadsheetID = spreadsheetID
	cfg.BatchSize = 100

	writeLargeReport(t, cfg, 1000)
}

func writeLargeReport(t *testing.T, cfg Config, count int) {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	writer, err := NewWriter(ctx, cfg, logger)
	require.NoError(t, err)

	start := time.Now().AddDate(0, -1, 0)
	txns := make([]model.Transaction, 0, count)
	categories := []string{"Food", "Housing", "Transportation", "Shopping"}
	for i := range count {
		if i%10 == 0 {
			txns = append(txns, testutil.Txn(start.Add(time.Duration(i)*time.Hour), "Paycheck", "2500", model.TypeIncome, model.CategoryIncome))
			continue
		}
		amount := fmt.Sprintf("%d.%02d", 5+i%200, i%100)
		txns = append(txns, testutil.Txn(start.Add(time.Duration(i)*time.Hour), fmt.Sprintf("Purchase %d", i), amount, model.TypeExpense, categories[i%len(categories)]))
	}

	w, err := report.NewWindow(start, time.Now())
	require.NoError(t, err)
	require.NoError(t, writer.Write(ctx, report.Build(txns, w, time.Now())))
}
