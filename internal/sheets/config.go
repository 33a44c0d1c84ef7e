// Package sheets exports coin reports to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config describes where a report is exported and how the writer talks to
// the Sheets API. Exactly one of user OAuth (client id, secret and token file)
// or a service account key must be set.
type Config struct {
	ClientID           string
	ClientSecret       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string        `validate:"required_without=SpreadsheetID"`
	TimeZone           string        `validate:"omitempty,timezone"`
	CallbackAddr       string        `validate:"omitempty,hostname_port"`
	BatchSize          int           `validate:"gt=0"`
	RetryAttempts      int           `validate:"gte=0"`
	RetryDelay         time.Duration `validate:"gte=0"`
	EnableFormatting   bool
}

// DefaultConfig returns the export settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Coin Report",
		TimeZone:         "UTC",
		BatchSize:        500,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

// HasOAuth reports whether user OAuth credentials are configured.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.TokenFile != ""
}

// Validate reports every problem with c in one error wrapping
// common.ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string

	switch hasKey := c.ServiceAccountPath != ""; {
	case c.HasOAuth() && hasKey:
		problems = append(problems, "configure either Google OAuth or a service account, not both")
	case !c.HasOAuth() && !hasKey:
		problems = append(problems, "no Google credentials configured")
	}

	var verrs validator.ValidationErrors
	if err := validate.Struct(c); errors.As(err, &verrs) {
		for _, fe := range verrs {
			problems = append(problems, fieldProblem(fe))
		}
	} else if err != nil {
		return fmt.Errorf("%w: sheets: %w", common.ErrInvalidConfig, err)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: sheets: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
}

func fieldProblem(fe validator.FieldError) string {
	switch fe.Field() {
	case "SpreadsheetName":
		return "spreadsheet id or name is required"
	case "BatchSize":
		return "batch size must be positive"
	case "RetryAttempts", "RetryDelay":
		return fmt.Sprintf("%s cannot be negative", fe.Field())
	case "TimeZone":
		return fmt.Sprintf("unknown time zone %q", fe.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
