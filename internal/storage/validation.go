// Package storage provides the SQLite document store for coin.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrEmptyFields  = errors.New("fields cannot be empty")
	ErrUnknownField = errors.New("unknown field")
	ErrFieldType    = errors.New("unsupported field value")
)

// validateContext rejects nil and already finished contexts before any SQL
// is built.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store call abandoned: %w", err)
	}
	return nil
}

// validateString rejects blank identifiers.
func validateString(s, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateFields requires a partial update or match to name at least one
// field. Unknown names are caught later against the collection's columns.
func validateFields(fields service.Fields, paramName string) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFields, paramName)
	}
	return nil
}
