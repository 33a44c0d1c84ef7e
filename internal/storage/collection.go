package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// column maps a field name onto a table column and converts the
// caller's value into something the driver accepts.
type column struct {
	convert func(any) (driver.Value, error)
	name    string
}

// codec describes how one record kind is laid out in its table.
type codec[T any] struct {
	scan    func(rowScanner) (T, error)
	values  func(id string, record T) []any
	fields  map[string]column
	kind    string
	orderBy string
	columns []string
}

type collection[T any] struct {
	db    *sql.DB
	codec codec[T]
}

func newCollection[T any](db *sql.DB, c codec[T]) *collection[T] {
	return &collection[T]{db: db, codec: c}
}

var _ service.Collection[model.Budget] = (*collection[model.Budget])(nil)

func (c *collection[T]) selectColumns() string {
	return strings.Join(c.codec.columns, ", ")
}

// List returns every record owned by userID.
func (c *collection[T]) List(ctx context.Context, userID string) ([]T, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ?", c.selectColumns(), c.codec.kind)
	if c.codec.orderBy != "" {
		query += " ORDER BY " + c.codec.orderBy
	}

	rows, err := c.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, common.NewStoreError("list", c.codec.kind, err)
	}
	defer func() { _ = rows.Close() }()

	records := []T{}
	for rows.Next() {
		record, scanErr := c.codec.scan(rows)
		if scanErr != nil {
			return nil, common.NewStoreError("list", c.codec.kind, scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStoreError("list", c.codec.kind, err)
	}

	return records, nil
}

// Create inserts record under a fresh id.
func (c *collection[T]) Create(ctx context.Context, record T) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	id := uuid.NewString()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.codec.columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", c.codec.kind, c.selectColumns(), placeholders)

	if _, err := c.db.ExecContext(ctx, query, c.codec.values(id, record)...); err != nil {
		return "", common.NewStoreError("create", c.codec.kind, err)
	}
	return id, nil
}

// Update applies fields to the record with the given id owned by userID.
func (c *collection[T]) Update(ctx context.Context, userID, id string, fields service.Fields) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateFields(fields, "fields"); err != nil {
		return err
	}

	assignments, args, err := c.bind(fields)
	if err != nil {
		return common.NewStoreError("update", c.codec.kind, err)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ?", c.codec.kind, strings.Join(assignments, ", "))
	result, err := c.db.ExecContext(ctx, query, append(args, id, userID)...)
	if err != nil {
		return common.NewStoreError("update", c.codec.kind, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return common.NewStoreError("update", c.codec.kind, err)
	}
	if affected == 0 {
		return common.NewStoreError("update", c.codec.kind, fmt.Errorf("id %s: %w", id, common.ErrNotFound))
	}
	return nil
}

// Delete removes the record with the given id owned by userID. Missing and
// foreign ids are not an error.
func (c *collection[T]) Delete(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", c.codec.kind)
	if _, err := c.db.ExecContext(ctx, query, id, userID); err != nil {
		return common.NewStoreError("delete", c.codec.kind, err)
	}
	return nil
}

// FindOne returns the first record owned by userID matching every field.
func (c *collection[T]) FindOne(ctx context.Context, userID string, match service.Fields) (*T, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFields(match, "match"); err != nil {
		return nil, err
	}

	conditions, args, err := c.bind(match)
	if err != nil {
		return nil, common.NewStoreError("find", c.codec.kind, err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = ? AND %s LIMIT 1",
		c.selectColumns(), c.codec.kind, strings.Join(conditions, " AND "))

	record, err := c.codec.scan(c.db.QueryRowContext(ctx, query, append([]any{userID}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewStoreError("find", c.codec.kind, err)
	}
	return &record, nil
}

// bind turns fields into "column = ?" fragments in a stable order.
func (c *collection[T]) bind(fields service.Fields) ([]string, []any, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fragments := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		col, ok := c.codec.fields[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		value, err := col.convert(fields[name])
		if err != nil {
			return nil, nil, fmt.Errorf("field %s: %w", name, err)
		}
		fragments = append(fragments, col.name+" = ?")
		args = append(args, value)
	}
	return fragments, args, nil
}

func textColumn(name string) column {
	return column{name: name, convert: func(v any) (driver.Value, error) {
		switch s := v.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		default:
			return nil, fmt.Errorf("%w: %T", ErrFieldType, v)
		}
	}}
}

func decimalColumn(name string) column {
	return column{name: name, convert: func(v any) (driver.Value, error) {
		var d decimal.Decimal
		switch n := v.(type) {
		case decimal.Decimal:
			d = n
		case string:
			parsed, err := decimal.NewFromString(n)
			if err != nil {
				return nil, err
			}
			d = parsed
		case float64:
			d = decimal.NewFromFloat(n)
		case int:
			d = decimal.NewFromInt(int64(n))
		case int64:
			d = decimal.NewFromInt(n)
		default:
			return nil, fmt.Errorf("%w: %T", ErrFieldType, v)
		}
		return d.Value()
	}}
}

func transactionTypeColumn(name string) column {
	return column{name: name, convert: func(v any) (driver.Value, error) {
		var t model.TransactionType
		switch s := v.(type) {
		case model.TransactionType:
			t = s
		case string:
			t = model.TransactionType(s)
		default:
			return nil, fmt.Errorf("%w: %T", ErrFieldType, v)
		}
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidType, t)
		}
		return string(t), nil
	}}
}

func timeColumn(name string) column {
	return column{name: name, convert: func(v any) (driver.Value, error) {
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrFieldType, v)
		}
		return t.UTC(), nil
	}}
}
