package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

func TestValidateContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		ctx     context.Context
		wantErr error
		name    string
	}{
		{name: "valid context", ctx: context.Background()},
		{name: "nil context", ctx: nil, wantErr: ErrNilContext},
		{name: "canceled context", ctx: canceled, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, validateString("abc", "id"))
	for _, blank := range []string{"", " \t\n"} {
		err := validateString(blank, "id")
		assert.ErrorIs(t, err, ErrEmptyString)
		assert.Contains(t, err.Error(), "id")
	}
}

func TestValidateFields(t *testing.T) {
	assert.ErrorIs(t, validateFields(nil, "match"), ErrEmptyFields)
	assert.ErrorIs(t, validateFields(service.Fields{}, "fields"), ErrEmptyFields)
	assert.NoError(t, validateFields(service.Fields{"amount": 1}, "fields"))
}
