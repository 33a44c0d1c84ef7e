package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  alice@example.com \n"), &out)

	answer, err := p.Ask(context.Background(), "Email")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", answer)
	assert.Contains(t, out.String(), "Email")
}

func TestPrompter_AskSecretWithoutTerminal(t *testing.T) {
	p := NewPrompter(strings.NewReader("hunter22\n"), &bytes.Buffer{})

	secret, err := p.AskSecret(context.Background(), "Password")
	require.NoError(t, err)
	assert.Equal(t, "hunter22", secret)
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "no", input: "NO\n", def: true, want: false},
		{name: "default yes", input: "\n", def: true, want: true},
		{name: "default no", input: "\n", want: false},
		{name: "retry after garbage", input: "maybe\nyes\n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Use it?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_Choose(t *testing.T) {
	options := []string{"Food", "Housing", "Other"}

	tests := []struct {
		wantErr error
		name    string
		input   string
		want    string
	}{
		{name: "by number", input: "2\n", want: "Housing"},
		{name: "by name ignoring case", input: "other\n", want: "Other"},
		{name: "out of range then valid", input: "9\n1\n", want: "Food"},
		{name: "empty gives up", input: "\n", wantErr: ErrNoChoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Choose(context.Background(), "Category", options)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Housing")
		})
	}
}

func TestPrompter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPrompter(strings.NewReader("y\n"), &bytes.Buffer{})
	_, err := p.Confirm(ctx, "Continue?", false)
	assert.ErrorIs(t, err, ErrInputCanceled)
}

func TestProgress(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgress(&out, 3, "Importing")

	bar.Update(1, 3)
	bar.Update(3, 3)
	bar.Finish()

	assert.Contains(t, out.String(), "3/3")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1350.75", FormatMoney(decimal.RequireFromString("1350.75")))
	assert.Equal(t, "$5.00", FormatMoney(decimal.NewFromInt(5)))
	assert.Contains(t, FormatSigned(decimal.RequireFromString("-20.5")), "-$20.50")
	assert.Contains(t, FormatSigned(decimal.RequireFromString("3649.25")), "$3649.25")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Category", "Amount"}, [][]string{{"Food", "$10.00"}, {"Housing", "$1200.00"}})

	assert.Contains(t, out, "Category")
	assert.Contains(t, out, "Housing")
	assert.Contains(t, out, "$1200.00")
}
