package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInterruptHandler_SignalCancels(t *testing.T) {
	out := &lockedBuffer{}
	h := NewInterruptHandler(out)
	ctx := h.HandleInterrupts(context.Background(), "Import", true)

	require.NoError(t, ctx.Err())
	h.signals <- os.Interrupt

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("interrupt did not cancel the context")
	}

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.String(), "Import interrupted!"))
}

func TestInterruptHandler_ParentCancel(t *testing.T) {
	out := &lockedBuffer{}
	h := NewInterruptHandler(out)

	parent, cancel := context.WithCancel(context.Background())
	ctx := h.HandleInterrupts(parent, "Import", false)
	cancel()
	<-ctx.Done()

	assert.Never(t, h.WasInterrupted, 50*time.Millisecond, 10*time.Millisecond)
	assert.Empty(t, out.String())
}

func TestInterruptNotice(t *testing.T) {
	tests := []struct {
		name      string
		keepsWork bool
		saved     bool
	}{
		{name: "import keeps work", keepsWork: true, saved: true},
		{name: "nothing kept", keepsWork: false, saved: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := interruptNotice("Export", tt.keepsWork)
			assert.Contains(t, msg, "Export interrupted!")
			assert.Contains(t, msg, "See you later!")
			assert.Equal(t, tt.saved, strings.Contains(msg, "has been saved"))
		})
	}

	assert.NotNil(t, NewInterruptHandler(nil).out)
}
