package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
)

// InterruptHandler turns Ctrl-C during a long command into a context
// cancellation plus a short note on the terminal.
type InterruptHandler struct {
	out         io.Writer
	signals     chan os.Signal
	interrupted atomic.Bool
}

// NewInterruptHandler creates a handler that writes its note to out,
// or stdout when out is nil.
func NewInterruptHandler(out io.Writer) *InterruptHandler {
	if out == nil {
		out = os.Stdout
	}
	return &InterruptHandler{out: out, signals: make(chan os.Signal, 1)}
}

// HandleInterrupts returns a context canceled on the first SIGINT or
// SIGTERM. operation names the work in the note. keepsWork adds that
// finished work was saved. Listening stops once the returned context ends.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, operation string, keepsWork bool) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(h.signals)
		select {
		case <-h.signals:
			if h.interrupted.CompareAndSwap(false, true) {
				if _, err := io.WriteString(h.out, interruptNotice(operation, keepsWork)); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
				}
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}

// WasInterrupted reports whether a signal canceled the work.
func (h *InterruptHandler) WasInterrupted() bool {
	return h.interrupted.Load()
}

func interruptNotice(operation string, keepsWork bool) string {
	var b strings.Builder
	b.WriteString("\n\n" + FormatWarning(operation+" interrupted!") + "\n")
	if keepsWork {
		b.WriteString(FormatInfo("Work completed before the interrupt has been saved.") + "\n")
	}
	b.WriteString(FormatInfo("See you later! "+CoinIcon) + "\n")
	return b.String()
}
