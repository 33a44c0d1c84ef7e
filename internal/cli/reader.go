package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCanceled is returned when a read is abandoned because its context ended.
var ErrInputCanceled = errors.New("input canceled")

type lineResult struct {
	err  error
	line string
}

// LineReader reads lines from a blocking source without tying the caller to it.
// A single background goroutine reads one line per request, so nothing is
// consumed from the source until someone asks for it. A line that arrives
// after its reader gave up is handed to the next ReadLine.
type LineReader struct {
	src      *bufio.Reader
	requests chan struct{}
	results  chan lineResult
	start    sync.Once
	mu       sync.Mutex
	pending  bool
}

// NewLineReader wraps src.
func NewLineReader(src io.Reader) *LineReader {
	if src == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{
		src:      bufio.NewReader(src),
		requests: make(chan struct{}, 1),
		results:  make(chan lineResult, 1),
	}
}

func (r *LineReader) pump() {
	for range r.requests {
		line, err := r.src.ReadString('\n')
		r.results <- lineResult{line: line, err: err}
	}
}

// ReadLine returns the next line with surrounding space trimmed. A final line
// without a newline is returned without error.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCanceled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.start.Do(func() { go r.pump() })
	if !r.pending {
		r.requests <- struct{}{}
		r.pending = true
	}

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case res := <-r.results:
		r.pending = false
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
