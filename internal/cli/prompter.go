package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ErrNoChoice is returned when the user gives up on a prompt.
var ErrNoChoice = errors.New("no choice made")

// Prompter asks the user for input on a terminal.
type Prompter struct {
	reader   *LineReader
	writer   io.Writer
	secretFD int
}

// NewPrompter creates a prompter reading from reader and writing to writer.
// Secrets are read without echo when reader is a terminal.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	fd := -1
	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}

	return &Prompter{
		reader:   NewLineReader(reader),
		writer:   writer,
		secretFD: fd,
	}
}

// Ask prints label and reads one line.
func (p *Prompter) Ask(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return p.reader.ReadLine(ctx)
}

// AskSecret reads a line without echoing it when possible.
func (p *Prompter) AskSecret(ctx context.Context, label string) (string, error) {
	if p.secretFD < 0 {
		return p.Ask(ctx, label)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	secret, err := term.ReadPassword(p.secretFD)
	_, _ = fmt.Fprintln(p.writer)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// Confirm asks a yes/no question. An empty answer returns def.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		answer, err := p.Ask(ctx, question+" "+hint)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please answer y or n.")); err != nil {
			return false, fmt.Errorf("failed to write hint: %w", err)
		}
	}
}

// Choose lists options and returns the one picked by number or name.
// An empty answer returns ErrNoChoice.
func (p *Prompter) Choose(ctx context.Context, label string, options []string) (string, error) {
	for i, opt := range options {
		if _, err := fmt.Fprintf(p.writer, "  %s %s\n", SubtleStyle.Render(fmt.Sprintf("[%2d]", i+1)), opt); err != nil {
			return "", fmt.Errorf("failed to write option: %w", err)
		}
	}

	for {
		answer, err := p.Ask(ctx, label)
		if err != nil {
			return "", err
		}
		if answer == "" {
			return "", ErrNoChoice
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, opt := range options {
			if strings.EqualFold(opt, answer) {
				return opt, nil
			}
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Unknown choice, try again.")); err != nil {
			return "", fmt.Errorf("failed to write hint: %w", err)
		}
	}
}

// Progress renders a progress bar for a batch of rows.
type Progress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
}

// NewProgress creates a progress bar over total items.
func NewProgress(writer io.Writer, total int, description string) *Progress {
	p := &Progress{writer: writer}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[yellow][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Update moves the bar to done. Its signature matches the import progress
// callback.
func (p *Progress) Update(done, _ int) {
	if err := p.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar.
func (p *Progress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
