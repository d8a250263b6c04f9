package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ErrInputTerminated is returned when input ends before an answer is given.
var ErrInputTerminated = errors.New("input terminated")

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	reader *NonBlockingReader
	writer io.Writer
}

// NewPrompter creates a prompter. Nil arguments default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{reader: NewNonBlockingReader(reader), writer: writer}
}

// Confirm asks question until it gets y/yes/n/no. An empty answer picks
// defaultYes.
func (p *Prompter) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	choices := "[y/N]"
	if defaultYes {
		choices = "[Y/n]"
	}

	for {
		if _, err := fmt.Fprintf(p.writer, "%s ", FormatPrompt(question+" "+choices)); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, ErrInputTerminated
			}
			return false, err
		}

		switch strings.ToLower(input) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please answer y or n.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}
