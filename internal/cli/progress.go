package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar renders analysis progress as a terminal bar. It satisfies
// service.ProgressReporter.
type ProgressBar struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
}

// NewProgressBar creates a bar scaled to 0-100 percent.
func NewProgressBar(writer io.Writer) *ProgressBar {
	p := &ProgressBar{writer: writer}
	p.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Preparing...[reset]"),
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

// Update moves the bar to percent and shows message beside it.
func (p *ProgressBar) Update(percent float64, message string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	p.bar.Describe("[cyan][bold]" + message + "[reset]")
	if err := p.bar.Set(int(percent)); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Clear removes the bar from the terminal, for use after a failure.
func (p *ProgressBar) Clear() {
	if err := p.bar.Clear(); err != nil {
		slog.Warn("Failed to clear progress bar", "error", err)
	}
}
