package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/platewise/internal/analyzer"
	"github.com/Veraticus/platewise/internal/app"
	"github.com/Veraticus/platewise/internal/cli"
	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/images"
	"github.com/Veraticus/platewise/internal/model"
)

type analyzeOptions struct {
	save       bool
	noSave     bool
	skipHealth bool
}

func analyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <image|directory>...",
		Short: "Analyze food photos and estimate their nutrition",
		Long: `Analyze uploads each photo to the analysis service, one at a time, and
prints the foods found in it with their estimated nutrition.

Directories are expanded to the JPEG, PNG and WebP files they contain.
Unsupported files are reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.save, "save", false, "save results to history without asking")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not save results or ask to")
	cmd.Flags().BoolVar(&opts.skipHealth, "skip-health", false, "skip the service health check")
	cmd.MarkFlagsMutuallyExclusive("save", "no-save")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	out := cmd.OutOrStdout()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, cancel := handler.HandleInterrupts(cmd.Context(), "Nothing was saved.")
	defer cancel()

	sess, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	selected, rejected := sess.app.SelectFiles(args)
	for _, rejectErr := range rejected {
		writeln(out, cli.FormatWarning(rejectErr.Error()))
	}
	if len(selected) == 0 {
		return common.NewUserError("No supported images to analyze (JPEG, PNG or WebP)", app.ErrNoImagesSelected)
	}

	writeln(out, cli.FormatTitle(fmt.Sprintf("Analyzing %d image(s)", len(selected))))
	writeln(out, describeSelection(selected))

	if !opts.skipHealth {
		checkHealth(ctx, out, sess)
	}

	bar := cli.NewProgressBar(cmd.ErrOrStderr())
	results, err := sess.app.Analyze(ctx, bar)
	if err != nil {
		bar.Clear()
		if handler.WasInterrupted() {
			return context.Canceled
		}
		return analyzeError(err)
	}

	writeln(out, cli.RenderResults(results))

	save, err := shouldSave(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if !save {
		return nil
	}

	record, err := sess.app.SaveResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	writeln(out, cli.FormatSuccess(fmt.Sprintf("Saved to history as session %s", record.ID)))
	return nil
}

func describeSelection(selected []model.ImageFile) string {
	lines := make([]string, len(selected))
	for i, img := range selected {
		meta := images.FormatFileSize(img.Size)
		if dims := images.Dimensions(img); dims != "" {
			meta += ", " + dims
		}
		lines[i] = fmt.Sprintf("  %s %s %s", cli.ImageIcon, img.Name, cli.SubtleStyle.Render("("+meta+")"))
	}
	return strings.Join(lines, "\n")
}

// checkHealth warns when the service looks down; analysis is attempted
// regardless.
func checkHealth(ctx context.Context, out io.Writer, sess *session) {
	if _, err := sess.app.CheckConnection(ctx); err != nil {
		writeln(out, cli.FormatWarning(fmt.Sprintf(
			"Analysis service at %s is not responding; trying anyway.", sess.client.BaseURL())))
	}
}

func analyzeError(err error) error {
	var statusErr *analyzer.StatusError
	if errors.As(err, &statusErr) {
		msg := fmt.Sprintf("Analysis failed: %d %s", statusErr.StatusCode, statusErr.Status)
		if body := strings.TrimSpace(statusErr.Body); body != "" {
			msg += "\n  " + body
		}
		return common.NewUserError(msg, err)
	}
	if errors.Is(err, analyzer.ErrServiceUnavailable) {
		return common.NewUserError("Could not reach the analysis service. Is it running?", err)
	}
	return fmt.Errorf("failed to analyze images: %w", err)
}

func shouldSave(ctx context.Context, cmd *cobra.Command, opts *analyzeOptions) (bool, error) {
	switch {
	case opts.save:
		return true, nil
	case opts.noSave:
		return false, nil
	}

	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	save, err := prompter.Confirm(ctx, "Save these results to history?", true)
	if errors.Is(err, cli.ErrInputTerminated) {
		return false, nil
	}
	return save, err
}
