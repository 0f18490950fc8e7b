package presentation

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"mediaingest/internal/domain"
	appErrors "mediaingest/internal/errors"
)

type Printer struct {
	Writer  io.Writer
	Verbose bool
}

// PrintSummary writes the result of one transfer run.
func (p Printer) PrintSummary(summary domain.TransferSummary) {
	fmt.Fprintln(p.Writer, "Copied:")
	fmt.Fprintln(p.Writer)

	for _, line := range formatCopyLines(summary.Copied) {
		fmt.Fprintln(p.Writer, line)
	}

	// Each copy failure was already reported as a session notice.
	if len(summary.CopyFailures) > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintf(p.Writer, "Failed to copy %d files.\n", len(summary.CopyFailures))
	}

	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "Copied %d of %d files into %s.\n", summary.CopiedCount(), summary.Total, summary.DestFolder)

	if len(summary.DeleteFailures) == 0 {
		fmt.Fprintln(p.Writer, "All copied originals were deleted.")
	} else {
		fmt.Fprintf(p.Writer, "Could not delete %d originals, they stay on the card.\n", len(summary.DeleteFailures))
	}

	if !p.Verbose {
		return
	}
	fmt.Fprintf(p.Writer, "Removed %d empty folders.\n", len(summary.RemovedDirs))
	for _, item := range summary.CleanupFailures {
		fmt.Fprintln(p.Writer, "- "+appErrors.UserMessage(item.Err))
	}
	if !summary.Started.IsZero() && !summary.Finished.IsZero() {
		fmt.Fprintf(p.Writer, "Run %s took %s.\n", summary.RunID, summary.Finished.Sub(summary.Started).Round(time.Millisecond))
	}
}

func (p Printer) PrintSettings(path string, settings domain.Settings) {
	destination := settings.NextcloudPath
	if destination == "" {
		destination = "(not set)"
	}
	fmt.Fprintf(p.Writer, "Settings file: %s\n", path)
	fmt.Fprintf(p.Writer, "Destination:   %s\n", destination)
}

func formatCopyLines(items []domain.ItemResult) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s  ->  %s", filepath.Base(item.Source), filepath.Base(item.Target)))
	}

	if len(lines) <= 4 {
		return lines
	}
	head := lines[:2]
	tail := lines[len(lines)-2:]
	return append(append(head, "..."), tail...)
}
