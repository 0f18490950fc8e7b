package presentation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mediaingest/internal/app"
	"mediaingest/internal/domain"
)

// Console asks for shoot details and confirmations on a line based terminal.
type Console struct {
	In      io.Reader
	Out     io.Writer
	Verbose bool

	reader  *bufio.Reader
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func NewConsole(in io.Reader, out io.Writer, verbose bool) *Console {
	return &Console{In: in, Out: out, Verbose: verbose}
}

// RequestMetadata returns nil when the client name is left blank or input ends.
func (c *Console) RequestMetadata(ctx context.Context, batch domain.StagingBatch, suggested domain.ShootMetadata) (*domain.ShootMetadata, error) {
	fmt.Fprintln(c.Out)
	fmt.Fprintf(c.Out, "Enter Metadata for %s (leave client empty to cancel)\n", batch.Path)

	client, err := c.prompt(ctx, "Client Name", suggested.Client)
	if err != nil || client == "" {
		return nil, ignoreEOF(err)
	}
	project, err := c.prompt(ctx, "Project Title", suggested.Project)
	if err != nil {
		return nil, ignoreEOF(err)
	}
	date, err := c.prompt(ctx, "Shoot Date (YYYY-MM-DD)", suggested.Date)
	if err != nil {
		return nil, ignoreEOF(err)
	}
	return &domain.ShootMetadata{Client: client, Project: project, Date: date}, nil
}

func (c *Console) ConfirmRepeat(ctx context.Context, summary domain.TransferSummary) (bool, error) {
	fmt.Fprintln(c.Out)
	Printer{Writer: c.Out, Verbose: c.Verbose}.PrintSummary(summary)
	fmt.Fprintln(c.Out)
	fmt.Fprintln(c.Out, "Media ingest completed.")

	answer, err := c.prompt(ctx, "Do you want to ingest another SD card? [y/N]", "")
	if err != nil {
		return false, ignoreEOF(err)
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (c *Console) StateChanged(state app.State) {
	if c.Verbose {
		fmt.Fprintf(c.Out, "[%s]\n", state)
	}
}

func (c *Console) Notice(message string) {
	fmt.Fprintln(c.Out, message)
}

// Progress prints one line per progress event.
func (c *Console) Progress(event domain.ProgressEvent) {
	fmt.Fprintln(c.Out, event.Message)
}

func (c *Console) prompt(ctx context.Context, label, fallback string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if fallback != "" {
		fmt.Fprintf(c.Out, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(c.Out, "%s: ", label)
	}

	line, err := c.readLine(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		fmt.Fprintln(c.Out)
		return "", err
	}
	line = strings.TrimSpace(line)
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

// readLine returns the next input line or ctx's error, whichever comes first.
// A read abandoned on cancel is picked up by the next call, so no line is lost.
func (c *Console) readLine(ctx context.Context) (string, error) {
	if c.pending == nil {
		if c.reader == nil {
			c.reader = bufio.NewReader(c.In)
		}
		reader := c.reader
		pending := make(chan lineResult, 1)
		go func() {
			line, err := reader.ReadString('\n')
			pending <- lineResult{line: line, err: err}
		}()
		c.pending = pending
	}

	select {
	case result := <-c.pending:
		c.pending = nil
		return result.line, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
