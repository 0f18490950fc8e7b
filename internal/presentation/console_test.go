package presentation

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaingest/internal/app"
	"mediaingest/internal/domain"
)

var consoleBatch = domain.StagingBatch{Path: "/media/anna/CARD/device_1714554000"}

func TestConsoleRequestMetadataUsesSuggestedDate(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(strings.NewReader("Acme\nSpring Launch\n\n"), &out, false)

	meta, err := console.RequestMetadata(context.Background(), consoleBatch, domain.ShootMetadata{Date: "2024-04-30"})
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, domain.ShootMetadata{Client: "Acme", Project: "Spring Launch", Date: "2024-04-30"}, *meta)
	assert.Contains(t, out.String(), "Shoot Date (YYYY-MM-DD) [2024-04-30]: ")
}

func TestConsoleBlankClientCancels(t *testing.T) {
	console := NewConsole(strings.NewReader("\n"), &bytes.Buffer{}, false)

	meta, err := console.RequestMetadata(context.Background(), consoleBatch, domain.ShootMetadata{Date: "2024-04-30"})
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestConsoleEndOfInputCancels(t *testing.T) {
	console := NewConsole(strings.NewReader("Acme\n"), &bytes.Buffer{}, false)

	meta, err := console.RequestMetadata(context.Background(), consoleBatch, domain.ShootMetadata{})
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestConsoleConfirmRepeat(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			console := NewConsole(strings.NewReader(tt.input), &out, false)

			again, err := console.ConfirmRepeat(context.Background(), domain.TransferSummary{DestFolder: "/dest/Acme_2024-05-01"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, again)
			assert.Contains(t, out.String(), "Media ingest completed.")
		})
	}
}

func TestConsoleReportsProgressAndNotices(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(strings.NewReader(""), &out, true)

	console.StateChanged(app.StateTransferring)
	console.Progress(domain.ProgressEvent{Message: "Copying a.jpg (1 of 2)..."})
	console.Notice("Operation cancelled by user.")

	assert.Equal(t, "[transferring]\nCopying a.jpg (1 of 2)...\nOperation cancelled by user.\n", out.String())
}

func TestConsoleStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	console := NewConsole(strings.NewReader("Acme\n"), &bytes.Buffer{}, false)

	_, err := console.RequestMetadata(ctx, consoleBatch, domain.ShootMetadata{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsoleUnblocksWhenCancelledWhileWaiting(t *testing.T) {
	in, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })
	console := NewConsole(in, &bytes.Buffer{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		_, err := console.RequestMetadata(ctx, consoleBatch, domain.ShootMetadata{})
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("metadata prompt still waiting for stdin after cancel")
	}
}

func TestConsoleKeepsLineReadAfterCancel(t *testing.T) {
	in, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })
	console := NewConsole(in, &bytes.Buffer{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := console.readLine(ctx)
	require.ErrorIs(t, err, context.Canceled)

	go func() { _, _ = io.WriteString(writer, "y\n") }()
	again, err := console.ConfirmRepeat(context.Background(), domain.TransferSummary{})
	require.NoError(t, err)
	assert.True(t, again)
}
