package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"mediaingest/internal/app"
	"mediaingest/internal/domain"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge lets an IngestSession running in its own goroutine drive the
// program. Messages are sent from that goroutine only, so the model sees
// them in the order the session produced them.
type Bridge struct {
	sender Sender
}

func NewBridge(sender Sender) *Bridge {
	return &Bridge{sender: sender}
}

func (b *Bridge) RequestMetadata(ctx context.Context, batch domain.StagingBatch, suggested domain.ShootMetadata) (*domain.ShootMetadata, error) {
	reply := make(chan *domain.ShootMetadata, 1)
	b.sender.Send(MetadataRequestMsg{Batch: batch, Suggested: suggested, Reply: reply})
	select {
	case meta := <-reply:
		return meta, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Bridge) ConfirmRepeat(ctx context.Context, summary domain.TransferSummary) (bool, error) {
	reply := make(chan bool, 1)
	b.sender.Send(RepeatRequestMsg{Summary: summary, Reply: reply})
	select {
	case again := <-reply:
		return again, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (b *Bridge) StateChanged(state app.State) {
	b.sender.Send(StateMsg{State: state})
}

func (b *Bridge) Notice(message string) {
	b.sender.Send(NoticeMsg{Text: message})
}

func (b *Bridge) Progress(event domain.ProgressEvent) {
	b.sender.Send(ProgressMsg{Event: event})
}

// Done reports the end of the session.
func (b *Bridge) Done(outcome app.Outcome, err error) {
	b.sender.Send(SessionDoneMsg{Outcome: outcome, Err: err})
}
