package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediaingest/internal/domain"
	appErrors "mediaingest/internal/errors"
	"mediaingest/internal/logging"
)

type State int

const (
	StateIdle State = iota
	StateWaitingForDevice
	StateCollectingMetadata
	StateTransferring
	StateAskRepeat
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaitingForDevice:
		return "waiting for device"
	case StateCollectingMetadata:
		return "collecting metadata"
	case StateTransferring:
		return "transferring"
	case StateAskRepeat:
		return "ask repeat"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome tells how a session ended.
type Outcome int

const (
	// OutcomeFinished means the user declined another ingest.
	OutcomeFinished Outcome = iota
	// OutcomeCancelled means the user declined to enter shoot details.
	OutcomeCancelled
)

const cancelledNotice = "Operation cancelled by user."

// IngestSession runs wait → metadata → transfer → repeat cycles.
type IngestSession struct {
	Watcher  BatchSource
	Engine   Transferer
	Metadata MetadataProvider
	Repeat   RepeatConfirmer
	Reporter SessionReporter
	Settings domain.Settings
	Logger   logging.Logger

	// SuggestDate returns the default shoot date offered for a batch.
	SuggestDate func(ctx context.Context, batch domain.StagingBatch) string
	Now         func() time.Time
	NewRunID    func() string

	mu    sync.Mutex
	state State
}

func (s *IngestSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run waits for devices until the user declines another ingest, declines to
// enter metadata, or ctx is done. A missing destination path fails before
// any device wait begins.
func (s *IngestSession) Run(ctx context.Context) (Outcome, error) {
	if err := s.check(); err != nil {
		return OutcomeFinished, err
	}
	defer s.setState(StateIdle)

	s.setState(StateWaitingForDevice)
	s.notice("Waiting for SD card...")
	for batch := range s.Watcher.Observe(ctx) {
		summary, outcome, err := s.ingest(ctx, batch)
		if err != nil || outcome == OutcomeCancelled {
			return outcome, err
		}

		s.setState(StateAskRepeat)
		again, err := s.Repeat.ConfirmRepeat(ctx, summary)
		if err != nil {
			return OutcomeFinished, err
		}
		if !again {
			return OutcomeFinished, nil
		}
		s.setState(StateWaitingForDevice)
		s.notice("Waiting for SD card...")
	}
	return OutcomeFinished, ctx.Err()
}

// IngestFolder runs one metadata + transfer cycle over an existing folder.
func (s *IngestSession) IngestFolder(ctx context.Context, dir string) (domain.TransferSummary, Outcome, error) {
	if err := s.check(); err != nil {
		return domain.TransferSummary{}, OutcomeFinished, err
	}
	defer s.setState(StateIdle)
	return s.ingest(ctx, domain.StagingBatch{Path: dir, VolumeRoot: dir, CreatedAt: s.now()})
}

func (s *IngestSession) ingest(ctx context.Context, batch domain.StagingBatch) (domain.TransferSummary, Outcome, error) {
	runID := s.newRunID()
	logger := s.Logger.With("run", runID)
	logger.Infof("Ingesting %s", batch.Path)

	if failed := batch.MoveFailures(); len(failed) > 0 {
		s.notice(fmt.Sprintf("%d item(s) could not be staged and stay on the card.", len(failed)))
	}

	s.setState(StateCollectingMetadata)
	meta, err := s.collect(ctx, batch)
	if err != nil {
		return domain.TransferSummary{}, OutcomeFinished, err
	}
	if meta == nil {
		logger.Infof("Cancelled by user")
		s.notice(cancelledNotice)
		return domain.TransferSummary{}, OutcomeCancelled, nil
	}

	s.setState(StateTransferring)
	summary, err := s.Engine.Run(ctx, batch.Path, s.Settings.NextcloudPath, *meta)
	summary.RunID = runID
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return summary, OutcomeFinished, err
		}
		logger.Errorf(err, "Transfer failed")
		s.notice(appErrors.UserMessage(err))
	}
	for _, failure := range summary.CopyFailures {
		s.notice(appErrors.UserMessage(failure.Err))
	}
	return summary, OutcomeFinished, nil
}

// collect asks for metadata until it is valid or the user cancels.
func (s *IngestSession) collect(ctx context.Context, batch domain.StagingBatch) (*domain.ShootMetadata, error) {
	suggested := domain.NewShootMetadata("", "", s.suggestDate(ctx, batch), s.now())
	for {
		meta, err := s.Metadata.RequestMetadata(ctx, batch, suggested)
		if err != nil || meta == nil {
			return nil, err
		}
		normalized := domain.NewShootMetadata(meta.Client, meta.Project, meta.Date, s.now())
		if err := normalized.Validate(); err != nil {
			s.notice(appErrors.UserMessage(appErrors.Wrap(appErrors.InvalidMetadata, "validate", "", err)))
			suggested = normalized
			continue
		}
		return &normalized, nil
	}
}

func (s *IngestSession) check() error {
	if s.Watcher == nil || s.Engine == nil || s.Metadata == nil || s.Repeat == nil {
		return errors.New("ingest session requires watcher, engine, metadata and repeat collaborators")
	}
	if strings.TrimSpace(s.Settings.NextcloudPath) == "" {
		return appErrors.Wrap(appErrors.SettingsIO, "settings", "", appErrors.ErrNoDestination)
	}
	return nil
}

func (s *IngestSession) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.Logger.Verbosef("Session state: %s", state)
	if s.Reporter != nil {
		s.Reporter.StateChanged(state)
	}
}

func (s *IngestSession) notice(message string) {
	if s.Reporter != nil {
		s.Reporter.Notice(message)
	}
}

func (s *IngestSession) suggestDate(ctx context.Context, batch domain.StagingBatch) string {
	if s.SuggestDate != nil {
		return s.SuggestDate(ctx, batch)
	}
	return s.now().Format(domain.DateLayout)
}

func (s *IngestSession) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *IngestSession) newRunID() string {
	if s.NewRunID != nil {
		return s.NewRunID()
	}
	return uuid.NewString()
}
