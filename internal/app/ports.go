package app

import (
	"context"
	"io/fs"
	"iter"
	"time"

	"mediaingest/internal/domain"
)

type FileSystem interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(path string) ([]fs.DirEntry, error)
	Rename(oldpath, newpath string) error
	Remove(path string) error
	MakeWritable(path string) error
	CopyFile(src, dst string) error
}

type VolumeLister interface {
	Volumes(ctx context.Context) ([]domain.Volume, error)
}

type ExifReader interface {
	DateTimeOriginal(ctx context.Context, path string) (time.Time, error)
}

// BatchSource yields one staging batch per newly inserted device.
type BatchSource interface {
	Observe(ctx context.Context) iter.Seq[domain.StagingBatch]
}

type Transferer interface {
	Run(ctx context.Context, sourceRoot, destinationRoot string, meta domain.ShootMetadata) (domain.TransferSummary, error)
}

// MetadataProvider asks the user for shoot details. A nil result means the
// user cancelled.
type MetadataProvider interface {
	RequestMetadata(ctx context.Context, batch domain.StagingBatch, suggested domain.ShootMetadata) (*domain.ShootMetadata, error)
}

type RepeatConfirmer interface {
	ConfirmRepeat(ctx context.Context, summary domain.TransferSummary) (bool, error)
}

// SessionReporter receives state transitions and user-facing notices.
type SessionReporter interface {
	StateChanged(state State)
	Notice(message string)
}

// ProgressFunc receives transfer progress in order.
type ProgressFunc func(event domain.ProgressEvent)
