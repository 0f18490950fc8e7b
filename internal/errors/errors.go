package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	InvalidConfig     Kind = "invalid_config"
	InvalidMetadata   Kind = "invalid_metadata"
	NotFound          Kind = "not_found"
	ExifFailure       Kind = "exif_failure"
	IOFailure         Kind = "io_failure"
	SettingsIO        Kind = "settings_io"
	DeviceEnumeration Kind = "device_enumeration"
	StagingMove       Kind = "staging_move"
	CopyFailure       Kind = "copy_failure"
	DeleteSource      Kind = "delete_source"
	EmptyDirCleanup   Kind = "empty_dir_cleanup"
	Internal          Kind = "internal"
)

// ErrNoDestination is returned when no destination root has been configured.
var ErrNoDestination = stderrors.New("no destination path configured")

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// KindOf returns the kind of the outermost AppError in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func UserMessage(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case InvalidMetadata:
		return fmt.Sprintf("Invalid shoot details: %v", appErr.Err)
	case NotFound:
		return fmt.Sprintf("Path not found: %s", appErr.Path)
	case ExifFailure:
		return fmt.Sprintf("EXIF read failed: %s", appErr.Path)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s", appErr.Path)
	case SettingsIO:
		if stderrors.Is(appErr.Err, ErrNoDestination) {
			return "No destination folder configured. Run `mediaingest settings set <path>` first."
		}
		return fmt.Sprintf("Settings could not be read: %v", appErr.Err)
	case DeviceEnumeration:
		return fmt.Sprintf("Could not list removable drives: %v", appErr.Err)
	case StagingMove:
		return fmt.Sprintf("Could not stage %s: %v", appErr.Path, appErr.Err)
	case CopyFailure:
		return fmt.Sprintf("Failed to copy %s: %v", appErr.Path, appErr.Err)
	case DeleteSource:
		return fmt.Sprintf("Could not delete %s: %v", appErr.Path, appErr.Err)
	case EmptyDirCleanup:
		return fmt.Sprintf("Could not remove folder %s: %v", appErr.Path, appErr.Err)
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}
