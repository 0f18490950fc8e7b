package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"mediaingest/internal/domain"
	appErrors "mediaingest/internal/errors"
	"mediaingest/internal/logging"
)

const completedMessage = "Copy and delete completed."

// TransferEngine copies supported media from a source tree into the shoot
// folder, renaming each file to the next free sequence number, then removes
// the copied originals and any directories left empty.
type TransferEngine struct {
	FS         FileSystem
	Logger     logging.Logger
	OnProgress ProgressFunc
	Now        func() time.Time
}

func (e *TransferEngine) Run(ctx context.Context, sourceRoot, destinationRoot string, meta domain.ShootMetadata) (domain.TransferSummary, error) {
	summary := domain.TransferSummary{
		SourceRoot: sourceRoot,
		Started:    e.now(),
	}
	if e.FS == nil {
		return summary, errors.New("transfer engine requires FS")
	}
	if err := meta.Validate(); err != nil {
		return summary, appErrors.Wrap(appErrors.InvalidMetadata, "validate", "", err)
	}

	stop := e.Logger.Measure("Transfer")
	defer stop()

	destFolder := filepath.Join(destinationRoot, meta.FolderName())
	summary.DestFolder = destFolder
	if err := e.FS.MkdirAll(destFolder, 0o755); err != nil {
		return summary, appErrors.Wrap(appErrors.IOFailure, "mkdir", destFolder, err)
	}

	files, err := e.collect(sourceRoot)
	if err != nil {
		return summary, appErrors.Wrap(appErrors.IOFailure, "scan", sourceRoot, err)
	}
	summary.Total = len(files)
	e.Logger.Verbosef("Found %d media files in %s", summary.Total, sourceRoot)

	counters := map[string]int{}
	processed := 0

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			summary.Finished = e.now()
			return summary, err
		}

		base := meta.BaseName()
		if _, seen := counters[base]; !seen {
			counters[base] = 1
		}

		target, err := e.freeName(destFolder, meta, counters, file.Ext)
		if err != nil {
			summary.CopyFailures = append(summary.CopyFailures, domain.ItemResult{
				Source: file.SourcePath,
				Err:    appErrors.Wrap(appErrors.CopyFailure, "stat", target, err),
			})
			e.Logger.Errorf(err, "Failed to pick a name for %s", file.SourcePath)
			continue
		}

		e.report(domain.ProgressEvent{
			Message: fmt.Sprintf("Copying %s (%d of %d)...", file.Name, processed+1, summary.Total),
			Current: processed + 1,
			Total:   summary.Total,
			File:    file.Name,
		})

		copyErr := e.FS.CopyFile(file.SourcePath, target)
		// The name is spent even when the copy fails.
		counters[base]++

		item := domain.ItemResult{Source: file.SourcePath, Target: target}
		if copyErr != nil {
			item.Err = appErrors.Wrap(appErrors.CopyFailure, "copy", file.SourcePath, copyErr)
			summary.CopyFailures = append(summary.CopyFailures, item)
			e.Logger.Errorf(copyErr, "Failed to copy %s", file.SourcePath)
			continue
		}
		processed++
		summary.Copied = append(summary.Copied, item)
		e.Logger.Verbosef("Copied %s -> %s", file.SourcePath, target)

		if err := e.removeSource(file.SourcePath); err != nil {
			summary.DeleteFailures = append(summary.DeleteFailures, domain.ItemResult{
				Source: file.SourcePath,
				Err:    appErrors.Wrap(appErrors.DeleteSource, "remove", file.SourcePath, err),
			})
			e.Logger.Warnf("Could not delete %s: %v", file.SourcePath, err)
		}
	}

	e.removeEmptyDirs(sourceRoot, &summary)

	summary.Finished = e.now()
	e.report(domain.ProgressEvent{
		Message: completedMessage,
		Current: processed,
		Total:   summary.Total,
		Done:    true,
	})
	e.Logger.Infof("Copied %d of %d files to %s (%d copy failures, %d originals kept)",
		processed, summary.Total, destFolder, len(summary.CopyFailures), len(summary.DeleteFailures))
	return summary, nil
}

// collect lists supported files under root in traversal order. Unreadable
// subdirectories are skipped; an unreadable root is an error.
func (e *TransferEngine) collect(root string) ([]domain.MediaFile, error) {
	var files []domain.MediaFile
	err := e.FS.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			e.Logger.Warnf("Skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if file, ok := domain.NewMediaFile(path); ok {
			files = append(files, file)
		}
		return nil
	})
	return files, err
}

// freeName advances the counter for the batch until no file exists at the
// candidate path.
func (e *TransferEngine) freeName(destFolder string, meta domain.ShootMetadata, counters map[string]int, ext string) (string, error) {
	base := meta.BaseName()
	for {
		candidate := filepath.Join(destFolder, meta.SequencedName(counters[base], ext))
		exists, err := e.FS.Exists(candidate)
		if err != nil {
			return candidate, err
		}
		if !exists {
			return candidate, nil
		}
		counters[base]++
	}
}

func (e *TransferEngine) removeSource(path string) error {
	if err := e.FS.MakeWritable(path); err != nil {
		e.Logger.Verbosef("Could not clear read-only flag on %s: %v", path, err)
	}
	return e.FS.Remove(path)
}

// removeEmptyDirs deletes empty directories bottom-up, root included.
func (e *TransferEngine) removeEmptyDirs(root string, summary *domain.TransferSummary) {
	var dirs []string
	err := e.FS.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		e.Logger.Warnf("Could not scan %s for empty folders: %v", root, err)
	}

	// Pre-order walk lists parents first; reversed, children go first.
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		entries, err := e.FS.ReadDir(dir)
		if err != nil {
			summary.CleanupFailures = append(summary.CleanupFailures, domain.ItemResult{
				Source: dir,
				Err:    appErrors.Wrap(appErrors.EmptyDirCleanup, "readdir", dir, err),
			})
			continue
		}
		if len(entries) > 0 {
			continue
		}
		if err := e.FS.Remove(dir); err != nil {
			summary.CleanupFailures = append(summary.CleanupFailures, domain.ItemResult{
				Source: dir,
				Err:    appErrors.Wrap(appErrors.EmptyDirCleanup, "rmdir", dir, err),
			})
			e.Logger.Warnf("Could not delete folder %s: %v", dir, err)
			continue
		}
		summary.RemovedDirs = append(summary.RemovedDirs, dir)
		e.Logger.Verbosef("Deleted empty folder %s", dir)
	}
}

func (e *TransferEngine) report(event domain.ProgressEvent) {
	if e.OnProgress != nil {
		e.OnProgress(event)
	}
}

func (e *TransferEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
