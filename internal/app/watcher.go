package app

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"mediaingest/internal/domain"
	appErrors "mediaingest/internal/errors"
	"mediaingest/internal/logging"
)

const DefaultPollInterval = 2 * time.Second

// DeviceWatcher polls the removable volumes and stages the contents of each
// newly inserted one into a device_<unix> folder at its root.
//
// The known set is refreshed on every tick: volumes that disappeared are
// dropped so a reinserted card is detected again, and when several volumes
// appear at once only the lexically first mountpoint is taken per tick, the
// others follow on later ticks.
type DeviceWatcher struct {
	FS       FileSystem
	Volumes  VolumeLister
	Clock    clockwork.Clock
	Interval time.Duration
	Logger   logging.Logger

	known map[string]domain.Volume
}

// Observe returns the sequence of staging batches, one per detected device.
// Polling only happens while the consumer is waiting for the next batch.
// The sequence ends when ctx is done. Each call starts from a fresh baseline.
func (w *DeviceWatcher) Observe(ctx context.Context) iter.Seq[domain.StagingBatch] {
	return func(yield func(domain.StagingBatch) bool) {
		w.known = nil
		for {
			batch, err := w.Next(ctx)
			if err != nil {
				return
			}
			if !yield(batch) {
				return
			}
		}
	}
}

// Next polls until a new device is staged or ctx is done.
func (w *DeviceWatcher) Next(ctx context.Context) (domain.StagingBatch, error) {
	for {
		batch, ok, err := w.Poll(ctx)
		if err != nil {
			w.Logger.Warnf("%s", appErrors.UserMessage(err))
		}
		if ok {
			return batch, nil
		}
		select {
		case <-ctx.Done():
			return domain.StagingBatch{}, ctx.Err()
		case <-w.clock().After(w.interval()):
		}
	}
}

// Poll runs a single tick. The first successful tick only records the
// baseline. ok is true when a new volume was found and staged.
func (w *DeviceWatcher) Poll(ctx context.Context) (batch domain.StagingBatch, ok bool, err error) {
	if w.FS == nil || w.Volumes == nil {
		return batch, false, errors.New("device watcher requires FS and Volumes")
	}

	current, err := w.removable(ctx)
	if err != nil {
		return batch, false, appErrors.Wrap(appErrors.DeviceEnumeration, "list volumes", "", err)
	}
	if w.known == nil {
		w.known = current
		w.Logger.Verbosef("Baseline: %d removable volumes", len(current))
		return batch, false, nil
	}

	next := make(map[string]domain.Volume, len(current))
	var fresh []domain.Volume
	for mountpoint, volume := range current {
		if _, seen := w.known[mountpoint]; seen {
			next[mountpoint] = volume
			continue
		}
		fresh = append(fresh, volume)
	}
	if len(fresh) == 0 {
		w.known = next
		return batch, false, nil
	}

	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].Mountpoint < fresh[j].Mountpoint
	})
	picked := fresh[0]
	next[picked.Mountpoint] = picked
	w.known = next

	w.Logger.Infof("SD card detected at %s (%s)", picked.Mountpoint, picked.Device)
	batch, err = w.Stage(picked.Mountpoint)
	if err != nil {
		return batch, false, err
	}
	return batch, true, nil
}

// Stage moves every direct child of volumeRoot into a new staging folder.
// Children that cannot be moved are recorded and left in place.
func (w *DeviceWatcher) Stage(volumeRoot string) (domain.StagingBatch, error) {
	now := w.clock().Now()
	stagingPath := filepath.Join(volumeRoot, fmt.Sprintf("%s%d", domain.StagingPrefix, now.Unix()))
	batch := domain.StagingBatch{
		Path:       stagingPath,
		VolumeRoot: volumeRoot,
		CreatedAt:  now,
	}

	if err := w.FS.MkdirAll(stagingPath, 0o755); err != nil {
		return batch, appErrors.Wrap(appErrors.StagingMove, "mkdir", stagingPath, err)
	}

	entries, err := w.FS.ReadDir(volumeRoot)
	if err != nil {
		return batch, appErrors.Wrap(appErrors.StagingMove, "readdir", volumeRoot, err)
	}

	for _, entry := range entries {
		src := filepath.Join(volumeRoot, entry.Name())
		if src == stagingPath {
			continue
		}
		item := domain.ItemResult{Source: src, Target: filepath.Join(stagingPath, entry.Name())}
		if err := w.FS.Rename(item.Source, item.Target); err != nil {
			item.Err = appErrors.Wrap(appErrors.StagingMove, "move", src, err)
			w.Logger.Warnf("Could not stage %s: %v", src, err)
		}
		batch.Moved = append(batch.Moved, item)
	}

	w.Logger.Verbosef("Staged %d entries into %s", len(batch.Moved), stagingPath)
	return batch, nil
}

func (w *DeviceWatcher) removable(ctx context.Context) (map[string]domain.Volume, error) {
	volumes, err := w.Volumes.Volumes(ctx)
	if err != nil {
		return nil, err
	}
	current := make(map[string]domain.Volume, len(volumes))
	for _, volume := range volumes {
		if volume.Removable {
			current[volume.Mountpoint] = volume
		}
	}
	return current, nil
}

func (w *DeviceWatcher) clock() clockwork.Clock {
	if w.Clock == nil {
		return clockwork.NewRealClock()
	}
	return w.Clock
}

func (w *DeviceWatcher) interval() time.Duration {
	if w.Interval <= 0 {
		return DefaultPollInterval
	}
	return w.Interval
}
