package domain

import "time"

// StagingPrefix names the quarantine folder created at a volume root.
const StagingPrefix = "device_"

// Volume is a mounted filesystem as seen by one poll.
type Volume struct {
	Device     string
	Mountpoint string
	Fstype     string
	Removable  bool
}

// StagingBatch is the folder that captured a volume's top-level entries at
// detection time.
type StagingBatch struct {
	Path       string
	VolumeRoot string
	CreatedAt  time.Time
	Moved      []ItemResult
}

// MoveFailures returns the entries that stayed at the volume root.
func (b StagingBatch) MoveFailures() []ItemResult {
	var failed []ItemResult
	for _, item := range b.Moved {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}
