package domain

import "time"

type ProgressEvent struct {
	Message string
	Current int
	Total   int
	File    string
	Done    bool
}

// ItemResult records the outcome of one per-item filesystem operation.
// Err is nil on success.
type ItemResult struct {
	Source string
	Target string
	Err    error
}

type TransferSummary struct {
	RunID           string
	SourceRoot      string
	DestFolder      string
	Total           int
	Copied          []ItemResult
	CopyFailures    []ItemResult
	DeleteFailures  []ItemResult
	RemovedDirs     []string
	CleanupFailures []ItemResult
	Started         time.Time
	Finished        time.Time
}

func (s TransferSummary) CopiedCount() int {
	return len(s.Copied)
}

// Clean reports whether every file was copied and every original removed.
func (s TransferSummary) Clean() bool {
	return len(s.CopyFailures) == 0 && len(s.DeleteFailures) == 0
}

// Settings is the durable configuration of the tool.
type Settings struct {
	NextcloudPath string `json:"nextcloud_path"`
}
