package volumes

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"

	"mediaingest/internal/domain"
)

// Lister enumerates mounted partitions and flags the removable ones.
type Lister struct {
	// Partitions defaults to gopsutil's disk.PartitionsWithContext.
	Partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	// Removable defaults to the platform classification.
	Removable func(p disk.PartitionStat) bool
}

func (l Lister) Volumes(ctx context.Context) ([]domain.Volume, error) {
	partitions := l.Partitions
	if partitions == nil {
		partitions = disk.PartitionsWithContext
	}
	removable := l.Removable
	if removable == nil {
		removable = isRemovable
	}

	parts, err := partitions(ctx, false)
	if err != nil {
		return nil, err
	}

	volumes := make([]domain.Volume, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		if p.Mountpoint == "" || seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true
		volumes = append(volumes, domain.Volume{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
			Removable:  removable(p),
		})
	}
	return volumes, nil
}

// hasMediaOpt matches the "removable" and "cdrom" mount options some
// platforms report.
func hasMediaOpt(p disk.PartitionStat) bool {
	return slices.ContainsFunc(p.Opts, func(opt string) bool {
		opt = strings.ToLower(opt)
		return opt == "removable" || opt == "cdrom"
	})
}

// underMediaRoot reports whether mountpoint sits below one of the roots
// desktop automounters use for removable media.
func underMediaRoot(mountpoint string, roots ...string) bool {
	clean := filepath.Clean(mountpoint)
	for _, root := range roots {
		if strings.HasPrefix(clean, root) && len(clean) > len(root) {
			return true
		}
	}
	return false
}
