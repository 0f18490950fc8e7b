//go:build !linux && !windows

package volumes

import "github.com/shirou/gopsutil/v4/disk"

func isRemovable(p disk.PartitionStat) bool {
	return hasMediaOpt(p) || underMediaRoot(p.Mountpoint, "/Volumes/")
}
