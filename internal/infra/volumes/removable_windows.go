//go:build windows

package volumes

import (
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/windows"
)

func isRemovable(p disk.PartitionStat) bool {
	if hasMediaOpt(p) {
		return true
	}
	mountpoint := p.Mountpoint
	if !strings.HasSuffix(mountpoint, `\`) {
		mountpoint += `\`
	}
	root, err := windows.UTF16PtrFromString(mountpoint)
	if err != nil {
		return false
	}
	switch windows.GetDriveType(root) {
	case windows.DRIVE_REMOVABLE, windows.DRIVE_CDROM:
		return true
	default:
		return false
	}
}
