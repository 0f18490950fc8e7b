//go:build linux

package volumes

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

var sysClassBlock = "/sys/class/block"

// isRemovable trusts the kernel's removable flag. The automounter roots are
// only consulted when sysfs has no answer for the device.
func isRemovable(p disk.PartitionStat) bool {
	if hasMediaOpt(p) {
		return true
	}
	if !strings.HasPrefix(p.Device, "/dev/") {
		return false
	}
	if removable, ok := sysfsRemovable(filepath.Base(p.Device)); ok {
		return removable
	}
	return underMediaRoot(p.Mountpoint, "/media/", "/run/media/")
}

// sysfsRemovable reads the removable flag of a block device, falling back to
// the parent disk for partitions. ok is false when neither can be read.
func sysfsRemovable(name string) (removable, ok bool) {
	dir, err := filepath.EvalSymlinks(filepath.Join(sysClassBlock, name))
	if err != nil {
		return false, false
	}
	for _, candidate := range []string{dir, filepath.Dir(dir)} {
		data, err := os.ReadFile(filepath.Join(candidate, "removable"))
		if err != nil {
			continue
		}
		return strings.TrimSpace(string(data)) == "1", true
	}
	return false, false
}
