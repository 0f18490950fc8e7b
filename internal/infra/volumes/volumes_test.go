package volumes

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListerMapsPartitions(t *testing.T) {
	lister := Lister{
		Partitions: func(ctx context.Context, all bool) ([]disk.PartitionStat, error) {
			assert.False(t, all)
			return []disk.PartitionStat{
				{Device: "/dev/nvme0n1p2", Mountpoint: "/", Fstype: "ext4"},
				{Device: "/dev/sdb1", Mountpoint: "/media/anna/EOS_DIGITAL", Fstype: "exfat"},
				{Device: "/dev/sdb1", Mountpoint: "/media/anna/EOS_DIGITAL", Fstype: "exfat"},
				{Device: "none", Mountpoint: ""},
			}, nil
		},
		Removable: func(p disk.PartitionStat) bool { return p.Device == "/dev/sdb1" },
	}

	volumes, err := lister.Volumes(context.Background())
	require.NoError(t, err)
	require.Len(t, volumes, 2)
	assert.False(t, volumes[0].Removable)
	assert.True(t, volumes[1].Removable)
	assert.Equal(t, "exfat", volumes[1].Fstype)
}

func TestListerPropagatesErrors(t *testing.T) {
	lister := Lister{
		Partitions: func(ctx context.Context, all bool) ([]disk.PartitionStat, error) {
			return nil, errors.New("no /proc")
		},
	}
	_, err := lister.Volumes(context.Background())
	assert.Error(t, err)
}

func TestHasMediaOpt(t *testing.T) {
	assert.True(t, hasMediaOpt(disk.PartitionStat{Opts: []string{"rw", "removable"}}))
	assert.True(t, hasMediaOpt(disk.PartitionStat{Opts: []string{"CDROM"}}))
	assert.False(t, hasMediaOpt(disk.PartitionStat{Opts: []string{"rw", "relatime"}}))
}

func TestUnderMediaRoot(t *testing.T) {
	assert.True(t, underMediaRoot("/media/anna/SD", "/media/"))
	assert.True(t, underMediaRoot("/Volumes/Untitled", "/Volumes/"))
	assert.False(t, underMediaRoot("/media/", "/media/"))
	assert.False(t, underMediaRoot("/home/anna", "/media/", "/mnt/"))
}
