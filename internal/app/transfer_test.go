package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"mediaingest/internal/domain"
	appErrors "mediaingest/internal/errors"
	infrafs "mediaingest/internal/infra/fs"
)

var acme = domain.ShootMetadata{Client: "Acme", Project: "Launch", Date: "2024-05-01"}

// faultyFS fails CopyFile or Remove for the listed base names.
type faultyFS struct {
	FileSystem
	failCopy   map[string]bool
	failRemove map[string]bool
}

func (f faultyFS) CopyFile(src, dst string) error {
	if f.failCopy[filepath.Base(src)] {
		return errors.New("simulated I/O error")
	}
	return f.FileSystem.CopyFile(src, dst)
}

func (f faultyFS) Remove(path string) error {
	if f.failRemove[filepath.Base(path)] {
		return os.ErrPermission
	}
	return f.FileSystem.Remove(path)
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	}
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func newEngine(fsys FileSystem) (*TransferEngine, *[]domain.ProgressEvent) {
	var events []domain.ProgressEvent
	return &TransferEngine{
		FS:         fsys,
		OnProgress: func(ev domain.ProgressEvent) { events = append(events, ev) },
	}, &events
}

func TestTransferRenamesCopiesAndCleansUp(t *testing.T) {
	source := filepath.Join(t.TempDir(), "device_1714550000")
	dest := t.TempDir()
	writeFiles(t, source, "photo1.jpg", "clip1.mov", "notes.txt")

	engine, events := newEngine(infrafs.New(afero.NewOsFs()))
	summary, err := engine.Run(context.Background(), source, dest, acme)
	require.NoError(t, err)

	destFolder := filepath.Join(dest, "Acme_2024-05-01")
	assert.Equal(t, destFolder, summary.DestFolder)
	// Lexical traversal visits clip1.mov before photo1.jpg.
	assert.Equal(t, []string{
		"2024-05-01_Acme_Launch_01.mov",
		"2024-05-01_Acme_Launch_02.jpg",
	}, listNames(t, destFolder))

	assert.Equal(t, []string{"notes.txt"}, listNames(t, source))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.CopiedCount())
	assert.True(t, summary.Clean())

	require.Len(t, *events, 3)
	assert.Equal(t, "Copying clip1.mov (1 of 2)...", (*events)[0].Message)
	assert.Equal(t, "Copying photo1.jpg (2 of 2)...", (*events)[1].Message)
	assert.True(t, (*events)[2].Done)
	assert.Equal(t, "Copy and delete completed.", (*events)[2].Message)
}

func TestTransferRemovesEmptyDirectoriesBottomUp(t *testing.T) {
	source := filepath.Join(t.TempDir(), "device_1")
	dest := t.TempDir()
	writeFiles(t, source,
		"DCIM/100CANON/IMG_0001.CR3",
		"DCIM/100CANON/IMG_0002.JPG",
		"PRIVATE/M4ROOT/CLIP/C0001.MP4",
		"PRIVATE/M4ROOT/CLIP/C0001M01.XML",
		"MISC/empty/.keep",
	)
	require.NoError(t, os.Remove(filepath.Join(source, "MISC/empty/.keep")))

	engine, _ := newEngine(infrafs.New(nil))
	summary, err := engine.Run(context.Background(), source, dest, acme)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.CopiedCount())
	assert.NoDirExists(t, filepath.Join(source, "DCIM"))
	assert.NoDirExists(t, filepath.Join(source, "MISC"))
	assert.FileExists(t, filepath.Join(source, "PRIVATE/M4ROOT/CLIP/C0001M01.XML"))
	assert.DirExists(t, source)

	assert.Equal(t, []string{
		"2024-05-01_Acme_Launch_01.cr3",
		"2024-05-01_Acme_Launch_02.jpg",
		"2024-05-01_Acme_Launch_03.mp4",
	}, listNames(t, filepath.Join(dest, "Acme_2024-05-01")))
}

func TestTransferRemovesSourceRootWhenEmpty(t *testing.T) {
	source := filepath.Join(t.TempDir(), "device_2")
	writeFiles(t, source, "a.wav", "sub/b.mp3")

	engine, _ := newEngine(infrafs.New(nil))
	summary, err := engine.Run(context.Background(), source, t.TempDir(), acme)
	require.NoError(t, err)

	assert.NoDirExists(t, source)
	assert.Contains(t, summary.RemovedDirs, source)
}

func TestTransferSkipsExistingNames(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()
	destFolder := filepath.Join(dest, "Acme_2024-05-01")
	writeFiles(t, destFolder,
		"2024-05-01_Acme_Launch_01.jpg",
		"2024-05-01_Acme_Launch_02.jpg",
		"2024-05-01_Acme_Launch_03.jpg",
		"2024-05-01_Acme_Launch_04.jpg",
	)
	writeFiles(t, source, "a.jpg", "b.jpg")

	engine, _ := newEngine(infrafs.New(nil))
	_, err := engine.Run(context.Background(), source, dest, acme)
	require.NoError(t, err)

	names := listNames(t, destFolder)
	assert.Len(t, names, 6)
	assert.Contains(t, names, "2024-05-01_Acme_Launch_05.jpg")
	assert.Contains(t, names, "2024-05-01_Acme_Launch_06.jpg")

	data, err := os.ReadFile(filepath.Join(destFolder, "2024-05-01_Acme_Launch_01.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01_Acme_Launch_01.jpg", string(data), "existing file must not be overwritten")
}

func TestTransferRerunNeverDuplicatesNames(t *testing.T) {
	dest := t.TempDir()
	engine, _ := newEngine(infrafs.New(nil))

	for run := 0; run < 2; run++ {
		source := t.TempDir()
		writeFiles(t, source, "a.jpg", "b.jpg")
		_, err := engine.Run(context.Background(), source, dest, acme)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"2024-05-01_Acme_Launch_01.jpg",
		"2024-05-01_Acme_Launch_02.jpg",
		"2024-05-01_Acme_Launch_03.jpg",
		"2024-05-01_Acme_Launch_04.jpg",
	}, listNames(t, filepath.Join(dest, "Acme_2024-05-01")))
}

func TestTransferCopyFailureKeepsSourceAndSpendsNumber(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()
	writeFiles(t, source, "clip1.mov", "photo1.jpg")

	fsys := faultyFS{FileSystem: infrafs.New(nil), failCopy: map[string]bool{"clip1.mov": true}}
	engine, events := newEngine(fsys)
	summary, err := engine.Run(context.Background(), source, dest, acme)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.CopiedCount())
	require.Len(t, summary.CopyFailures, 1)
	assert.Equal(t, appErrors.CopyFailure, appErrors.KindOf(summary.CopyFailures[0].Err))
	assert.False(t, summary.Clean())

	assert.FileExists(t, filepath.Join(source, "clip1.mov"))
	assert.NoFileExists(t, filepath.Join(source, "photo1.jpg"))
	assert.Equal(t, []string{"2024-05-01_Acme_Launch_02.jpg"}, listNames(t, filepath.Join(dest, "Acme_2024-05-01")))

	// A failed copy does not advance the processed count.
	assert.Equal(t, "Copying clip1.mov (1 of 2)...", (*events)[0].Message)
	assert.Equal(t, "Copying photo1.jpg (1 of 2)...", (*events)[1].Message)
}

func TestTransferDeleteFailureStillCountsCopy(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()
	writeFiles(t, source, "a.jpg", "b.jpg")

	fsys := faultyFS{FileSystem: infrafs.New(nil), failRemove: map[string]bool{"a.jpg": true}}
	engine, events := newEngine(fsys)
	summary, err := engine.Run(context.Background(), source, dest, acme)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.CopiedCount())
	require.Len(t, summary.DeleteFailures, 1)
	assert.Equal(t, appErrors.DeleteSource, appErrors.KindOf(summary.DeleteFailures[0].Err))
	assert.FileExists(t, filepath.Join(source, "a.jpg"))
	assert.Equal(t, "Copying b.jpg (2 of 2)...", (*events)[1].Message)
	assert.DirExists(t, source)
}

func TestTransferNormalisesExtensionCase(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()
	writeFiles(t, source, "DSC0001.ARW", "DSC0001.Jpeg")

	engine, _ := newEngine(infrafs.New(nil))
	_, err := engine.Run(context.Background(), source, dest, domain.ShootMetadata{
		Client: "Big Client", Project: "Summer Shoot", Date: "2024-07-10",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-07-10_Big_Client_Summer_Shoot_01.arw",
		"2024-07-10_Big_Client_Summer_Shoot_02.jpeg",
	}, listNames(t, filepath.Join(dest, "Big_Client_2024-07-10")))
}

func TestTransferRejectsInvalidMetadata(t *testing.T) {
	engine, _ := newEngine(infrafs.New(nil))
	_, err := engine.Run(context.Background(), t.TempDir(), t.TempDir(), domain.ShootMetadata{Client: "Acme"})
	require.Error(t, err)
	assert.Equal(t, appErrors.InvalidMetadata, appErrors.KindOf(err))
}

func TestTransferStopsWhenCancelled(t *testing.T) {
	source := t.TempDir()
	writeFiles(t, source, "a.jpg")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine, _ := newEngine(infrafs.New(nil))
	summary, err := engine.Run(ctx, source, t.TempDir(), acme)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Total)
	assert.FileExists(t, filepath.Join(source, "a.jpg"))
}

func TestTransferMovesEveryMediaFileProperty(t *testing.T) {
	base := t.TempDir()
	dirs := []string{"", "DCIM", "DCIM/100MSDCF", "PRIVATE/M4ROOT/CLIP"}
	exts := domain.SupportedExtensions()

	rapid.Check(t, func(rt *rapid.T) {
		source, err := os.MkdirTemp(base, "src")
		require.NoError(rt, err)
		dest, err := os.MkdirTemp(base, "dst")
		require.NoError(rt, err)

		n := rapid.IntRange(1, 30).Draw(rt, "n")
		for i := 0; i < n; i++ {
			dir := rapid.SampledFrom(dirs).Draw(rt, "dir")
			ext := rapid.SampledFrom(exts).Draw(rt, "ext")
			path := filepath.Join(source, filepath.FromSlash(dir), fmt.Sprintf("FILE%04d%s", i, ext))
			require.NoError(rt, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(rt, os.WriteFile(path, []byte{byte(i)}, 0o644))
		}

		engine := &TransferEngine{FS: infrafs.New(nil)}
		summary, err := engine.Run(context.Background(), source, dest, acme)
		require.NoError(rt, err)

		destFolder := filepath.Join(dest, acme.FolderName())
		entries, err := os.ReadDir(destFolder)
		require.NoError(rt, err)
		require.Len(rt, entries, n)

		seen := map[string]bool{}
		for _, entry := range entries {
			ext := filepath.Ext(entry.Name())
			seq := entry.Name()[len(acme.BaseName())+1 : len(entry.Name())-len(ext)]
			seen[seq] = true
		}
		for i := 1; i <= n; i++ {
			require.True(rt, seen[fmt.Sprintf("%02d", i)], "missing sequence %02d", i)
		}

		require.Equal(rt, n, summary.CopiedCount())
		_, err = os.Stat(source)
		require.True(rt, os.IsNotExist(err), "source tree should be gone")
	})
}
