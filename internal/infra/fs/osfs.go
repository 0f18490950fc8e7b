package fs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// AferoFS adapts an afero filesystem to the app.FileSystem port.
type AferoFS struct {
	Fs afero.Fs
}

// New returns an AferoFS over fsys, or over the host filesystem when fsys is nil.
func New(fsys afero.Fs) AferoFS {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return AferoFS{Fs: fsys}
}

// WalkDir walks root in lexical order. Returning fs.SkipAll stops the walk without error.
func (a AferoFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	err := afero.Walk(a.Fs, root, func(path string, info os.FileInfo, walkErr error) error {
		var entry fs.DirEntry
		if info != nil {
			entry = fs.FileInfoToDirEntry(info)
		}
		return fn(path, entry, walkErr)
	})
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (a AferoFS) Stat(path string) (fs.FileInfo, error) {
	return a.Fs.Stat(path)
}

func (a AferoFS) Exists(path string) (bool, error) {
	return afero.Exists(a.Fs, path)
}

func (a AferoFS) MkdirAll(path string, perm fs.FileMode) error {
	return a.Fs.MkdirAll(path, perm)
}

func (a AferoFS) ReadDir(path string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(a.Fs, path)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	return entries, nil
}

func (a AferoFS) Rename(oldpath, newpath string) error {
	return a.Fs.Rename(oldpath, newpath)
}

func (a AferoFS) Remove(path string) error {
	return a.Fs.Remove(path)
}

// MakeWritable adds the owner write bit so the file can be deleted.
func (a AferoFS) MakeWritable(path string) error {
	info, err := a.Fs.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0o200 != 0 {
		return nil
	}
	return a.Fs.Chmod(path, info.Mode().Perm()|0o200)
}

// CopyFile copies bytes, permissions and modification time from src to dst.
// It never overwrites: an existing dst is an error. A partially written dst is removed.
func (a AferoFS) CopyFile(src, dst string) (err error) {
	srcFile, err := a.Fs.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if err := a.Fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := a.Fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = a.Fs.Remove(dst)
		}
	}()

	if _, err = io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err = dstFile.Close(); err != nil {
		return err
	}

	if err = a.Fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return a.Fs.Chtimes(dst, info.ModTime(), info.ModTime())
}
