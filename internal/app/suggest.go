package app

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"mediaingest/internal/domain"
)

// maxExifReads bounds how many images are opened looking for a capture date.
const maxExifReads = 5

// SuggestShootDate returns the capture date of the first image under root
// that carries one, or the date of now.
func SuggestShootDate(ctx context.Context, fsys FileSystem, exif ExifReader, root string, now time.Time) string {
	if fsys == nil || exif == nil {
		return now.Format(domain.DateLayout)
	}

	var taken time.Time
	reads := 0
	_ = fsys.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		file, ok := domain.NewMediaFile(path)
		if !ok || !domain.IsExifImage(file.Ext) {
			return nil
		}
		reads++
		ts, exifErr := exif.DateTimeOriginal(ctx, path)
		if exifErr != nil {
			if errors.Is(exifErr, context.Canceled) || errors.Is(exifErr, context.DeadlineExceeded) {
				return fs.SkipAll
			}
			if reads >= maxExifReads {
				return fs.SkipAll
			}
			return nil
		}
		taken = ts
		return fs.SkipAll
	})

	if taken.IsZero() {
		return now.Format(domain.DateLayout)
	}
	return taken.Format(domain.DateLayout)
}
