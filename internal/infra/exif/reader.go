package exif

import (
	"context"
	"errors"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"

	appErrors "mediaingest/internal/errors"
)

const exifDateLayout = "2006:01:02 15:04:05"

var ErrNoDate = errors.New("exif datetime not found")

// Reader extracts capture dates. A nil Fs reads from the host filesystem.
type Reader struct {
	Fs afero.Fs
}

func (r Reader) DateTimeOriginal(ctx context.Context, path string) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	default:
	}

	fsys := r.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	file, err := fsys.Open(path)
	if err != nil {
		return time.Time{}, appErrors.Wrap(appErrors.ExifFailure, "open", path, err)
	}
	defer file.Close()

	x, err := goexif.Decode(file)
	if err != nil {
		return time.Time{}, appErrors.Wrap(appErrors.ExifFailure, "decode", path, err)
	}

	for _, field := range []goexif.FieldName{goexif.DateTimeOriginal, goexif.DateTimeDigitized} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		str, err := tag.StringVal()
		if err != nil {
			continue
		}
		if parsed, err := time.ParseInLocation(exifDateLayout, str, time.Local); err == nil {
			return parsed, nil
		}
	}

	if parsed, err := x.DateTime(); err == nil {
		return parsed, nil
	}

	return time.Time{}, appErrors.Wrap(appErrors.ExifFailure, "read date", path, ErrNoDate)
}
