package domain

import (
	"path/filepath"
	"strings"
)

// supportedExtensions is the exact set of media suffixes that get transferred.
var supportedExtensions = map[string]bool{
	// raw
	".cr2": true,
	".cr3": true,
	".arw": true,
	".dng": true,
	// image
	".jpg":  true,
	".jpeg": true,
	".heif": true,
	".png":  true,
	// video
	".mp4":  true,
	".mov":  true,
	".mts":  true,
	".mxf":  true,
	".avi":  true,
	".xavc": true,
	// audio
	".wav": true,
	".mp3": true,
}

type MediaFile struct {
	SourcePath string
	Name       string
	Ext        string
}

// NewMediaFile returns the media file at path and whether its extension is supported.
func NewMediaFile(path string) (MediaFile, bool) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	return MediaFile{
		SourcePath: path,
		Name:       name,
		Ext:        ext,
	}, IsSupportedExtension(ext)
}

func IsSupportedExtension(ext string) bool {
	return supportedExtensions[strings.ToLower(ext)]
}

// IsExifImage reports whether goexif can be expected to find a capture date in the file.
func IsExifImage(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".cr2", ".arw", ".dng":
		return true
	default:
		return false
	}
}

// SupportedExtensions returns the supported set in a stable order.
func SupportedExtensions() []string {
	return []string{
		".cr2", ".cr3", ".arw", ".dng",
		".jpg", ".jpeg", ".heif",
		".mp4", ".mov", ".mts", ".mxf", ".avi", ".xavc",
		".wav", ".mp3", ".png",
	}
}
