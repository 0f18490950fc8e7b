package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShootMetadataNames(t *testing.T) {
	meta := ShootMetadata{Client: "Acme Corp", Project: "Spring Launch", Date: "2024-05-01"}

	assert.Equal(t, "2024-05-01_Acme_Corp_Spring_Launch", meta.BaseName())
	assert.Equal(t, "Acme_Corp_2024-05-01", meta.FolderName())
	assert.Equal(t, "2024-05-01_Acme_Corp_Spring_Launch_01.jpg", meta.SequencedName(1, ".JPG"))
	assert.Equal(t, "2024-05-01_Acme_Corp_Spring_Launch_123.mov", meta.SequencedName(123, ".mov"))
}

func TestNewShootMetadataDefaultsDate(t *testing.T) {
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.Local)

	meta := NewShootMetadata("  Acme ", "Launch", "", now)
	assert.Equal(t, "Acme", meta.Client)
	assert.Equal(t, "2024-06-09", meta.Date)
}

func TestNewShootMetadataTrimsBeforeNaming(t *testing.T) {
	meta := NewShootMetadata(" Acme Corp ", "Spring Launch  ", " 2024-05-01 ", time.Now())

	assert.Equal(t, "Acme_Corp_2024-05-01", meta.FolderName())
	assert.Equal(t, "2024-05-01_Acme_Corp_Spring_Launch_01.jpg", meta.SequencedName(1, ".jpg"))
}

func TestShootMetadataValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    ShootMetadata
		wantErr string
	}{
		{name: "valid", meta: ShootMetadata{Client: "Acme", Project: "Launch", Date: "2024-05-01"}},
		{name: "missing client", meta: ShootMetadata{Project: "Launch", Date: "2024-05-01"}, wantErr: "client (required)"},
		{name: "bad date", meta: ShootMetadata{Client: "Acme", Project: "Launch", Date: "01.05.2024"}, wantErr: "date (datetime)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewMediaFileMatchesCaseInsensitively(t *testing.T) {
	file, ok := NewMediaFile("/card/DCIM/IMG_0001.JPG")
	require.True(t, ok)
	assert.Equal(t, ".jpg", file.Ext)
	assert.Equal(t, "IMG_0001.JPG", file.Name)

	_, ok = NewMediaFile("/card/notes.txt")
	assert.False(t, ok)

	assert.Len(t, SupportedExtensions(), 16)
	for _, ext := range SupportedExtensions() {
		assert.True(t, IsSupportedExtension(ext), ext)
	}
}
