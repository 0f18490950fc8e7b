// Package settings persists the destination folder between runs.
package settings

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mediaingest/internal/domain"
	appErrors "mediaingest/internal/errors"
)

type Store interface {
	Load() (domain.Settings, error)
	Save(settings domain.Settings) error
}

// JSONStore keeps settings as an indented JSON document.
type JSONStore struct {
	Fs   afero.Fs
	Path string
}

func NewJSONStore(fsys afero.Fs, path string) *JSONStore {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &JSONStore{Fs: fsys, Path: path}
}

// Load returns empty settings when the file does not exist. A file that
// cannot be parsed is an error.
func (s *JSONStore) Load() (domain.Settings, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Settings{}, nil
	}
	if err != nil {
		return domain.Settings{}, appErrors.Wrap(appErrors.SettingsIO, "read settings", s.Path, err)
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.Settings{}, appErrors.Wrap(appErrors.SettingsIO, "parse settings", s.Path, err)
	}
	return settings, nil
}

func (s *JSONStore) Save(settings domain.Settings) error {
	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return appErrors.Wrap(appErrors.SettingsIO, "encode settings", s.Path, err)
	}
	if err := s.Fs.MkdirAll(filepath.Dir(s.Path), 0o750); err != nil {
		return appErrors.Wrap(appErrors.SettingsIO, "mkdir", filepath.Dir(s.Path), err)
	}
	if err := afero.WriteFile(s.Fs, s.Path, append(data, '\n'), 0o600); err != nil {
		return appErrors.Wrap(appErrors.SettingsIO, "write settings", s.Path, err)
	}
	return nil
}

// SetDestination stores path as the destination root. Blank paths are rejected.
func SetDestination(store Store, path string) (domain.Settings, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.Settings{}, appErrors.Wrap(appErrors.InvalidConfig, "settings", "", errors.New("destination path cannot be empty"))
	}

	settings, err := store.Load()
	if err != nil {
		return domain.Settings{}, err
	}
	settings.NextcloudPath = path
	if err := store.Save(settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}
