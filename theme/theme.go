// Package theme resolves and persists the light/dark colour preference.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Theme is a colour scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Key names the stored preference, both as cookie session value and file.
const Key = "blog-theme"

// Parse accepts exactly "light" or "dark".
func Parse(s string) (Theme, bool) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), true
	}
	return "", false
}

// Resolve returns the saved preference when it is valid, else ambient.
// An invalid ambient value resolves to Light.
func Resolve(saved string, ambient Theme) Theme {
	if t, ok := Parse(saved); ok {
		return t
	}
	if ambient == Dark {
		return Dark
	}
	return Light
}

// Toggle flips t.
func Toggle(t Theme) Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// FromClientHint reads a Sec-CH-Prefers-Color-Scheme header value.
func FromClientHint(v string) Theme {
	if strings.EqualFold(strings.Trim(strings.TrimSpace(v), `"`), string(Dark)) {
		return Dark
	}
	return Light
}

// Store persists a preference.
type Store interface {
	Load() (Theme, bool)
	Save(Theme) error
}

// FileStore keeps the preference in a one-line file.
type FileStore struct {
	Path string
}

// DefaultFileStore stores the preference under the user config directory.
func DefaultFileStore() (*FileStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	return &FileStore{Path: filepath.Join(dir, "blogfront", "theme")}, nil
}

// Load returns the stored preference. A missing or garbled file counts as
// no preference.
func (s *FileStore) Load() (Theme, bool) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", false
	}
	return Parse(strings.TrimSpace(string(data)))
}

// Save writes t, creating the parent directory.
func (s *FileStore) Save(t Theme) error {
	if _, ok := Parse(string(t)); !ok {
		return errors.New("theme: invalid value " + string(t))
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create theme dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(string(t)+"\n"), 0o644); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
