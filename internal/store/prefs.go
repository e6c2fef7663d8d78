package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Prefs remembers UI state that is not list data: currently only the
// identifier of the last-viewed list. Kept separate from the document
// backends on purpose.
type Prefs struct {
	dir string
}

// NewPrefs returns a Prefs rooted at the given data directory.
func NewPrefs(dir string) *Prefs {
	return &Prefs{dir: dir}
}

func (p *Prefs) currentListPath() string {
	return filepath.Join(p.dir, "current-list")
}

// SaveCurrentList persists the selected list id. An empty id clears
// the selection.
func (p *Prefs) SaveCurrentList(id string) error {
	path := p.currentListPath()
	if id == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return storageErr("clear current list", err)
		}
		return nil
	}
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return storageErr("create data directory", err)
	}
	if err := os.WriteFile(path, []byte(id), 0644); err != nil {
		return storageErr("save current list", err)
	}
	return nil
}

// LoadCurrentList returns the saved list id, or "" when no list is
// selected.
func (p *Prefs) LoadCurrentList() string {
	data, err := os.ReadFile(p.currentListPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
