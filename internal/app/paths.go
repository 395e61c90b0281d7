package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/anagramatron/internal/domain/status"
)

// Paths holds the resolved filesystem layout of one data directory.
type Paths struct {
	Root   string // <data>/
	Chunks string // <data>/chunks/
	Status string // <data>/status.json
}

// NewPaths resolves the layout under dataPath.
func NewPaths(dataPath string) *Paths {
	return &Paths{
		Root:   dataPath,
		Chunks: filepath.Join(dataPath, "chunks"),
		Status: filepath.Join(dataPath, status.StatusFile),
	}
}

// EnsureDirs creates the data directories. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.Chunks} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Migrate moves chunk files left directly under Root by older layouts into
// Chunks. Returns the number of files moved. Idempotent: a chunk that already
// exists at the destination is left where it is.
func (p *Paths) Migrate() (int, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		oldPath := filepath.Join(p.Root, e.Name())
		newPath := filepath.Join(p.Chunks, e.Name())

		// Don't overwrite existing destination.
		if _, err := os.Stat(newPath); err == nil {
			continue
		}
		if err := os.MkdirAll(p.Chunks, 0755); err != nil {
			return count, err
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
