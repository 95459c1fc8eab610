package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Spool hands out per-invocation scratch directories under a common root.
// Each directory is owned by exactly one in-flight engine invocation; the
// release function removes it and everything staged inside it.
type Spool struct {
	root string
}

// NewSpool creates a Spool rooted at the given directory.
func NewSpool(root string) (*Spool, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating spool directory: %w", err)
	}
	return &Spool{root: root}, nil
}

// Acquire creates a fresh scratch directory. The caller must invoke release
// on every exit path, including cancellation.
func (s *Spool) Acquire() (dir string, release func(), err error) {
	dir = filepath.Join(s.root, "analysis_"+uuid.New().String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

// Root returns the spool's root directory.
func (s *Spool) Root() string {
	return s.root
}
