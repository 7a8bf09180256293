// Package scratch owns the directory where the extractor writes media before it
// is loaded into memory. Every artifact is named by a random token so
// concurrent requests never share a path.
package scratch

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ext is the suffix of every artifact created in the directory.
const Ext = ".tmp"

// ErrOutsideDir is returned when asked to remove a path the directory does not own.
var ErrOutsideDir = errors.New("path outside scratch directory")

// Dir is a scratch directory. It is safe for concurrent use; the only shared
// state is the filesystem, and each request writes to its own file.
type Dir struct {
	root string
}

// New ensures dir exists and returns a Dir rooted at its cleaned absolute path.
func New(dir string) (*Dir, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("scratch directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve scratch dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute directory path.
func (d *Dir) Root() string { return d.root }

// NewToken returns 128 random bits rendered as 32 hex characters.
func NewToken() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Path returns the artifact path for token.
func (d *Dir) Path(token string) string {
	return filepath.Join(d.root, token+Ext)
}

// NewPath allocates a fresh artifact path. Nothing is created on disk.
func (d *Dir) NewPath() string {
	return d.Path(NewToken())
}

// Owns reports whether p is an artifact path directly inside the directory.
func (d *Dir) Owns(p string) bool {
	if p == "" {
		return false
	}
	p = filepath.Clean(p)
	return filepath.Dir(p) == d.root && p != d.root
}

// Remove deletes the artifact at p. A missing file is not an error, so Remove
// is idempotent and may be called for a path the extractor never wrote.
func (d *Dir) Remove(p string) error {
	if p == "" {
		return nil
	}
	if !d.Owns(p) {
		return fmt.Errorf("%w: %s", ErrOutsideDir, p)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Len returns the number of artifacts currently present.
func (d *Dir) Len() (int, error) {
	names, err := d.artifacts()
	return len(names), err
}

// Sweep removes artifacts whose modification time is older than olderThan.
// A zero olderThan removes every artifact. It returns how many were removed
// and the first removal error, continuing past failures.
func (d *Dir) Sweep(olderThan time.Duration) (int, error) {
	names, err := d.artifacts()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-olderThan)
	var (
		removed  int
		firstErr error
	)
	for _, name := range names {
		p := filepath.Join(d.root, name)
		if olderThan > 0 {
			info, err := os.Stat(p)
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := d.Remove(p); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

func (d *Dir) artifacts() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read scratch dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
