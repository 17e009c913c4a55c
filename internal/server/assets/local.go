package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/postkeeper/internal/filex"
)

// LocalStore keeps assets as plain files in one directory. References are
// the file names inside that directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed and returns a store rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStore{dir: abs}, nil
}

// Dir is the absolute directory holding the assets.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Put copies srcPath into the directory. The copy is written to a temporary
// file, synced, and then hard-linked under its final name, which fails
// instead of replacing an existing file.
func (s *LocalStore) Put(ctx context.Context, key, srcPath string) (string, error) {
	if err := checkRef(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp: %w", err)
	}
	_ = os.Chmod(tmpPath, 0o640)

	if err := os.Link(tmpPath, filepath.Join(s.dir, key)); err != nil {
		return "", fmt.Errorf("link %s: %w", key, err)
	}

	return key, nil
}

// Delete removes ref from the directory.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	path, err := s.Locate(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", ref, err)
	}
	return nil
}

// Locate maps ref to its path on disk.
func (s *LocalStore) Locate(ref string) (string, error) {
	if err := checkRef(ref); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, ref), nil
}

func checkRef(ref string) error {
	if ref == "" || ref == "." || ref == ".." || filepath.Base(ref) != ref {
		return fmt.Errorf("invalid asset reference %q", ref)
	}
	return nil
}
