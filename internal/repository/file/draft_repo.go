// Package file implements repository interfaces on plain files in the config directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/and161185/shiftreport/internal/errs"
)

// DraftRepo stores each key in its own file under dir.
type DraftRepo struct{ dir string }

// NewDraftRepo constructs a file-backed draft repository rooted at dir.
func NewDraftRepo(dir string) *DraftRepo { return &DraftRepo{dir: dir} }

func (r *DraftRepo) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("bad draft key %q", key)
	}
	return filepath.Join(r.dir, key+".draft"), nil
}

// Get reads the file for key.
func (r *DraftRepo) Get(_ context.Context, key string) ([]byte, error) {
	p, err := r.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

// Put atomically replaces the file for key (temp file + rename).
func (r *DraftRepo) Put(_ context.Context, key string, value []byte) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(r.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(value); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o600); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// Delete removes the file for key.
func (r *DraftRepo) Delete(_ context.Context, key string) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op for files.
func (r *DraftRepo) Close() error { return nil }
