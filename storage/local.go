package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads into a directory that the HTTP layer serves under a URL prefix.
type LocalStore struct {
	dir      string
	prefix   string
	maxBytes int64
}

// NewLocalStore creates dir if needed. maxBytes <= 0 disables the size cap.
func NewLocalStore(dir, urlPrefix string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	prefix := "/" + strings.Trim(urlPrefix, "/")
	return &LocalStore{dir: dir, prefix: prefix, maxBytes: maxBytes}, nil
}

// Dir is the directory uploads are written to.
func (s *LocalStore) Dir() string { return s.dir }

// Prefix is the URL path uploads are served under.
func (s *LocalStore) Prefix() string { return s.prefix }

// Save streams r to a temporary file and renames it into place, so a rejected upload never
// clobbers an existing file of the same name.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := CleanName(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	src := &cappedReader{r: r, max: s.maxBytes}
	if _, err := io.Copy(tmp, src); err != nil {
		cleanup()
		if src.exceeded {
			return "", ErrTooLarge
		}
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}

	return s.prefix + "/" + escapePath(name), nil
}

var _ Store = (*LocalStore)(nil)
