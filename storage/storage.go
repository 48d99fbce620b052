// Package storage keeps uploaded images and hands back the URL clients fetch them from.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured size cap.
	ErrTooLarge = errors.New("upload exceeds size limit")
	// ErrInvalidName is returned for filenames with no usable base name.
	ErrInvalidName = errors.New("invalid file name")
)

// Store persists an uploaded file under its base name. Saving the same name twice overwrites.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// CleanName reduces a client supplied filename to its base name.
func CleanName(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return "", ErrInvalidName
	}
	return name, nil
}

// escapePath escapes each segment of a slash separated key.
func escapePath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// cappedReader fails with ErrTooLarge once more than max bytes have been read.
type cappedReader struct {
	r        io.Reader
	read     int64
	max      int64
	exceeded bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.max > 0 && c.read > c.max {
		c.exceeded = true
		return n, ErrTooLarge
	}
	return n, err
}
