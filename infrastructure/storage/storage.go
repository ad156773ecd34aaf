// Package storage stores attachment files on the local filesystem or in
// S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the named file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName indicates an empty, absolute or escaping file name.
	ErrInvalidName = errors.New("invalid file name")
	// ErrNoAvailableName indicates every candidate name was taken.
	ErrNoAvailableName = errors.New("no available file name")
)

// maxNameAttempts bounds the search for a free name.
const maxNameAttempts = 100

// Storage saves and retrieves named files. Names use forward slashes and
// are relative to the storage root.
type Storage interface {
	// Save writes content under name, or under a suffixed variant when name
	// is taken, and returns the name actually used. Existing files are
	// never overwritten.
	Save(ctx context.Context, name string, content io.Reader) (string, error)
	// Open returns the content of name. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes name. Deleting a missing file is not an error.
	Delete(ctx context.Context, name string) error
	// Exists reports whether name is stored.
	Exists(ctx context.Context, name string) (bool, error)
}

// Join places name inside dir, the way an upload destination is applied.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}

// CleanName normalises name and rejects names that would leave the root.
func CleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return cleaned, nil
}

// alternativeName inserts a random suffix before the extension:
// "posts/photo.jpg" becomes "posts/photo_1a2b3c4.jpg".
func alternativeName(name string) string {
	dir, file := path.Split(name)
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return dir + base + "_" + suffix + ext
}

// availableName returns name, or the first free alternative of it.
func availableName(ctx context.Context, exists func(context.Context, string) (bool, error), name string) (string, error) {
	candidate := name
	for range maxNameAttempts {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = alternativeName(name)
	}
	return "", fmt.Errorf("%w: %s", ErrNoAvailableName, name)
}
