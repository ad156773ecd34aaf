package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileSystem stores files below a root directory.
type FileSystem struct {
	root   string
	logger *slog.Logger
}

// NewFileSystem creates a FileSystem rooted at root, creating it if needed.
func NewFileSystem(root string, logger *slog.Logger) (*FileSystem, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSystem{root: root, logger: logger}, nil
}

// Root returns the storage root directory.
func (f *FileSystem) Root() string { return f.root }

// Path returns the local path of name.
func (f *FileSystem) Path(name string) (string, error) {
	cleaned, err := CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.root, filepath.FromSlash(cleaned)), nil
}

// Save implements Storage. The file is created exclusively, so a name
// taken concurrently moves on to the next alternative.
func (f *FileSystem) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	cleaned, err := CleanName(name)
	if err != nil {
		return "", err
	}

	candidate := cleaned
	for range maxNameAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		full := filepath.Join(f.root, filepath.FromSlash(candidate))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return "", fmt.Errorf("create directory for %s: %w", candidate, err)
		}
		file, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			candidate = alternativeName(cleaned)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", candidate, err)
		}
		if _, err := io.Copy(file, content); err != nil {
			_ = file.Close()
			_ = os.Remove(full)
			return "", fmt.Errorf("write %s: %w", candidate, err)
		}
		if err := file.Close(); err != nil {
			_ = os.Remove(full)
			return "", fmt.Errorf("close %s: %w", candidate, err)
		}
		f.logger.DebugContext(ctx, "stored file", slog.String("name", candidate))
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoAvailableName, cleaned)
}

// Open implements Storage.
func (f *FileSystem) Open(_ context.Context, name string) (io.ReadCloser, error) {
	full, err := f.Path(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return file, nil
}

// Delete implements Storage.
func (f *FileSystem) Delete(ctx context.Context, name string) error {
	full, err := f.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	f.logger.DebugContext(ctx, "deleted file", slog.String("name", name))
	return nil
}

// Exists implements Storage.
func (f *FileSystem) Exists(_ context.Context, name string) (bool, error) {
	full, err := f.Path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return true, nil
}
