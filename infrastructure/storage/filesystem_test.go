package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dweb/dweb/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileSystem(t *testing.T) *FileSystem {
	t.Helper()
	fs, err := NewFileSystem(filepath.Join(t.TempDir(), "media"), log.Discard().Slog())
	require.NoError(t, err)
	return fs
}

func readAll(t *testing.T, s Storage, name string) string {
	t.Helper()
	rc, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestFileSystem_SaveAndOpen(t *testing.T) {
	ctx := context.Background()
	fs := newTestFileSystem(t)

	name, err := fs.Save(ctx, "posts/hello.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "posts/hello.txt", name)
	assert.Equal(t, "hello", readAll(t, fs, name))

	exists, err := fs.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = os.Stat(filepath.Join(fs.Root(), "posts", "hello.txt"))
	assert.NoError(t, err)
}

func TestFileSystem_SaveNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	fs := newTestFileSystem(t)

	first, err := fs.Save(ctx, "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := fs.Save(ctx, "a.txt", strings.NewReader("two"))
	require.NoError(t, err)

	assert.Equal(t, "a.txt", first)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "a_"))
	assert.True(t, strings.HasSuffix(second, ".txt"))
	assert.Equal(t, "one", readAll(t, fs, first))
	assert.Equal(t, "two", readAll(t, fs, second))
}

func TestFileSystem_DeleteAndMissing(t *testing.T) {
	ctx := context.Background()
	fs := newTestFileSystem(t)

	name, err := fs.Save(ctx, "gone.txt", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, fs.Delete(ctx, name))
	require.NoError(t, fs.Delete(ctx, name), "deleting a missing file succeeds")

	exists, err := fs.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = fs.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileSystem_RejectsEscapingNames(t *testing.T) {
	ctx := context.Background()
	fs := newTestFileSystem(t)

	for _, name := range []string{"", "/etc/passwd", "../outside.txt", "a/../../b", "."} {
		_, err := fs.Save(ctx, name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a.txt", "a.txt"},
		{"posts//a.txt", "posts/a.txt"},
		{"posts/./a.txt", "posts/a.txt"},
		{"posts\\a.txt", "posts/a.txt"},
		{"posts/x/../a.txt", "posts/a.txt"},
	}
	for _, tt := range tests {
		got, err := CleanName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a.txt", Join("", "a.txt"))
	assert.Equal(t, "posts/a.txt", Join("posts/", "a.txt"))
	assert.Equal(t, "posts/2026/a.txt", Join("posts/2026", "a.txt"))
}

func TestAlternativeName(t *testing.T) {
	alt := alternativeName("posts/photo.jpg")
	assert.True(t, strings.HasPrefix(alt, "posts/photo_"), alt)
	assert.True(t, strings.HasSuffix(alt, ".jpg"), alt)
	assert.Len(t, alt, len("posts/photo_")+7+len(".jpg"))

	noExt := alternativeName("README")
	assert.True(t, strings.HasPrefix(noExt, "README_"))
}
