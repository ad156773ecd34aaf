package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dweb/dweb/domain/query"
	"github.com/dweb/dweb/infrastructure/persistence"
	"github.com/dweb/dweb/infrastructure/storage"
	"github.com/dweb/dweb/internal/log"
	"github.com/dweb/dweb/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type document struct {
	persistence.AttachmentModel
	Title string `gorm:"column:title" json:"title"`
}

func (document) UploadTo() string { return "documents/" }

type attachmentFixture struct {
	model   *persistence.Model[document]
	store   *storage.FileSystem
	service *Attachments[document, *document]
}

func newAttachmentFixture(t *testing.T) attachmentFixture {
	t.Helper()
	reg := testdb.Registry(t)
	model := persistence.MustRegister[document](reg)
	testdb.Migrate(t, reg)

	store, err := storage.NewFileSystem(filepath.Join(t.TempDir(), "media"), log.Discard().Slog())
	require.NoError(t, err)

	svc := NewAttachments[document, *document](model, reg.Database(), store, log.Discard().Slog())
	return attachmentFixture{model: model, store: store, service: svc}
}

func TestAttachments_AttachAndOpen(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)

	doc := document{Title: "report"}
	require.NoError(t, f.service.Attach(ctx, &doc, "report.txt", strings.NewReader("quarterly")))
	assert.Equal(t, "documents/report.txt", doc.AttachmentFile())

	stored, err := f.model.Objects().First(ctx, query.WithID(doc.ID))
	require.NoError(t, err)
	assert.Equal(t, "documents/report.txt", stored.AttachmentFile())

	rc, err := f.service.Open(ctx, &stored)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "quarterly", string(data))
}

func TestAttachments_StripsDirectoriesFromFilename(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)

	doc := document{}
	require.NoError(t, f.service.Attach(ctx, &doc, "../../etc/passwd", strings.NewReader("x")))
	assert.Equal(t, "documents/passwd", doc.AttachmentFile())
}

func TestAttachments_SameNameGetsSuffix(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)

	first := document{}
	second := document{}
	require.NoError(t, f.service.Attach(ctx, &first, "a.txt", strings.NewReader("1")))
	require.NoError(t, f.service.Attach(ctx, &second, "a.txt", strings.NewReader("2")))

	assert.NotEqual(t, first.AttachmentFile(), second.AttachmentFile())
	assert.True(t, strings.HasPrefix(second.AttachmentFile(), "documents/a_"))
}

func TestAttachments_FailedSaveRemovesFile(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)

	doc := document{}
	long := strings.Repeat("n", 120) + ".txt"
	err := f.service.Attach(ctx, &doc, long, strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "", doc.AttachmentFile())

	exists, err := f.store.Exists(ctx, "documents/"+long)
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := f.model.Objects().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAttachments_Detach(t *testing.T) {
	ctx := context.Background()
	f := newAttachmentFixture(t)

	doc := document{}
	require.NoError(t, f.service.Attach(ctx, &doc, "a.txt", strings.NewReader("1")))
	name := doc.AttachmentFile()

	require.NoError(t, f.service.Detach(ctx, &doc))
	assert.Equal(t, "", doc.AttachmentFile())

	exists, err := f.store.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)

	stored, err := f.model.Objects().First(ctx, query.WithID(doc.ID))
	require.NoError(t, err)
	assert.Equal(t, "", stored.AttachmentFile())

	assert.ErrorIs(t, f.service.Detach(ctx, &doc), ErrNoAttachment)
	_, err = f.service.Open(ctx, &doc)
	assert.ErrorIs(t, err, ErrNoAttachment)
}
