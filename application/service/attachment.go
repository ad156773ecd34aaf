package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/dweb/dweb/infrastructure/persistence"
	"github.com/dweb/dweb/infrastructure/storage"
	"github.com/dweb/dweb/internal/database"
)

// Attachments stores the files of an attachment model and keeps the
// model's file reference in step with them.
type Attachments[T any, PT interface {
	*T
	persistence.Attachable
}] struct {
	manager *persistence.Manager[T]
	db      database.Database
	storage storage.Storage
	logger  *slog.Logger
}

// NewAttachments creates an Attachments service writing rows through the
// model's objects manager.
func NewAttachments[T any, PT interface {
	*T
	persistence.Attachable
}](model *persistence.Model[T], db database.Database, store storage.Storage, logger *slog.Logger) *Attachments[T, PT] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Attachments[T, PT]{
		manager: model.Objects(),
		db:      db,
		storage: store,
		logger:  logger,
	}
}

// Attach stores content under the model's upload directory, records the
// stored name on record and saves the row. The stored file is removed
// again when the row cannot be saved.
func (a *Attachments[T, PT]) Attach(ctx context.Context, record *T, filename string, content io.Reader) error {
	target := storage.Join(persistence.UploadDirOf(record), path.Base(filename))
	name, err := a.storage.Save(ctx, target, content)
	if err != nil {
		return fmt.Errorf("store attachment: %w", err)
	}

	ref := PT(record)
	previous := ref.AttachmentFile()
	ref.SetAttachmentFile(name)

	err = database.WithTransaction(ctx, a.db, func(tx database.Database) error {
		return a.manager.Bind(tx).Save(ctx, record)
	})
	if err != nil {
		ref.SetAttachmentFile(previous)
		if derr := a.storage.Delete(ctx, name); derr != nil {
			a.logger.WarnContext(ctx, "failed to remove orphaned attachment",
				slog.String("name", name),
				slog.String("error", derr.Error()),
			)
		}
		return fmt.Errorf("save attachment %s: %w", name, err)
	}

	a.logger.InfoContext(ctx, "attached file", slog.String("name", name))
	return nil
}

// Open returns the stored file of record.
func (a *Attachments[T, PT]) Open(ctx context.Context, record *T) (io.ReadCloser, error) {
	name := PT(record).AttachmentFile()
	if name == "" {
		return nil, ErrNoAttachment
	}
	rc, err := a.storage.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return rc, nil
}

// Detach clears the file reference of record, saves the row and then
// removes the stored file.
func (a *Attachments[T, PT]) Detach(ctx context.Context, record *T) error {
	ref := PT(record)
	name := ref.AttachmentFile()
	if name == "" {
		return ErrNoAttachment
	}

	ref.SetAttachmentFile("")
	err := database.WithTransaction(ctx, a.db, func(tx database.Database) error {
		return a.manager.Bind(tx).Save(ctx, record)
	})
	if err != nil {
		ref.SetAttachmentFile(name)
		return fmt.Errorf("detach %s: %w", name, err)
	}

	if err := a.storage.Delete(ctx, name); err != nil {
		return fmt.Errorf("remove attachment %s: %w", name, err)
	}
	a.logger.InfoContext(ctx, "detached file", slog.String("name", name))
	return nil
}
