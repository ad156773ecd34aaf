package persistence

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity is a UUID primary key assigned before insert.
type Identity struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

// BeforeCreate assigns a new ID when none is set.
func (i *Identity) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TimeStamped carries creation and modification times maintained by GORM.
type TimeStamped struct {
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// SoftDelete marks rows deleted instead of removing them.
type SoftDelete struct {
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (SoftDelete) softDelete() {}

// IsDeleted reports whether the record has been soft deleted.
func (s SoftDelete) IsDeleted() bool { return s.DeletedAt.Valid }

func (s *SoftDelete) clearDeletedAt() { s.DeletedAt = gorm.DeletedAt{} }

type softDeleter interface{ softDelete() }

type restorable interface{ clearDeletedAt() }

// TimeFramed bounds a record to an optional [StartAt, EndAt] window.
type TimeFramed struct {
	StartAt *time.Time `gorm:"column:start_at;index" json:"start_at,omitempty"`
	EndAt   *time.Time `gorm:"column:end_at;index" json:"end_at,omitempty"`
}

func (TimeFramed) timeFramed() {}

// Active reports whether now falls inside the window. Open ends match.
func (t TimeFramed) Active(now time.Time) bool {
	if t.StartAt != nil && now.Before(*t.StartAt) {
		return false
	}
	if t.EndAt != nil && now.After(*t.EndAt) {
		return false
	}
	return true
}

type timeFramer interface{ timeFramed() }

// BaseModel combines Identity, TimeStamped and SoftDelete.
type BaseModel struct {
	Identity
	TimeStamped
	SoftDelete
}

// NoteModel adds an optional text note of up to 512 characters.
type NoteModel struct {
	BaseModel
	Text *string `gorm:"column:text;size:512;default:''" validate:"omitempty,max=512" json:"text"`
}

// TextValue returns the note text, empty when unset.
func (n NoteModel) TextValue() string {
	if n.Text == nil {
		return ""
	}
	return *n.Text
}

// SetText replaces the note text.
func (n *NoteModel) SetText(text string) { n.Text = &text }

// AttachmentModel adds an optional file reference of up to 100 characters.
// The embedding model may implement UploadDestination to choose where
// the file is stored.
type AttachmentModel struct {
	BaseModel
	File *string `gorm:"column:file;size:100;default:''" validate:"omitempty,max=100" json:"file"`
}

// AttachmentFile returns the stored file name, empty when unset.
func (a *AttachmentModel) AttachmentFile() string {
	if a.File == nil {
		return ""
	}
	return *a.File
}

// SetAttachmentFile records the stored file name. An empty name clears it.
func (a *AttachmentModel) SetAttachmentFile(name string) {
	if name == "" {
		a.File = nil
		return
	}
	a.File = &name
}

// Attachable is satisfied by pointers to models embedding AttachmentModel.
type Attachable interface {
	AttachmentFile() string
	SetAttachmentFile(name string)
}

// UploadDestination is optionally implemented by attachment models.
type UploadDestination interface {
	UploadTo() string
}

// UploadDirOf returns the upload directory declared by v, or "".
func UploadDirOf(v any) string {
	if d, ok := v.(UploadDestination); ok {
		return d.UploadTo()
	}
	return ""
}
