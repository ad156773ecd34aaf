package persistence_test

import (
	"github.com/dweb/dweb/domain/choice"
	"github.com/dweb/dweb/infrastructure/persistence"
)

var articleStatuses = choice.MustNew("draft", "published")

type article struct {
	persistence.BaseModel
	persistence.StatusModel
	Title string `gorm:"column:title;size:200" json:"title"`
}

func (article) StatusChoices() choice.Choices { return articleStatuses }

// draftColumn collides with the "draft" status.
type draftColumn struct {
	ID uint `gorm:"primaryKey"`
	persistence.StatusModel
	Draft bool `gorm:"column:draft"`
}

func (draftColumn) StatusChoices() choice.Choices { return articleStatuses }

type product struct {
	ID uint `gorm:"primaryKey"`
	persistence.CategoryModel
	persistence.StatusModel
	Name string `gorm:"column:name"`
}

func (product) CategoryChoices() choice.Choices { return choice.MustNew("book", "game") }

func (product) StatusChoices() choice.Choices { return choice.MustNew("active", "retired") }

// sharedValue declares the same value as category and status.
type sharedValue struct {
	ID uint `gorm:"primaryKey"`
	persistence.CategoryModel
	persistence.StatusModel
}

func (sharedValue) CategoryChoices() choice.Choices { return choice.MustNew("new", "used") }

func (sharedValue) StatusChoices() choice.Choices { return choice.MustNew("new") }

// managerName declares a status equal to a built-in accessor.
type managerName struct {
	ID uint `gorm:"primaryKey"`
	persistence.StatusModel
}

func (managerName) StatusChoices() choice.Choices { return choice.MustNew("open", "objects") }

// freeform embeds StatusModel without declaring choices.
type freeform struct {
	ID uint `gorm:"primaryKey"`
	persistence.StatusModel
}

type promo struct {
	ID uint `gorm:"primaryKey"`
	persistence.TimeFramed
	Code string `gorm:"column:code"`
}

type comment struct {
	persistence.NoteModel
	Author string `gorm:"column:author" json:"author"`
}

type upload struct {
	persistence.AttachmentModel
}

func (upload) UploadTo() string { return "uploads/" }

type plain struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"column:name"`
}
