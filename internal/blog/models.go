// Package blog is a small sample application built from the dweb model
// building blocks. The CLI inspects and migrates it.
package blog

import (
	"fmt"

	"github.com/dweb/dweb/domain/choice"
	"github.com/dweb/dweb/infrastructure/persistence"
	"github.com/google/uuid"
)

var (
	postStatuses = choice.MustNewLabeled(
		choice.Choice{Value: "draft", Label: "Draft"},
		choice.Choice{Value: "published", Label: "Published"},
	)
	postCategories = choice.MustNewLabeled(
		choice.Choice{Value: "news", Label: "News"},
		choice.Choice{Value: "tutorial", Label: "Tutorial"},
	)
	eventStatuses = choice.MustNew("scheduled", "cancelled")
)

// Post is a blog article.
type Post struct {
	persistence.BaseModel
	persistence.CategoryModel
	persistence.StatusModel
	Title string `gorm:"column:title;size:200;not null" validate:"required,max=200" json:"title"`
	Slug  string `gorm:"column:slug;size:200;uniqueIndex" json:"slug"`
}

// StatusChoices returns the post workflow states.
func (Post) StatusChoices() choice.Choices { return postStatuses }

// CategoryChoices returns the post sections.
func (Post) CategoryChoices() choice.Choices { return postCategories }

// Comment is a reader note on a post.
type Comment struct {
	persistence.NoteModel
	PostID uuid.UUID `gorm:"column:post_id;type:uuid;index" json:"post_id"`
	Author string    `gorm:"column:author;size:100" json:"author"`
}

// Image is a file attached to a post.
type Image struct {
	persistence.AttachmentModel
	PostID  uuid.UUID `gorm:"column:post_id;type:uuid;index" json:"post_id"`
	Caption string    `gorm:"column:caption;size:200" json:"caption"`
}

// UploadTo places images under posts/.
func (Image) UploadTo() string { return "posts/" }

// Event is a dated announcement shown while its window is open.
type Event struct {
	persistence.Identity
	persistence.TimeStamped
	persistence.TimeFramed
	persistence.StatusModel
	Name string `gorm:"column:name;size:200" json:"name"`
}

// StatusChoices returns the event states.
func (Event) StatusChoices() choice.Choices { return eventStatuses }

// Models holds the registered blog models.
type Models struct {
	Posts    *persistence.Model[Post]
	Comments *persistence.Model[Comment]
	Images   *persistence.Model[Image]
	Events   *persistence.Model[Event]
}

// Register registers every blog model with reg.
func Register(reg *persistence.Registry) (Models, error) {
	var (
		m   Models
		err error
	)
	if m.Posts, err = persistence.Register[Post](reg); err != nil {
		return Models{}, fmt.Errorf("register blog: %w", err)
	}
	if m.Comments, err = persistence.Register[Comment](reg); err != nil {
		return Models{}, fmt.Errorf("register blog: %w", err)
	}
	if m.Images, err = persistence.Register[Image](reg); err != nil {
		return Models{}, fmt.Errorf("register blog: %w", err)
	}
	if m.Events, err = persistence.Register[Event](reg); err != nil {
		return Models{}, fmt.Errorf("register blog: %w", err)
	}
	return m, nil
}
