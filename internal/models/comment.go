package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is content attached to a post. A comment with a non-nil ParentID
// is a nested reply to another comment on the same post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	AuthorID  uint           `gorm:"not null" json:"author_id"`
	Author    *Identity      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	Content   string         `gorm:"not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Replies is populated by the repository when listing a post's comments.
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
