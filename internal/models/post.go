package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is content authored by an identity with a visibility scope:
// public, circle-restricted, or implicitly private (not public and shared
// with no circles, visible only to its author).
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    *Identity      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	IsPublic  bool           `gorm:"not null" json:"is_public"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// CircleIDs is populated by the repository from post_circles.
	CircleIDs []uint `gorm:"-" json:"circle_ids"`
	// SharingScope is a display label ("(public)", circle names, "(private)");
	// computed by the service, not persisted.
	SharingScope string `gorm:"-" json:"sharing_scope,omitempty"`
	// CommentsCount is not persisted; computed at query time.
	CommentsCount int `gorm:"->" json:"comments_count"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// PostCircle links a post to a circle it is shared with. Rows are removed
// (not the post) when the circle is deleted.
type PostCircle struct {
	PostID   uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	CircleID uint `gorm:"primaryKey;autoIncrement:false" json:"circle_id"`
}

// TableName specifies the table name for GORM.
func (PostCircle) TableName() string {
	return "post_circles"
}
