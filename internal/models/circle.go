package models

import (
	"time"
)

// Circle is an owner-managed grouping of identities used to scope post
// visibility. Names are unique per owner; two owners may each have a
// circle called "friends".
type Circle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_circles_owner_name" json:"owner_id"`
	Owner     *Identity `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name      string    `gorm:"not null;uniqueIndex:idx_circles_owner_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Members is populated by the repository from circle_members.
	Members []Identity `gorm:"-" json:"members,omitempty"`
}

// TableName specifies the table name for GORM.
func (Circle) TableName() string {
	return "circles"
}

// CircleMember is a membership row. Membership is unilateral: owners place
// identities into circles without consent or notification.
type CircleMember struct {
	CircleID  uint      `gorm:"primaryKey;autoIncrement:false" json:"circle_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (CircleMember) TableName() string {
	return "circle_members"
}
