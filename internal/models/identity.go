// Package models contains the domain entities persisted by the application.
package models

import (
	"time"
)

// Identity is a principal in the system: a unique handle plus a password
// hash. Handles are case-sensitive and enforced unique at the database
// level. Deletion is permanent: the row is removed outright so a tombstone
// never holds the handle against a later signup.
type Identity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Handle       string    `gorm:"uniqueIndex;not null" json:"handle"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Identity) TableName() string {
	return "identities"
}
