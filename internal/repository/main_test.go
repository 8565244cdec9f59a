package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"minigplus/internal/database"
	"minigplus/internal/models"
)

// newTestDB opens a fresh in-memory database with the full schema. Each
// test gets its own; no cross-test cleanup needed.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func mustIdentity(t *testing.T, db *gorm.DB, handle string) *models.Identity {
	t.Helper()
	id := &models.Identity{Handle: handle, PasswordHash: "x"}
	require.NoError(t, NewIdentityRepository(db).Create(context.Background(), id))
	return id
}

func mustCircle(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Circle {
	t.Helper()
	c := &models.Circle{OwnerID: ownerID, Name: name}
	require.NoError(t, NewCircleRepository(db).Create(context.Background(), c))
	return c
}

func mustPost(t *testing.T, db *gorm.DB, authorID uint, content string, public bool, circleIDs ...uint) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: authorID, Content: content, IsPublic: public}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p, circleIDs))
	return p
}
