// Package seed provides database seeding utilities for development and
// testing. It generates a small social mesh: identities, circles with
// members, posts across all visibility scopes, and threaded comments.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"minigplus/internal/models"
)

// Options configuration for the seeder
type Options struct {
	NumIdentities int
	NumPosts      int
	ShouldClean   bool
}

var circleNames = []string{
	"friends", "family", "work", "neighbors", "book-club",
	"gaming", "hiking", "college", "music", "photography",
}

// Seed populates the database with test data. All seeded identities share
// the password "password123".
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d identities and %d posts...", opts.NumIdentities, opts.NumPosts)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	identities, err := createIdentities(db, opts.NumIdentities)
	if err != nil {
		return fmt.Errorf("failed to create identities: %w", err)
	}
	log.Printf("✓ %d identities created", len(identities))

	circles, err := createCircles(db, identities)
	if err != nil {
		return fmt.Errorf("failed to create circles: %w", err)
	}
	log.Printf("✓ %d circles created", len(circles))

	posts, err := createPosts(db, identities, circles, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := createComments(db, identities, posts); err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// clearData removes rows child-first so foreign keys never block. Plain
// DELETEs keep this portable between Postgres and the sqlite test driver.
func clearData(db *gorm.DB) error {
	tables := []string{"comments", "post_circles", "posts", "circle_members", "circles", "identities"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createIdentities(db *gorm.DB, count int) ([]models.Identity, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	identities := make([]models.Identity, 0, count)

	// Well-known handles first so developers can always log in.
	for _, handle := range []string{"alice", "bob", "test"} {
		if len(identities) >= count {
			break
		}
		identities = append(identities, models.Identity{
			Handle:       handle,
			PasswordHash: string(hashed),
		})
	}

	seen := map[string]bool{}
	for len(identities) < count {
		handle := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 999))
		if seen[handle] {
			continue
		}
		seen[handle] = true
		identities = append(identities, models.Identity{
			Handle:       handle,
			PasswordHash: string(hashed),
		})
	}

	for i := range identities {
		if err := db.Create(&identities[i]).Error; err != nil {
			return nil, err
		}
	}
	return identities, nil
}

// createCircles gives each identity up to three circles and fills them with
// a random sample of the other identities.
func createCircles(db *gorm.DB, identities []models.Identity) ([]models.Circle, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var circles []models.Circle
	for _, owner := range identities {
		names := r.Perm(len(circleNames))[:r.Intn(4)]
		for _, ni := range names {
			circle := models.Circle{OwnerID: owner.ID, Name: circleNames[ni]}
			if err := db.Create(&circle).Error; err != nil {
				return nil, err
			}
			circles = append(circles, circle)

			for _, member := range identities {
				if member.ID == owner.ID || r.Intn(100) >= 30 {
					continue
				}
				link := models.CircleMember{CircleID: circle.ID, UserID: member.ID}
				if err := db.Create(&link).Error; err != nil {
					return nil, err
				}
			}
		}
	}
	return circles, nil
}

func createPosts(db *gorm.DB, identities []models.Identity, circles []models.Circle, count int) ([]models.Post, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	ownedCircles := map[uint][]models.Circle{}
	for _, c := range circles {
		ownedCircles[c.OwnerID] = append(ownedCircles[c.OwnerID], c)
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := identities[r.Intn(len(identities))]
		post := models.Post{
			AuthorID: author.ID,
			Content:  gofakeit.Paragraph(1, 3, 8, "\n"),
		}

		// realistic created_at spread over the last 90 days
		back := time.Duration(r.Intn(90*24)) * time.Hour
		post.CreatedAt = time.Now().Add(-back)

		// ~40% public, ~40% circle scoped (when the author owns one),
		// the rest private drafts.
		var scopeCircles []models.Circle
		switch roll := r.Intn(100); {
		case roll < 40:
			post.IsPublic = true
		case roll < 80 && len(ownedCircles[author.ID]) > 0:
			owned := ownedCircles[author.ID]
			scopeCircles = owned[:1+r.Intn(len(owned))]
		}

		if err := db.Create(&post).Error; err != nil {
			return nil, err
		}
		for _, c := range scopeCircles {
			link := models.PostCircle{PostID: post.ID, CircleID: c.ID}
			if err := db.Create(&link).Error; err != nil {
				return nil, err
			}
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// createComments threads a few comments onto public posts, with the
// occasional single-level reply.
func createComments(db *gorm.DB, identities []models.Identity, posts []models.Post) error {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	total := 0
	for _, post := range posts {
		if !post.IsPublic {
			continue
		}
		for i := 0; i < r.Intn(4); i++ {
			comment := models.Comment{
				PostID:   post.ID,
				AuthorID: identities[r.Intn(len(identities))].ID,
				Content:  gofakeit.Sentence(8),
			}
			if err := db.Create(&comment).Error; err != nil {
				return err
			}
			total++

			if r.Intn(100) < 30 {
				reply := models.Comment{
					PostID:   post.ID,
					AuthorID: identities[r.Intn(len(identities))].ID,
					ParentID: &comment.ID,
					Content:  gofakeit.Sentence(6),
				}
				if err := db.Create(&reply).Error; err != nil {
					return err
				}
				total++
			}
		}
	}
	log.Printf("✓ %d comments created", total)
	return nil
}
