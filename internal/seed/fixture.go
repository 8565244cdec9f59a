package seed

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"minigplus/internal/models"
)

// Fixture is a declarative seed file. Identities are referenced by handle,
// posts by their zero-based index in the file. Useful for demos and
// reproducing exact states in bug reports.
type Fixture struct {
	Identities []FixtureIdentity `yaml:"identities"`
	Circles    []FixtureCircle   `yaml:"circles"`
	Posts      []FixturePost     `yaml:"posts"`
	Comments   []FixtureComment  `yaml:"comments"`
}

type FixtureIdentity struct {
	Handle   string `yaml:"handle"`
	Password string `yaml:"password"`
}

type FixtureCircle struct {
	Owner   string   `yaml:"owner"`
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

type FixturePost struct {
	Author  string   `yaml:"author"`
	Content string   `yaml:"content"`
	Public  bool     `yaml:"public"`
	Circles []string `yaml:"circles"`
}

type FixtureComment struct {
	Author  string `yaml:"author"`
	Post    int    `yaml:"post"`
	Content string `yaml:"content"`
	ReplyTo *int   `yaml:"reply_to"`
}

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Apply persists the fixture. References must resolve: an unknown handle,
// circle name, or comment index aborts with an error rather than seeding a
// partial state.
func (f *Fixture) Apply(db *gorm.DB) error {
	identityByHandle := map[string]*models.Identity{}
	for _, fi := range f.Identities {
		password := fi.Password
		if password == "" {
			password = "password123"
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		identity := &models.Identity{Handle: fi.Handle, PasswordHash: string(hashed)}
		if err := db.Create(identity).Error; err != nil {
			return fmt.Errorf("identity %q: %w", fi.Handle, err)
		}
		identityByHandle[fi.Handle] = identity
	}

	resolve := func(handle string) (*models.Identity, error) {
		identity, ok := identityByHandle[handle]
		if !ok {
			return nil, fmt.Errorf("unknown handle %q", handle)
		}
		return identity, nil
	}

	// circles keyed by "owner/name" so the same name may recur across owners
	circleByRef := map[string]*models.Circle{}
	for _, fc := range f.Circles {
		owner, err := resolve(fc.Owner)
		if err != nil {
			return fmt.Errorf("circle %q: %w", fc.Name, err)
		}
		circle := &models.Circle{OwnerID: owner.ID, Name: fc.Name}
		if err := db.Create(circle).Error; err != nil {
			return fmt.Errorf("circle %q: %w", fc.Name, err)
		}
		circleByRef[fc.Owner+"/"+fc.Name] = circle

		for _, memberHandle := range fc.Members {
			member, err := resolve(memberHandle)
			if err != nil {
				return fmt.Errorf("circle %q member: %w", fc.Name, err)
			}
			link := models.CircleMember{CircleID: circle.ID, UserID: member.ID}
			if err := db.Create(&link).Error; err != nil {
				return err
			}
		}
	}

	posts := make([]*models.Post, 0, len(f.Posts))
	for i, fp := range f.Posts {
		author, err := resolve(fp.Author)
		if err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}
		post := &models.Post{AuthorID: author.ID, Content: fp.Content, IsPublic: fp.Public}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}
		for _, name := range fp.Circles {
			circle, ok := circleByRef[fp.Author+"/"+name]
			if !ok {
				return fmt.Errorf("post %d: author %q owns no circle %q", i, fp.Author, name)
			}
			link := models.PostCircle{PostID: post.ID, CircleID: circle.ID}
			if err := db.Create(&link).Error; err != nil {
				return err
			}
		}
		posts = append(posts, post)
	}

	comments := make([]*models.Comment, 0, len(f.Comments))
	for i, fc := range f.Comments {
		author, err := resolve(fc.Author)
		if err != nil {
			return fmt.Errorf("comment %d: %w", i, err)
		}
		if fc.Post < 0 || fc.Post >= len(posts) {
			return fmt.Errorf("comment %d: post index %d out of range", i, fc.Post)
		}
		comment := &models.Comment{
			PostID:   posts[fc.Post].ID,
			AuthorID: author.ID,
			Content:  fc.Content,
		}
		if fc.ReplyTo != nil {
			if *fc.ReplyTo < 0 || *fc.ReplyTo >= len(comments) {
				return fmt.Errorf("comment %d: reply_to index %d out of range", i, *fc.ReplyTo)
			}
			comment.ParentID = &comments[*fc.ReplyTo].ID
		}
		if err := db.Create(comment).Error; err != nil {
			return fmt.Errorf("comment %d: %w", i, err)
		}
		comments = append(comments, comment)
	}

	return nil
}
