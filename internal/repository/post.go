package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"minigplus/internal/models"
)

// visibleToClause matches posts the viewer may see: their own, public ones,
// and ones shared to a circle the viewer belongs to. Order matters: the
// author check and public check avoid the membership subquery entirely.
const visibleToClause = `posts.author_id = ? OR posts.is_public = ? OR EXISTS (
	SELECT 1 FROM post_circles pc
	JOIN circle_members cm ON cm.circle_id = pc.circle_id
	WHERE pc.post_id = posts.id AND cm.user_id = ?
)`

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	// Create stores the post and its circle links in one transaction.
	Create(ctx context.Context, post *models.Post, circleIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// ListVisible returns posts the viewer is allowed to see, newest first.
	// A non-nil authorID restricts the result to that author's posts.
	ListVisible(ctx context.Context, viewerID uint, authorID *uint, limit, offset int) ([]*models.Post, error)
	CircleIDs(ctx context.Context, postID uint) ([]uint, error)
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, circleIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, cid := range circleIDs {
			link := models.PostCircle{PostID: post.ID, CircleID: cid}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	post.CircleIDs = circleIDs
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count").
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, models.NewInternalError(err)
	}

	ids, err := r.CircleIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	post.CircleIDs = ids
	return &post, nil
}

func (r *postRepository) ListVisible(ctx context.Context, viewerID uint, authorID *uint, limit, offset int) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count").
		Where(visibleToClause, viewerID, true, viewerID)
	if authorID != nil {
		q = q.Where("posts.author_id = ?", *authorID)
	}

	var posts []*models.Post
	err := q.Preload("Author").
		Order("posts.created_at DESC, posts.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := r.loadCircleIDs(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) CircleIDs(ctx context.Context, postID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.PostCircle{}).
		Where("post_id = ?", postID).
		Pluck("circle_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// loadCircleIDs fills CircleIDs for a page of posts with a single query.
func (r *postRepository) loadCircleIDs(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	postIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	var links []models.PostCircle
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Find(&links).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	byPost := make(map[uint][]uint, len(posts))
	for _, l := range links {
		byPost[l.PostID] = append(byPost[l.PostID], l.CircleID)
	}
	for _, p := range posts {
		p.CircleIDs = byPost[p.ID]
	}
	return nil
}

// Delete removes the post together with its comments and circle links.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostCircle{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("post", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
