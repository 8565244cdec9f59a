package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"minigplus/internal/authz"
	"minigplus/internal/middleware"
	"minigplus/internal/models"
	"minigplus/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxContentLen   = 50000
)

// Notifier pushes domain events to connected feed clients. Implementations
// must be non-blocking; delivery is best-effort.
type Notifier interface {
	PostCreated(ctx context.Context, post *models.Post)
	CommentAdded(ctx context.Context, comment *models.Comment)
}

type PostService struct {
	postRepo   repository.PostRepository
	circleRepo repository.CircleRepository
	authz      *authz.Engine
	notifier   Notifier
}

type CreatePostInput struct {
	AuthorID  uint
	Content   string
	IsPublic  bool
	CircleIDs []uint
}

type ListPostsInput struct {
	ViewerID uint
	AuthorID *uint
	Limit    int
	Offset   int
}

func NewPostService(
	postRepo repository.PostRepository,
	circleRepo repository.CircleRepository,
	engine *authz.Engine,
	notifier Notifier,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		circleRepo: circleRepo,
		authz:      engine,
		notifier:   notifier,
	}
}

// Create stores a new post. Every referenced circle must exist and be owned
// by the author, otherwise the whole create is rejected; a post is never
// stored with a partial audience. A public post may still carry circle
// references, and a post with neither flag nor circles is implicitly
// private.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	circleIDs := dedupeIDs(in.CircleIDs)
	if len(circleIDs) > 0 {
		owned, err := s.circleRepo.OwnedIDs(ctx, in.AuthorID, circleIDs)
		if err != nil {
			return nil, err
		}
		ownedSet := make(map[uint]bool, len(owned))
		for _, id := range owned {
			ownedSet[id] = true
		}
		for _, id := range circleIDs {
			if !ownedSet[id] {
				return nil, models.NewInvalidCircleRefError(id)
			}
		}
	}

	post := &models.Post{
		AuthorID: in.AuthorID,
		Content:  in.Content,
		IsPublic: in.IsPublic,
	}
	if err := s.postRepo.Create(ctx, post, circleIDs); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "post created",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Bool("is_public", post.IsPublic),
		slog.Int("circles", len(circleIDs)))

	if s.notifier != nil {
		s.notifier.PostCreated(ctx, post)
	}
	return post, nil
}

// Get returns the post if the viewer may see it. An existing post the viewer
// cannot see is reported as not found; visibility must not leak existence.
func (s *PostService) Get(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	visible, err := s.authz.CanSeePost(ctx, post, viewerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		logPostConcealed(ctx, "post.get", postID, viewerID)
		return nil, models.NewNotFoundError("post", postID)
	}

	if err := s.labelSharingScope(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}

// ListVisible returns the viewer's feed: visible posts newest first, ties in
// insertion order. Filtering happens in the store; invisible posts never
// reach this process.
func (s *PostService) ListVisible(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	posts, err := s.postRepo.ListVisible(ctx, in.ViewerID, in.AuthorID, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if err := s.labelSharingScope(ctx, p, in.ViewerID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// Delete removes the post and its comments. Only the author may delete.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !s.authz.CanDeletePost(post, actorID) {
		return authz.Deny("post.delete", "only the author may delete a post")
	}
	return s.postRepo.Delete(ctx, postID)
}

// labelSharingScope fills the display label for a post's audience. Circle
// names are shown only to the author; other viewers see a generic label so
// audience composition stays private.
func (s *PostService) labelSharingScope(ctx context.Context, post *models.Post, viewerID uint) error {
	switch {
	case post.IsPublic:
		post.SharingScope = "(public)"
	case len(post.CircleIDs) == 0:
		post.SharingScope = "(private)"
	case viewerID != post.AuthorID:
		post.SharingScope = "(circles)"
	default:
		owned, err := s.circleRepo.ListByOwner(ctx, post.AuthorID)
		if err != nil {
			return err
		}
		names := make(map[uint]string, len(owned))
		for _, c := range owned {
			names[c.ID] = c.Name
		}
		labels := make([]string, 0, len(post.CircleIDs))
		for _, id := range post.CircleIDs {
			if name, ok := names[id]; ok {
				labels = append(labels, name)
			}
		}
		sort.Strings(labels)
		post.SharingScope = strings.Join(labels, ", ")
	}
	return nil
}

func logPostConcealed(ctx context.Context, operation string, postID, viewerID uint) {
	middleware.Logger.WarnContext(ctx, "post hidden from viewer",
		slog.String("operation", operation),
		slog.Uint64("post_id", uint64(postID)),
		slog.Uint64("viewer_id", uint64(viewerID)))
}

func dedupeIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
