package service

import (
	"context"
	"log/slog"
	"strings"

	"minigplus/internal/authz"
	"minigplus/internal/middleware"
	"minigplus/internal/models"
	"minigplus/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	authz       *authz.Engine
	notifier    Notifier
}

type CreateCommentInput struct {
	AuthorID uint
	PostID   uint
	// ParentID marks the comment as a reply to another comment on the post.
	ParentID *uint
	Content  string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	engine *authz.Engine,
	notifier Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		authz:       engine,
		notifier:    notifier,
	}
}

// Create attaches a comment to a post. Commenting requires the post to be
// visible to the author; commenting on a post you cannot see is denied as
// unauthorized. Replies additionally require the parent comment to live on
// the same post.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	post, err := s.visiblePost(ctx, in.AuthorID, in.PostID, "comment.create")
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, models.NewValidationError("parent comment belongs to a different post")
		}
		if parent.ParentID != nil {
			return nil, models.NewValidationError("replies cannot be nested further")
		}
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: in.AuthorID,
		ParentID: in.ParentID,
		Content:  in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "comment created",
		slog.Uint64("comment_id", uint64(comment.ID)),
		slog.Uint64("post_id", uint64(post.ID)))

	if s.notifier != nil {
		s.notifier.CommentAdded(ctx, comment)
	}
	return comment, nil
}

// ListByPost returns the post's comments, nested. Reading a thread requires
// the post to be visible to the viewer, else the read is unauthorized.
func (s *CommentService) ListByPost(ctx context.Context, viewerID, postID uint) ([]*models.Comment, error) {
	if _, err := s.visiblePost(ctx, viewerID, postID, "comment.list"); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// Delete removes a comment and its replies. Allowed for the comment's
// author, and for the post's author moderating their own post. The comment
// must live on postID; addressing it through another post is a miss.
func (s *CommentService) Delete(ctx context.Context, actorID, postID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return models.NewNotFoundError("comment", commentID)
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return err
	}
	if !s.authz.CanRemoveComment(comment, post, actorID) {
		return authz.Deny("comment.delete", "only the comment author or the post author may remove a comment")
	}
	return s.commentRepo.Delete(ctx, commentID)
}

func (s *CommentService) visiblePost(ctx context.Context, viewerID, postID uint, operation string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	visible, err := s.authz.CanSeePost(ctx, post, viewerID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, authz.Deny(operation, "you cannot interact with this post")
	}
	return post, nil
}
