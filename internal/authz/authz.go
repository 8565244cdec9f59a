// Package authz implements the visibility and authorization decisions for
// posts, comments, and circles: "can actor A perform operation O on entity E".
// Every mutating or listing operation consults it before touching state, and
// decisions are always evaluated against freshly loaded records.
package authz

import (
	"context"

	"minigplus/internal/models"
	"minigplus/internal/observability"
)

// MembershipChecker reports whether an identity belongs to at least one of
// the given circles. Injected so the engine stays free of storage concerns.
type MembershipChecker func(ctx context.Context, userID uint, circleIDs []uint) (bool, error)

// Engine makes authorization decisions over loaded entity records.
type Engine struct {
	isMemberOfAny MembershipChecker
}

// NewEngine creates an Engine backed by the given membership checker.
func NewEngine(isMemberOfAny MembershipChecker) *Engine {
	return &Engine{isMemberOfAny: isMemberOfAny}
}

// CanSeePost decides post visibility: the actor is the author, or the post
// is public, or the actor belongs to at least one circle the post is shared
// with. The checks short-circuit in that order; membership is the only one
// that touches the store.
func (e *Engine) CanSeePost(ctx context.Context, post *models.Post, actorID uint) (bool, error) {
	if actorID == post.AuthorID {
		return true, nil
	}
	if post.IsPublic {
		return true, nil
	}
	if len(post.CircleIDs) == 0 || e.isMemberOfAny == nil {
		return false, nil
	}
	return e.isMemberOfAny(ctx, actorID, post.CircleIDs)
}

// CanDeletePost allows only the post's author.
func (e *Engine) CanDeletePost(post *models.Post, actorID uint) bool {
	return actorID == post.AuthorID
}

// CanManageCircle allows only the circle's owner to toggle members or
// delete the circle.
func (e *Engine) CanManageCircle(circle *models.Circle, actorID uint) bool {
	return actorID == circle.OwnerID
}

// CanRemoveComment allows the comment's author or the parent post's author;
// post authors hold moderation rights over comments on their own posts.
func (e *Engine) CanRemoveComment(comment *models.Comment, post *models.Post, actorID uint) bool {
	return actorID == comment.AuthorID || actorID == post.AuthorID
}

// CanDeleteIdentity allows identities to delete only themselves.
func (e *Engine) CanDeleteIdentity(actorID, targetID uint) bool {
	return actorID == targetID
}

// Deny records a denied decision for the given operation and returns an
// Unauthorized error with the given message.
func Deny(operation, message string) error {
	observability.AuthzDenialsTotal.WithLabelValues(operation).Inc()
	return models.NewUnauthorizedError(message)
}
