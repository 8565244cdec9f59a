package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"

	"minigplus/internal/models"
	"minigplus/internal/observability"
	"minigplus/internal/repository"
)

const (
	userChannelPrefix = "feed:user:"
	broadcastChannel  = "feed:broadcast"
)

// Event is the wire format for feed events.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// FeedNotifier publishes feed events into Redis channels. Recipients are
// resolved against the same visibility rules that govern reads: a
// circle-scoped post event goes only to the circles' members, never to
// everyone.
type FeedNotifier struct {
	rdb     *redis.Client
	circles repository.CircleRepository
	posts   repository.PostRepository
}

// NewFeedNotifier creates a FeedNotifier using the provided Redis client.
// A nil client disables publishing.
func NewFeedNotifier(rdb *redis.Client, circles repository.CircleRepository, posts repository.PostRepository) *FeedNotifier {
	return &FeedNotifier{rdb: rdb, circles: circles, posts: posts}
}

// PostCreated fans out a new-post event to everyone allowed to see it.
// Delivery is asynchronous and best-effort; the post is already committed.
func (n *FeedNotifier) PostCreated(ctx context.Context, post *models.Post) {
	if n.rdb == nil {
		return
	}
	observability.FeedEventsTotal.WithLabelValues("post.created").Inc()

	go func(ctx context.Context) {
		payload, err := json.Marshal(Event{Type: "post.created", Payload: post})
		if err != nil {
			log.Printf("marshal post event: %v", err)
			return
		}

		if post.IsPublic {
			if err := n.rdb.Publish(ctx, broadcastChannel, payload).Err(); err != nil {
				log.Printf("publish post event: %v", err)
			}
			return
		}

		recipients := map[uint]struct{}{post.AuthorID: {}}
		for _, circleID := range post.CircleIDs {
			ids, err := n.circles.MemberIDs(ctx, circleID)
			if err != nil {
				log.Printf("resolve feed recipients: %v", err)
				continue
			}
			for _, id := range ids {
				recipients[id] = struct{}{}
			}
		}
		for id := range recipients {
			if err := n.rdb.Publish(ctx, UserChannel(id), payload).Err(); err != nil {
				log.Printf("publish post event: %v", err)
			}
		}
	}(context.WithoutCancel(ctx))
}

// CommentAdded notifies the post's author about a new comment on their post.
// Self-comments produce no event.
func (n *FeedNotifier) CommentAdded(ctx context.Context, comment *models.Comment) {
	if n.rdb == nil {
		return
	}
	observability.FeedEventsTotal.WithLabelValues("comment.added").Inc()

	go func(ctx context.Context) {
		post, err := n.posts.GetByID(ctx, comment.PostID)
		if err != nil {
			log.Printf("resolve commented post: %v", err)
			return
		}
		if post.AuthorID == comment.AuthorID {
			return
		}

		payload, err := json.Marshal(Event{Type: "comment.added", Payload: comment})
		if err != nil {
			log.Printf("marshal comment event: %v", err)
			return
		}
		if err := n.rdb.Publish(ctx, UserChannel(post.AuthorID), payload).Err(); err != nil {
			log.Printf("publish comment event: %v", err)
		}
	}(context.WithoutCancel(ctx))
}

// StartSubscriber subscribes to the feed channels and calls onMessage for
// each incoming message. onMessage receives channel and payload.
func (n *FeedNotifier) StartSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in feed subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user's feed.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}
