// Package notifier orchestrates the fan-out of one domain event: fetch
// related entities, resolve recipients, persist notification rows, then
// signal the realtime and push channels. Persistence and both delivery
// channels are independently best-effort; nothing here propagates an
// error back to the event source.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"notifyhub/internal/delivery"
	"notifyhub/internal/model"
	"notifyhub/internal/resolver"
	"notifyhub/pkg/metrics"
)

// Store persists notification rows.
type Store interface {
	Insert(ctx context.Context, n *model.Notification) (*model.Notification, error)
	InsertMany(ctx context.Context, ns []*model.Notification) error
}

// Pusher is the push delivery channel.
type Pusher interface {
	Push(ctx context.Context, uids []string, payload delivery.Payload)
}

// Realtime is the pub/sub delivery channel.
type Realtime interface {
	NotifyCreated(ctx context.Context, uids []string)
	PublishComment(ctx context.Context, event, postID, commentID, creatorID string)
}

// PostsReader is the read surface of the posts service.
type PostsReader interface {
	FindPostByID(ctx context.Context, postID string) (*model.Post, error)
	FindCommentByID(ctx context.Context, commentID string) (*model.Comment, error)
	FindSubscriptionsByTopicID(ctx context.Context, topicID string) ([]model.Subscription, error)
	FindPostSubscriptions(ctx context.Context, postID string) ([]model.PostSubscription, error)
}

// UsersReader is the read surface of the users service.
type UsersReader interface {
	FindUserByID(ctx context.Context, userID string) (*model.User, error)
	FindFollowers(ctx context.Context, userID string) ([]model.Follow, error)
}

// EventDeduper suppresses redelivered events.
type EventDeduper interface {
	AcquireOnce(ctx context.Context, handler, entityID string) bool
}

type Notifier struct {
	store         Store
	push          Pusher
	realtime      Realtime
	posts         PostsReader
	users         UsersReader
	deduper       EventDeduper
	clientBaseURL string
	logger        *zap.Logger
}

func NewNotifier(
	store Store,
	push Pusher,
	realtime Realtime,
	posts PostsReader,
	users UsersReader,
	deduper EventDeduper,
	clientBaseURL string,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		store:         store,
		push:          push,
		realtime:      realtime,
		posts:         posts,
		users:         users,
		deduper:       deduper,
		clientBaseURL: clientBaseURL,
		logger:        logger,
	}
}

// PostCreated notifies the author's followers and the subscribers of the
// post's topics.
func (n *Notifier) PostCreated(ctx context.Context, postID string) {
	if !n.deduper.AcquireOnce(ctx, "post.created", postID) {
		return
	}

	post, err := n.posts.FindPostByID(ctx, postID)
	if err != nil {
		n.logger.Error("Failed to fetch post, skipping fan-out",
			zap.String("post_id", postID),
			zap.Error(err),
		)
		return
	}

	topicSubs := make([][]model.Subscription, 0, len(post.Topics))
	for _, topic := range post.Topics {
		subs, err := n.posts.FindSubscriptionsByTopicID(ctx, topic.ID)
		if err != nil {
			n.logger.Error("Failed to fetch topic subscriptions, skipping fan-out",
				zap.String("post_id", postID),
				zap.String("topic_id", topic.ID),
				zap.Error(err),
			)
			return
		}
		topicSubs = append(topicSubs, subs)
	}

	followers, err := n.users.FindFollowers(ctx, post.CreatedBy)
	if err != nil {
		n.logger.Error("Failed to fetch followers, skipping fan-out",
			zap.String("post_id", postID),
			zap.Error(err),
		)
		return
	}

	recipients := resolver.PostCreated(post, followers, topicSubs)
	uids := resolver.UIDs(recipients)

	payload := delivery.Payload{
		Title:   post.Title,
		Content: fmt.Sprintf("%s created a new post%s", creatorName(post.Creator, post.CreatedBy), topicsSuffix(post.Topics)),
		MetaData: map[string]any{
			"action_url": fmt.Sprintf("%s/post/%s", n.clientBaseURL, post.ID),
		},
	}

	rows := make([]*model.Notification, 0, len(uids))
	for _, uid := range uids {
		rows = append(rows, notificationRow(uid, post.CreatedBy, payload))
	}
	n.persist(ctx, "post.created", rows)

	n.realtime.NotifyCreated(ctx, uids)
	n.push.Push(ctx, uids, payload)
}

// CommentCreated signals the post's room and notifies the post owner,
// the thread subscribers and the parent comment's owner.
func (n *Notifier) CommentCreated(ctx context.Context, postID, commentID string) {
	if !n.deduper.AcquireOnce(ctx, "comment.created", commentID) {
		return
	}

	post, err := n.posts.FindPostByID(ctx, postID)
	if err != nil {
		n.logger.Error("Failed to fetch post, skipping fan-out",
			zap.String("post_id", postID),
			zap.Error(err),
		)
		return
	}
	comment, err := n.posts.FindCommentByID(ctx, commentID)
	if err != nil {
		n.logger.Error("Failed to fetch comment, skipping fan-out",
			zap.String("comment_id", commentID),
			zap.Error(err),
		)
		return
	}
	postSubs, err := n.posts.FindPostSubscriptions(ctx, postID)
	if err != nil {
		n.logger.Error("Failed to fetch post subscriptions, skipping fan-out",
			zap.String("post_id", postID),
			zap.Error(err),
		)
		return
	}

	// Room broadcast happens regardless of who ends up notified.
	n.realtime.PublishComment(ctx, delivery.EventCommentCreated, post.ID, comment.ID, comment.CreatedBy)

	recipients := resolver.CommentCreated(post, comment, postSubs)
	commenter := creatorName(comment.Creator, comment.CreatedBy)
	meta := map[string]any{
		"action_url": fmt.Sprintf("%s/post/%s", n.clientBaseURL, post.ID),
	}

	rows := make([]*model.Notification, 0, len(recipients))
	byRole := make(map[resolver.Role][]string)
	for _, rec := range recipients {
		payload := delivery.Payload{
			Title:    commentTitle(rec.Role, commenter, post.Title),
			Content:  comment.Content,
			MetaData: meta,
		}
		rows = append(rows, notificationRow(rec.UID, comment.CreatedBy, payload))
		byRole[rec.Role] = append(byRole[rec.Role], rec.UID)
	}
	n.persist(ctx, "comment.created", rows)

	n.realtime.NotifyCreated(ctx, resolver.UIDs(recipients))

	// Push is worded per relationship, so each role group gets its own batch.
	for _, role := range []resolver.Role{resolver.RolePostOwner, resolver.RoleReplyParent, resolver.RolePostSubscriber} {
		uids := byRole[role]
		if len(uids) == 0 {
			continue
		}
		n.push.Push(ctx, uids, delivery.Payload{
			Title:    commentTitle(role, commenter, post.Title),
			Content:  comment.Content,
			MetaData: meta,
		})
	}
}

// CommentUpdated only signals the post's room; no rows are written.
func (n *Notifier) CommentUpdated(ctx context.Context, postID, commentID, userID string) {
	n.realtime.PublishComment(ctx, delivery.EventCommentUpdated, postID, commentID, userID)
}

// CommentRemoved only signals the post's room; no rows are written.
func (n *Notifier) CommentRemoved(ctx context.Context, postID, commentID, userID string) {
	n.realtime.PublishComment(ctx, delivery.EventCommentRemoved, postID, commentID, userID)
}

// UserFollowed notifies the followed user.
func (n *Notifier) UserFollowed(ctx context.Context, fromUID, toUID string) {
	n.followEvent(ctx, "user.followed", fromUID, toUID,
		"New Follower", "%s followed you.")
}

// UserUnfollowed notifies the unfollowed user.
func (n *Notifier) UserUnfollowed(ctx context.Context, fromUID, toUID string) {
	n.followEvent(ctx, "user.unfollowed", fromUID, toUID,
		"Follower is leaving", "%s unfollowed you.")
}

func (n *Notifier) followEvent(ctx context.Context, event, fromUID, toUID, title, contentFormat string) {
	if !n.deduper.AcquireOnce(ctx, event, fmt.Sprintf("%s:%s", fromUID, toUID)) {
		return
	}

	recipients := resolver.FollowTarget(fromUID, toUID)
	if len(recipients) == 0 {
		return
	}

	user, err := n.users.FindUserByID(ctx, fromUID)
	if err != nil {
		n.logger.Error("Failed to fetch user, skipping fan-out",
			zap.String("user_id", fromUID),
			zap.Error(err),
		)
		return
	}

	uids := resolver.UIDs(recipients)
	payload := delivery.Payload{
		Title:   title,
		Content: fmt.Sprintf(contentFormat, user.DisplayName()),
		MetaData: map[string]any{
			"action_url": fmt.Sprintf("%s/profile/%s", n.clientBaseURL, user.ID),
		},
	}

	if _, err := n.store.Insert(ctx, notificationRow(toUID, fromUID, payload)); err != nil {
		n.logger.Error("Failed to persist notification",
			zap.String("event", event),
			zap.Error(err),
		)
	} else {
		metrics.AddNotificationsCreated(event, 1)
	}

	n.realtime.NotifyCreated(ctx, uids)
	n.push.Push(ctx, uids, payload)
}

// persist bulk-writes the rows; a store failure must not block the
// delivery channels, so it only logs.
func (n *Notifier) persist(ctx context.Context, event string, rows []*model.Notification) {
	if len(rows) == 0 {
		return
	}
	if err := n.store.InsertMany(ctx, rows); err != nil {
		n.logger.Error("Failed to persist notifications",
			zap.String("event", event),
			zap.Int("count", len(rows)),
			zap.Error(err),
		)
		return
	}
	metrics.AddNotificationsCreated(event, len(rows))
}

func notificationRow(recipientID, actorID string, payload delivery.Payload) *model.Notification {
	createdBy := actorID
	return &model.Notification{
		Title:       payload.Title,
		Content:     payload.Content,
		MetaData:    payload.MetaData,
		RecipientID: recipientID,
		CreatedBy:   &createdBy,
	}
}

func commentTitle(role resolver.Role, commenter, postTitle string) string {
	switch role {
	case resolver.RolePostOwner:
		return fmt.Sprintf("%s commented to your post", commenter)
	case resolver.RoleReplyParent:
		return fmt.Sprintf("%s replied to your comment", commenter)
	default:
		return fmt.Sprintf("%s commented to '%s'", commenter, postTitle)
	}
}

func creatorName(creator *model.User, fallbackID string) string {
	if creator == nil {
		creator = &model.User{ID: fallbackID}
	}
	return creator.DisplayName()
}

func topicsSuffix(topics []model.Topic) string {
	if len(topics) == 0 {
		return ""
	}
	titles := make([]string, 0, len(topics))
	for _, t := range topics {
		titles = append(titles, fmt.Sprintf("%q", t.Title))
	}
	return " in topics:" + strings.Join(titles, ", ") + "."
}
