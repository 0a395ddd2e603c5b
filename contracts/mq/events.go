package mq

// Routing keys for the domain events this service consumes.
const (
	RoutingKeyPostCreated    = "post.created"
	RoutingKeyCommentCreated = "comment.created"
	RoutingKeyCommentUpdated = "comment.updated"
	RoutingKeyCommentRemoved = "comment.removed"
	RoutingKeyUserFollowed   = "user.followed"
	RoutingKeyUserUnfollowed = "user.unfollowed"
)

type PostCreatedPayload struct {
	PostID string `json:"post_id"`
}

type CommentCreatedPayload struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
}

// CommentChangedPayload covers comment.updated and comment.removed. These
// only produce a room signal, so the acting user rides along instead of
// being refetched.
type CommentChangedPayload struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
}

// FollowPayload covers user.followed and user.unfollowed.
type FollowPayload struct {
	FromUID string `json:"from_uid"`
	ToUID   string `json:"to_uid"`
}
