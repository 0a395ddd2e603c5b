// Package resolver computes the recipient set of a domain event. It is
// pure: callers fetch the related entities and pass them in; the resolver
// returns a deduplicated, actor-excluded list.
package resolver

import "notifyhub/internal/model"

// Role records which path reached a recipient. When a user is reachable
// via several paths the highest-priority role wins, so handlers can word
// the notification for the closest relationship.
type Role int

const (
	RolePostOwner Role = iota
	RoleReplyParent
	RolePostSubscriber
	RoleFollower
	RoleTopicSubscriber
)

type Recipient struct {
	UID  string
	Role Role
}

// set accumulates recipients, ignoring the actor and any UID already seen.
type set struct {
	actor string
	seen  map[string]struct{}
	out   []Recipient
}

func newSet(actor string) *set {
	return &set{actor: actor, seen: make(map[string]struct{})}
}

func (s *set) add(uid string, role Role) {
	if uid == "" || uid == s.actor {
		return
	}
	if _, ok := s.seen[uid]; ok {
		return
	}
	s.seen[uid] = struct{}{}
	s.out = append(s.out, Recipient{UID: uid, Role: role})
}

// UIDs flattens recipients to their IDs.
func UIDs(recipients []Recipient) []string {
	uids := make([]string, 0, len(recipients))
	for _, r := range recipients {
		uids = append(uids, r.UID)
	}
	return uids
}

// PostCreated resolves recipients of a new post: followers of the author
// and subscribers of every topic on the post, minus the author.
func PostCreated(post *model.Post, followers []model.Follow, topicSubs [][]model.Subscription) []Recipient {
	s := newSet(post.CreatedBy)

	for _, f := range followers {
		s.add(f.FromUID, RoleFollower)
	}
	for _, subs := range topicSubs {
		for _, sub := range subs {
			s.add(sub.UID, RoleTopicSubscriber)
		}
	}

	return s.out
}

// CommentCreated resolves recipients of a new comment: the post owner,
// the parent comment's owner when this is a reply, and the post's thread
// subscribers, always minus the commenter. Role priority is owner, then
// reply parent, then subscriber.
func CommentCreated(post *model.Post, comment *model.Comment, postSubs []model.PostSubscription) []Recipient {
	s := newSet(comment.CreatedBy)

	s.add(post.CreatedBy, RolePostOwner)
	if comment.Parent != nil {
		s.add(comment.Parent.CreatedBy, RoleReplyParent)
	}
	for _, sub := range postSubs {
		if sub.UID == post.CreatedBy {
			continue
		}
		s.add(sub.UID, RolePostSubscriber)
	}

	return s.out
}

// FollowTarget resolves the single recipient of a follow or unfollow.
// A self-follow resolves to nobody.
func FollowTarget(fromUID, toUID string) []Recipient {
	s := newSet(fromUID)
	s.add(toUID, RoleFollower)
	return s.out
}
