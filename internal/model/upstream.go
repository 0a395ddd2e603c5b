package model

import (
	"fmt"
	"strings"
)

// Entities owned by the posts and users services, read here over their
// RPC surface. Only the fields this service consumes are declared.

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
}

// DisplayName renders the name used in notification titles and bodies.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return fmt.Sprintf("User %s", u.ID)
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Topic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Post struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	CreatedBy string  `json:"created_by"`
	Creator   *User   `json:"creator,omitempty"`
	Topics    []Topic `json:"topics"`
}

type Comment struct {
	ID        string   `json:"id"`
	PostID    string   `json:"post_id"`
	Content   string   `json:"content"`
	CreatedBy string   `json:"created_by"`
	Creator   *User    `json:"creator,omitempty"`
	ParentID  *string  `json:"parent_id,omitempty"`
	Parent    *Comment `json:"parent,omitempty"`
}

// Follow records from_uid following to_uid.
type Follow struct {
	FromUID string `json:"from_uid"`
	ToUID   string `json:"to_uid"`
}

// Subscription is a user's subscription to a topic.
type Subscription struct {
	UID     string `json:"uid"`
	TopicID string `json:"topic_id"`
}

// PostSubscription is a user's subscription to a single post's thread.
type PostSubscription struct {
	UID    string `json:"uid"`
	PostID string `json:"post_id"`
}
