package model

import "time"

// Notification is one durable notification row for one recipient. Fan-out
// creates one row per recipient of an event; rows only ever transition
// from unread to read.
type Notification struct {
	ID          string         `json:"id"`
	Idx         int64          `json:"idx"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Read        bool           `json:"read"`
	MetaData    map[string]any `json:"meta_data,omitempty"`
	RecipientID string         `json:"recipient_id"`
	CreatedBy   *string        `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Creator is populated only under the with-creator fetch profile.
	Creator *User `json:"creator,omitempty"`
}

// FetchProfile enumerates which relations FindAll/FindOne load.
type FetchProfile int

const (
	// NotificationBare loads the row only.
	NotificationBare FetchProfile = iota
	// NotificationWithCreator joins the creator's public profile.
	NotificationWithCreator
)
