package model

import "time"

// Platform identifies a push-capable client type. One live token per
// platform per user; re-registering overwrites.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformWeb, PlatformAndroid, PlatformIOS:
		return true
	}
	return false
}

// FcmToken holds the registered device tokens for one user, one slot per
// platform. A nil slot means no registration for that platform.
type FcmToken struct {
	UID       string    `json:"uid"`
	Web       *string   `json:"web,omitempty"`
	Android   *string   `json:"android,omitempty"`
	IOS       *string   `json:"ios,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tokens returns the non-nil platform tokens.
func (t *FcmToken) Tokens() []string {
	var out []string
	for _, tok := range []*string{t.Web, t.Android, t.IOS} {
		if tok != nil && *tok != "" {
			out = append(out, *tok)
		}
	}
	return out
}
