package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"notifyhub/internal/model"
)

func strptr(s string) *string { return &s }

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user model.User
		want string
	}{
		{"full name", model.User{ID: "u1", FirstName: "Alice", LastName: "Liddell"}, "Alice Liddell"},
		{"first only", model.User{ID: "u1", FirstName: "Alice"}, "Alice"},
		{"last only", model.User{ID: "u1", LastName: "Liddell"}, "Liddell"},
		{"no name", model.User{ID: "u1"}, "User u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestFcmTokenFlattening(t *testing.T) {
	tok := model.FcmToken{
		UID:     "u1",
		Web:     strptr("web-1"),
		Android: strptr(""),
		IOS:     strptr("ios-1"),
	}

	assert.Equal(t, []string{"web-1", "ios-1"}, tok.Tokens())
	assert.Empty(t, (&model.FcmToken{UID: "u2"}).Tokens())
}

func TestPlatformValidation(t *testing.T) {
	assert.True(t, model.PlatformWeb.Valid())
	assert.True(t, model.PlatformAndroid.Valid())
	assert.True(t, model.PlatformIOS.Valid())
	assert.False(t, model.Platform("blackberry").Valid())
	assert.False(t, model.Platform("").Valid())
}
