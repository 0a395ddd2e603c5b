package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifyhub/internal/client"
	"notifyhub/pkg/trace"
)

func TestFindPostByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/posts/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "p1",
			"title": "Hello",
			"created_by": "author",
			"creator": {"id": "author", "first_name": "Ada", "last_name": "Lovelace"},
			"topics": [{"id": "t1", "title": "go"}]
		}`))
	}))
	defer srv.Close()

	c := client.NewPostsClient(srv.URL)
	post, err := c.FindPostByID(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "author", post.CreatedBy)
	require.NotNil(t, post.Creator)
	assert.Equal(t, "Ada Lovelace", post.Creator.DisplayName())
	require.Len(t, post.Topics, 1)
	assert.Equal(t, "go", post.Topics[0].Title)
}

func TestFindCommentByIDWithParent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/comments/c2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "c2",
			"post_id": "p1",
			"content": "Replying",
			"created_by": "commenter",
			"parent_id": "c1",
			"parent": {"id": "c1", "post_id": "p1", "created_by": "parent-owner"}
		}`))
	}))
	defer srv.Close()

	c := client.NewPostsClient(srv.URL)
	comment, err := c.FindCommentByID(context.Background(), "c2")

	require.NoError(t, err)
	require.NotNil(t, comment.Parent)
	assert.Equal(t, "parent-owner", comment.Parent.CreatedBy)
}

func TestFindSubscriptionsByTopicID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/topics/t1/subscriptions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"uid": "u1", "topic_id": "t1"}, {"uid": "u2", "topic_id": "t1"}]}`))
	}))
	defer srv.Close()

	c := client.NewPostsClient(srv.URL)
	subs, err := c.FindSubscriptionsByTopicID(context.Background(), "t1")

	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "u1", subs[0].UID)
}

func TestUpstreamErrorStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.NewPostsClient(srv.URL)
	_, err := c.FindPostByID(context.Background(), "p1")

	assert.Error(t, err)
}

func TestRepeatedFailuresTripTheBreaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := client.NewPostsClient(srv.URL)
	for i := 0; i < 3; i++ {
		_, err := c.FindPostByID(context.Background(), "p1")
		require.Error(t, err)
	}

	_, err := c.FindPostByID(context.Background(), "p1")
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestTraceHeaderPropagates(t *testing.T) {
	var gotTrace string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTrace = r.Header.Get(trace.HeaderName())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "u1"}`))
	}))
	defer srv.Close()

	c := client.NewUsersClient(srv.URL)
	ctx := trace.WithContext(context.Background(), "trace-123")
	_, err := c.FindUserByID(ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, "trace-123", gotTrace)
}

func TestFindFollowers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/users/author/followers", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"from_uid": "follower", "to_uid": "author"}]}`))
	}))
	defer srv.Close()

	c := client.NewUsersClient(srv.URL)
	follows, err := c.FindFollowers(context.Background(), "author")

	require.NoError(t, err)
	require.Len(t, follows, 1)
	assert.Equal(t, "follower", follows[0].FromUID)
}
