package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"notifyhub/internal/model"
	"notifyhub/pkg/circuitbreaker"
	"notifyhub/pkg/metrics"
	"notifyhub/pkg/trace"
)

// PostsClient issues read-only RPCs to the posts service. Calls carry a
// bounded timeout; a slow upstream fails the call rather than stalling
// the consumer.
type PostsClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewPostsClient(baseURL string) *PostsClient {
	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	return &PostsClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		cb: circuitbreaker.NewCircuitBreaker(cbConfig),
	}
}

// FindPostByID fetches a post with its topics and author.
func (c *PostsClient) FindPostByID(ctx context.Context, postID string) (*model.Post, error) {
	var post model.Post
	err := c.get(ctx, fmt.Sprintf("/internal/posts/%s", postID), "/internal/posts", &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindCommentByID fetches a comment with its parent and creator.
func (c *PostsClient) FindCommentByID(ctx context.Context, commentID string) (*model.Comment, error) {
	var comment model.Comment
	err := c.get(ctx, fmt.Sprintf("/internal/comments/%s", commentID), "/internal/comments", &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindSubscriptionsByTopicID fetches a topic's subscriber list.
func (c *PostsClient) FindSubscriptionsByTopicID(ctx context.Context, topicID string) ([]model.Subscription, error) {
	var resp struct {
		Data []model.Subscription `json:"data"`
	}
	err := c.get(ctx, fmt.Sprintf("/internal/topics/%s/subscriptions", topicID), "/internal/topics/subscriptions", &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// FindPostSubscriptions fetches a post's thread subscribers.
func (c *PostsClient) FindPostSubscriptions(ctx context.Context, postID string) ([]model.PostSubscription, error) {
	var resp struct {
		Data []model.PostSubscription `json:"data"`
	}
	err := c.get(ctx, fmt.Sprintf("/internal/posts/%s/subscriptions", postID), "/internal/posts/subscriptions", &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *PostsClient) get(ctx context.Context, path, endpoint string, out any) error {
	return c.cb.Execute(func() error {
		return doGet(ctx, c.httpClient, c.baseURL+path, endpoint, out)
	})
}

// doGet is shared by both upstream clients.
func doGet(ctx context.Context, httpClient *http.Client, url, endpoint string, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set(trace.HeaderName(), traceID)
	}

	resp, err := httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		metrics.RecordUpstreamCallLatency(endpoint, "error", latency)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		status := fmt.Sprintf("%d", resp.StatusCode)
		metrics.RecordUpstreamCallLatency(endpoint, status, latency)
		return fmt.Errorf("upstream %s returned %d", endpoint, resp.StatusCode)
	}

	metrics.RecordUpstreamCallLatency(endpoint, "success", latency)
	return json.NewDecoder(resp.Body).Decode(out)
}
