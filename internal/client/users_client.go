package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"notifyhub/internal/model"
	"notifyhub/pkg/circuitbreaker"
)

// UsersClient issues read-only RPCs to the users service.
type UsersClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewUsersClient(baseURL string) *UsersClient {
	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	return &UsersClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		cb: circuitbreaker.NewCircuitBreaker(cbConfig),
	}
}

func (c *UsersClient) FindUserByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := c.cb.Execute(func() error {
		return doGet(ctx, c.httpClient, c.baseURL+fmt.Sprintf("/internal/users/%s", userID), "/internal/users", &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindFollowers returns the follow edges pointing at userID's followers
// (from_uid is the follower).
func (c *UsersClient) FindFollowers(ctx context.Context, userID string) ([]model.Follow, error) {
	var resp struct {
		Data []model.Follow `json:"data"`
	}
	err := c.cb.Execute(func() error {
		return doGet(ctx, c.httpClient, c.baseURL+fmt.Sprintf("/internal/users/%s/followers", userID), "/internal/users/followers", &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}
