// eventctl publishes a single domain event to the events exchange.
// It drives the pipeline end to end during local development without a
// running posts or users service producer.
//
// Usage:
//
//	eventctl post.created <post_id>
//	eventctl comment.created <post_id> <comment_id>
//	eventctl comment.updated <post_id> <comment_id> <user_id>
//	eventctl comment.removed <post_id> <comment_id> <user_id>
//	eventctl user.followed <from_uid> <to_uid>
//	eventctl user.unfollowed <from_uid> <to_uid>
package main

import (
	"fmt"
	"os"

	mqcontracts "notifyhub/contracts/mq"
	"notifyhub/internal/config"
	"notifyhub/pkg/mq"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "eventctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: eventctl <routing-key> <args...>")
	}
	routingKey := args[0]
	args = args[1:]

	payload, err := buildPayload(routingKey, args)
	if err != nil {
		return err
	}

	cfg := config.Load()

	pub, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		return err
	}
	defer pub.Close()

	if err := pub.Publish(routingKey, payload); err != nil {
		return err
	}

	fmt.Printf("published %s\n", routingKey)
	return nil
}

func buildPayload(routingKey string, args []string) (any, error) {
	switch routingKey {
	case mqcontracts.RoutingKeyPostCreated:
		if len(args) != 1 {
			return nil, fmt.Errorf("%s wants <post_id>", routingKey)
		}
		return mqcontracts.PostCreatedPayload{PostID: args[0]}, nil

	case mqcontracts.RoutingKeyCommentCreated:
		if len(args) != 2 {
			return nil, fmt.Errorf("%s wants <post_id> <comment_id>", routingKey)
		}
		return mqcontracts.CommentCreatedPayload{PostID: args[0], CommentID: args[1]}, nil

	case mqcontracts.RoutingKeyCommentUpdated, mqcontracts.RoutingKeyCommentRemoved:
		if len(args) != 3 {
			return nil, fmt.Errorf("%s wants <post_id> <comment_id> <user_id>", routingKey)
		}
		return mqcontracts.CommentChangedPayload{PostID: args[0], CommentID: args[1], UserID: args[2]}, nil

	case mqcontracts.RoutingKeyUserFollowed, mqcontracts.RoutingKeyUserUnfollowed:
		if len(args) != 2 {
			return nil, fmt.Errorf("%s wants <from_uid> <to_uid>", routingKey)
		}
		return mqcontracts.FollowPayload{FromUID: args[0], ToUID: args[1]}, nil
	}

	return nil, fmt.Errorf("unknown routing key %q", routingKey)
}
