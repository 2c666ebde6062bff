package slack

import "context"

// Service provides the Slack Web API calls used by the ticket lookup bot
type Service interface {
	// GetUserInfo retrieves user information for the given user ID (cached)
	GetUserInfo(ctx context.Context, userID string) (*User, error)

	// PostMessage posts a mrkdwn message, in a thread when threadTS is not empty, and returns the
	// message timestamp
	PostMessage(ctx context.Context, channelID, threadTS, text string) (string, error)
}

// User represents a Slack user
type User struct {
	ID       string
	Name     string
	RealName string
	Email    string
}
