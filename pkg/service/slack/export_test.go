package slack

import "github.com/slack-go/slack"

// NewWithAPIURL creates a Service calling a fake Slack API server
func NewWithAPIURL(token, apiURL string, opts ...Option) (Service, error) {
	return newClient(token, []slack.Option{slack.OptionAPIURL(apiURL)}, opts...)
}
