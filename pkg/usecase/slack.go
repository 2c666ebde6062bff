package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	slacksvc "github.com/secmon-lab/deskrelay/pkg/service/slack"
	"github.com/secmon-lab/deskrelay/pkg/utils/errutil"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
	"github.com/slack-go/slack/slackevents"
)

const slackFailureReply = "Sorry, I couldn't look up the tickets right now. Please try again later."

// SlackUseCases answers bot mentions in Slack with the same ticket summary as Google Chat
type SlackUseCases struct {
	chat         *ChatUseCase
	slackService slacksvc.Service
}

// NewSlackUseCases creates a new SlackUseCases instance
func NewSlackUseCases(chatUC *ChatUseCase, slackService slacksvc.Service) *SlackUseCases {
	return &SlackUseCases{
		chat:         chatUC,
		slackService: slackService,
	}
}

// HandleSlackEvent processes Slack Events API events
func (uc *SlackUseCases) HandleSlackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	logger := logging.From(ctx)

	mention, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		logger.Warn("unsupported slack event type", "type", event.Type, "innerType", event.InnerEvent.Type)
		return nil
	}

	return uc.handleMention(ctx, mention)
}

func (uc *SlackUseCases) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) error {
	logger := logging.From(ctx).With("channel_id", ev.Channel, "user_id", ev.User)

	threadTS := ev.ThreadTimeStamp
	if threadTS == "" {
		threadTS = ev.TimeStamp
	}

	email := extractEmail(ev.Text)
	if email == "" && ev.User != "" {
		user, err := uc.slackService.GetUserInfo(ctx, ev.User)
		if err != nil {
			errutil.Handle(ctx, err, "failed to get slack user info")
		} else {
			email = user.Email
		}
	}

	if email == "" {
		if _, err := uc.slackService.PostMessage(ctx, ev.Channel, threadTS, noEmailReply); err != nil {
			return goerr.Wrap(err, "failed to post reply")
		}
		return nil
	}

	logger.Info("summarizing tickets for slack mention", "email", email)
	text, err := uc.chat.Summarize(ctx, email)
	if err != nil {
		if _, postErr := uc.slackService.PostMessage(ctx, ev.Channel, threadTS, slackFailureReply); postErr != nil {
			errutil.Handle(ctx, postErr, "failed to post failure reply")
		}
		return goerr.Wrap(err, "failed to summarize tickets", goerr.V("email", email))
	}

	if _, err := uc.slackService.PostMessage(ctx, ev.Channel, threadTS, text); err != nil {
		return goerr.Wrap(err, "failed to post summary", goerr.V("channel_id", ev.Channel))
	}

	return nil
}
