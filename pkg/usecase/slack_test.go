package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"github.com/secmon-lab/deskrelay/pkg/domain/model/config"
	"github.com/secmon-lab/deskrelay/pkg/repository/memory"
	"github.com/secmon-lab/deskrelay/pkg/service/slack"
	"github.com/secmon-lab/deskrelay/pkg/usecase"
	"github.com/slack-go/slack/slackevents"
)

func newSlackUseCases(t *testing.T, tickets *mockTickets, llm *mockLLM, slackMock *mockSlack) *usecase.SlackUseCases {
	t.Helper()

	ctx := context.Background()
	repo := memory.New()
	gt.NoError(t, repo.PutAccessToken(ctx, "access-1")).Required()

	uc := usecase.New(repo, &mockOAuth{}, tickets,
		usecase.WithLLM(llm),
		usecase.WithSlackService(slackMock),
		usecase.WithRelayConfig(config.DefaultRelay()),
	)
	gt.Value(t, uc.Slack).NotNil()
	return uc.Slack
}

func mentionEvent(text, user, ts, threadTS string) *slackevents.EventsAPIEvent {
	return &slackevents.EventsAPIEvent{
		Type: slackevents.CallbackEvent,
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Type: "app_mention",
			Data: &slackevents.AppMentionEvent{
				Type:            "app_mention",
				User:            user,
				Text:            text,
				TimeStamp:       ts,
				ThreadTimeStamp: threadTS,
				Channel:         "C001",
			},
		},
	}
}

func TestSlackUseCases_HandleSlackEvent(t *testing.T) {
	t.Run("mention with email posts summary in thread", func(t *testing.T) {
		tickets := &mockTickets{
			listFn: func(ctx context.Context, token string, info model.ListInfo) (*model.UpstreamResponse, error) {
				return jsonResponse(http.StatusOK, ticketListBody(1)), nil
			},
		}
		llm := &mockLLM{fn: func(ctx context.Context, system, user string) (string, error) {
			return "Ticket **500** is open.", nil
		}}
		slackMock := &mockSlack{}
		uc := newSlackUseCases(t, tickets, llm, slackMock)

		err := uc.HandleSlackEvent(context.Background(), mentionEvent("<@UBOT> <mailto:bob@example.com|bob@example.com>", "U001", "1700000000.000100", ""))
		gt.NoError(t, err).Required()

		gt.Array(t, slackMock.posted).Length(1).Required()
		gt.Value(t, slackMock.posted[0].ChannelID).Equal("C001")
		gt.Value(t, slackMock.posted[0].ThreadTS).Equal("1700000000.000100")
		gt.Value(t, slackMock.posted[0].Text).Equal("Ticket *500* is open.")

		gt.Value(t, tickets.listCalls[0].ListInfo.SearchCriteria.Value).Equal("bob@example.com")
	})

	t.Run("profile email is the fallback and thread is kept", func(t *testing.T) {
		tickets := &mockTickets{}
		slackMock := &mockSlack{users: map[string]*slack.User{
			"U001": {ID: "U001", Email: "alice@example.com"},
		}}
		uc := newSlackUseCases(t, tickets, &mockLLM{}, slackMock)

		err := uc.HandleSlackEvent(context.Background(), mentionEvent("<@UBOT> my tickets?", "U001", "1700000000.000300", "1700000000.000100"))
		gt.NoError(t, err).Required()

		gt.Value(t, tickets.listCalls[0].ListInfo.SearchCriteria.Value).Equal("alice@example.com")
		gt.Array(t, slackMock.posted).Length(1).Required()
		gt.Value(t, slackMock.posted[0].ThreadTS).Equal("1700000000.000100")
		gt.String(t, slackMock.posted[0].Text).Contains(config.DefaultMaintenanceNotice)
	})

	t.Run("unknown user gets the email prompt", func(t *testing.T) {
		tickets := &mockTickets{}
		slackMock := &mockSlack{}
		uc := newSlackUseCases(t, tickets, &mockLLM{}, slackMock)

		err := uc.HandleSlackEvent(context.Background(), mentionEvent("<@UBOT> hi", "U404", "1700000000.000100", ""))
		gt.NoError(t, err).Required()

		gt.Array(t, tickets.listCalls).Length(0)
		gt.Array(t, slackMock.posted).Length(1).Required()
		gt.String(t, slackMock.posted[0].Text).Contains("email address")
	})

	t.Run("failure posts apology and returns error", func(t *testing.T) {
		tickets := &mockTickets{
			listFn: func(ctx context.Context, token string, info model.ListInfo) (*model.UpstreamResponse, error) {
				return jsonResponse(http.StatusServiceUnavailable, `{}`), nil
			},
		}
		slackMock := &mockSlack{}
		uc := newSlackUseCases(t, tickets, &mockLLM{}, slackMock)

		err := uc.HandleSlackEvent(context.Background(), mentionEvent("bob@example.com", "U001", "1.1", ""))
		gt.Error(t, err).Is(usecase.ErrUpstreamStatus)
		gt.Array(t, slackMock.posted).Length(1).Required()
		gt.String(t, slackMock.posted[0].Text).Contains("Sorry")
	})

	t.Run("other events are ignored", func(t *testing.T) {
		slackMock := &mockSlack{}
		uc := newSlackUseCases(t, &mockTickets{}, &mockLLM{}, slackMock)

		err := uc.HandleSlackEvent(context.Background(), &slackevents.EventsAPIEvent{
			Type: slackevents.CallbackEvent,
			InnerEvent: slackevents.EventsAPIInnerEvent{
				Type: "message",
				Data: &slackevents.MessageEvent{Text: "bob@example.com"},
			},
		})
		gt.NoError(t, err).Required()
		gt.Array(t, slackMock.posted).Length(0)
	})
}

func TestUseCases_New(t *testing.T) {
	uc := usecase.New(memory.New(), &mockOAuth{}, &mockTickets{})
	gt.Value(t, uc.Token).NotNil()
	gt.Value(t, uc.Desk).NotNil()
	gt.Value(t, uc.Chat).Nil()
	gt.Value(t, uc.Slack).Nil()
	gt.B(t, uc.Desk.HasApprovals()).False()
}
