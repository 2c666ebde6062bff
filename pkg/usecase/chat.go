package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"github.com/secmon-lab/deskrelay/pkg/domain/model/config"
	"github.com/secmon-lab/deskrelay/pkg/domain/types"
	"github.com/secmon-lab/deskrelay/pkg/service/llm"
	"github.com/secmon-lab/deskrelay/pkg/utils/errutil"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/chat/v1"
)

const noEmailReply = "I couldn't find an email address in your message or your profile. Send me the email address of the person whose tickets you want to look up."

// ChatUseCase answers chat bot events with an LLM summary of helpdesk tickets
type ChatUseCase struct {
	desk  *DeskUseCase
	llm   llm.Service
	relay *config.Relay
}

func NewChatUseCase(deskUC *DeskUseCase, llmService llm.Service, relay *config.Relay) *ChatUseCase {
	if relay == nil {
		relay = config.DefaultRelay()
	}
	return &ChatUseCase{
		desk:  deskUC,
		llm:   llmService,
		relay: relay,
	}
}

// HandleEvent returns the synchronous reply to a Google Chat event, or nil when no reply is sent
func (uc *ChatUseCase) HandleEvent(ctx context.Context, event *model.ChatEvent) (*chat.Message, error) {
	logger := logging.From(ctx).With("event_type", event.Type.String())

	if !event.Type.IsKnown() {
		logger.Warn("unsupported chat event")
		return uc.reply(event, uc.relay.UnsupportedReply), nil
	}

	switch event.Type {
	case types.ChatEventMessage:
		email := extractEmail(event.Text())
		if email == "" {
			email = event.SenderEmail()
		}
		if email == "" {
			return uc.reply(event, noEmailReply), nil
		}

		logger.Info("summarizing tickets for chat message", "email", email)
		text, err := uc.Summarize(ctx, email)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to summarize tickets", goerr.V("email", email))
		}
		return uc.reply(event, text), nil

	case types.ChatEventAddedToSpace:
		return uc.reply(event, greeting(uc.relay.Greeting, event.RoomName())), nil

	default: // REMOVED_FROM_SPACE
		logger.Info("removed from space")
		return nil, nil
	}
}

// greeting fills the optional %s of format with " to <room>"
func greeting(format, room string) string {
	if !strings.Contains(format, "%s") {
		return format
	}
	if room != "" {
		room = " to " + room
	}
	return fmt.Sprintf(format, room)
}

func (uc *ChatUseCase) reply(event *model.ChatEvent, text string) *chat.Message {
	msg := &chat.Message{Text: text}
	if event.Message != nil && event.Message.Thread != nil && event.Message.Thread.Name != "" {
		msg.Thread = &chat.Thread{Name: event.Message.Thread.Name}
	}
	return msg
}

// Summarize looks up the newest tickets and approvals of email and returns an LLM summary in chat
// markup. A failed approval lookup degrades to a ticket-only summary.
func (uc *ChatUseCase) Summarize(ctx context.Context, email string) (string, error) {
	var (
		tickets   []model.Ticket
		approvals []model.Approval
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		resp, err := uc.desk.listRequests(egCtx, email, uc.relay.ChatRowCount)
		if err != nil {
			return err
		}
		if !resp.IsSuccess() {
			return goerr.Wrap(ErrUpstreamStatus, "ticket lookup failed", goerr.V(StatusKey, resp.StatusCode), goerr.V("body", string(resp.Body)))
		}

		list, err := model.ParseTicketList(resp.Body)
		if err != nil {
			return err
		}
		tickets = list.Tickets()
		return nil
	})

	if uc.desk.HasApprovals() {
		eg.Go(func() error {
			found, err := uc.lookupApprovals(egCtx, email)
			if err != nil {
				// Approvals are supplementary
				errutil.Handle(egCtx, err, "approval lookup failed, summarizing tickets only")
				return nil
			}
			approvals = found
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return "", err
	}

	if limit := uc.relay.ChatTicketLimit; limit > 0 && len(tickets) > limit {
		tickets = tickets[:limit]
	}

	prompt := buildSummaryPrompt(email, tickets, approvals, uc.relay.TicketUIBase)
	answer, err := uc.llm.Summarize(ctx, uc.relay.SystemPrompt, prompt)
	if err != nil {
		return "", goerr.Wrap(err, "failed to summarize tickets")
	}

	text := toChatMarkup(answer)
	if len(tickets) == 0 {
		text = strings.TrimRight(text, "\n") + "\n\n" + uc.relay.MaintenanceNotice
	}

	return text, nil
}

func (uc *ChatUseCase) lookupApprovals(ctx context.Context, email string) ([]model.Approval, error) {
	resp, err := uc.desk.ListApprovals(ctx, email)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, goerr.Wrap(ErrUpstreamStatus, "approval lookup failed", goerr.V(StatusKey, resp.StatusCode))
	}

	list, err := model.ParseApprovalList(resp.Body)
	if err != nil {
		return nil, err
	}
	return list.Approvals(), nil
}

func buildSummaryPrompt(email string, tickets []model.Ticket, approvals []model.Approval, linkBase string) string {
	var sb strings.Builder

	if len(tickets) == 0 {
		fmt.Fprintf(&sb, "No tickets were found for %s.\n", email)
	} else {
		fmt.Fprintf(&sb, "Tickets raised by %s, newest first:\n", email)
		for _, t := range tickets {
			sb.WriteString("\n")
			sb.WriteString(t.Summary())
			if link := t.Link(linkBase); link != "" {
				fmt.Fprintf(&sb, "Link: %s\n", link)
			}
		}
	}

	if len(approvals) > 0 {
		fmt.Fprintf(&sb, "\nApproval requests raised by %s:\n", email)
		for _, a := range approvals {
			sb.WriteString("\n")
			sb.WriteString(a.Summary())
		}
	}

	return sb.String()
}
