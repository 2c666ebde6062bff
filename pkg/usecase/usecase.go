package usecase

import (
	"github.com/secmon-lab/deskrelay/pkg/domain/interfaces"
	"github.com/secmon-lab/deskrelay/pkg/domain/model/config"
	"github.com/secmon-lab/deskrelay/pkg/service/desk"
	"github.com/secmon-lab/deskrelay/pkg/service/llm"
	"github.com/secmon-lab/deskrelay/pkg/service/oauth"
	slacksvc "github.com/secmon-lab/deskrelay/pkg/service/slack"
)

type UseCases struct {
	repo      interfaces.Repository
	relay     *config.Relay
	approvals desk.ApprovalService
	llm       llm.Service
	slack     slacksvc.Service

	Token *TokenUseCase
	Desk  *DeskUseCase
	Chat  *ChatUseCase
	Slack *SlackUseCases
}

type Option func(*UseCases)

func WithRelayConfig(cfg *config.Relay) Option {
	return func(uc *UseCases) {
		uc.relay = cfg
	}
}

func WithApprovalService(svc desk.ApprovalService) Option {
	return func(uc *UseCases) {
		uc.approvals = svc
	}
}

// WithLLM enables the chat summaries. Without it Chat and Slack are nil.
func WithLLM(svc llm.Service) Option {
	return func(uc *UseCases) {
		uc.llm = svc
	}
}

// WithSlackService enables the Slack bot. It also requires WithLLM.
func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slack = svc
	}
}

func New(repo interfaces.Repository, oauthService oauth.Service, tickets desk.TicketService, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		relay: config.DefaultRelay(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Token = NewTokenUseCase(repo, oauthService)
	uc.Desk = NewDeskUseCase(uc.Token, tickets, uc.approvals, uc.relay)

	if uc.llm != nil {
		uc.Chat = NewChatUseCase(uc.Desk, uc.llm, uc.relay)
		if uc.slack != nil {
			uc.Slack = NewSlackUseCases(uc.Chat, uc.slack)
		}
	}

	return uc
}
