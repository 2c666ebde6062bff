package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"github.com/secmon-lab/deskrelay/pkg/domain/model/config"
	"github.com/secmon-lab/deskrelay/pkg/domain/types"
	"github.com/secmon-lab/deskrelay/pkg/service/desk"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
)

// DeskUseCase proxies read calls to the ticketing and approval APIs
type DeskUseCase struct {
	token     *TokenUseCase
	tickets   desk.TicketService
	approvals desk.ApprovalService
	relay     *config.Relay
}

// NewDeskUseCase creates a DeskUseCase. approvals may be nil when no approval API is configured.
func NewDeskUseCase(token *TokenUseCase, tickets desk.TicketService, approvals desk.ApprovalService, relay *config.Relay) *DeskUseCase {
	if relay == nil {
		relay = config.DefaultRelay()
	}
	return &DeskUseCase{
		token:     token,
		tickets:   tickets,
		approvals: approvals,
		relay:     relay,
	}
}

// HasApprovals reports whether an approval API is configured
func (uc *DeskUseCase) HasApprovals() bool {
	return uc.approvals != nil
}

// ListRequests returns the newest tickets, filtered by requester when email is not empty
func (uc *DeskUseCase) ListRequests(ctx context.Context, email string) (*model.UpstreamResponse, error) {
	return uc.listRequests(ctx, email, uc.relay.ListRowCount)
}

func (uc *DeskUseCase) listRequests(ctx context.Context, email string, rowCount int) (*model.UpstreamResponse, error) {
	info := model.NewListInfo(rowCount, uc.relay.TicketFields, email)

	return uc.call(ctx, types.OperationListRequests, func(ctx context.Context, token string) (*model.UpstreamResponse, error) {
		return uc.tickets.ListRequests(ctx, token, info)
	})
}

// GetRequest returns the full record of one ticket
func (uc *DeskUseCase) GetRequest(ctx context.Context, id string) (*model.UpstreamResponse, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrMissingRequestID, "id parameter is required")
	}

	return uc.call(ctx, types.OperationGetRequest, func(ctx context.Context, token string) (*model.UpstreamResponse, error) {
		return uc.tickets.GetRequest(ctx, token, id)
	})
}

// ListApprovals returns the approval requests raised by email
func (uc *DeskUseCase) ListApprovals(ctx context.Context, email string) (*model.UpstreamResponse, error) {
	if uc.approvals == nil {
		return nil, goerr.Wrap(ErrApprovalNotConfigured, "cannot list approvals")
	}

	return uc.call(ctx, types.OperationListApprovals, func(ctx context.Context, token string) (*model.UpstreamResponse, error) {
		return uc.approvals.ListApprovals(ctx, token, email)
	})
}

type downstreamCall func(ctx context.Context, token string) (*model.UpstreamResponse, error)

// call runs fn with a valid access token. A 401 triggers one refresh and one retry of the same
// call, also when the token was only just issued because the store was empty. A second 401 is
// returned as is.
func (uc *DeskUseCase) call(ctx context.Context, op types.Operation, fn downstreamCall) (*model.UpstreamResponse, error) {
	callID := uuid.NewString()
	logger := logging.From(ctx).With(CallIDKey, callID, OperationKey, op.String())
	ctx = logging.With(ctx, logger)

	token, issued, err := uc.token.AccessToken(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get access token", goerr.V(CallIDKey, callID))
	}
	if issued {
		logger.Debug("using newly issued access token")
	}

	resp, err := uc.attempt(ctx, logger, fn, token, false)
	if err != nil {
		return nil, goerr.Wrap(err, "downstream call failed", goerr.V(CallIDKey, callID), goerr.V(OperationKey, op.String()))
	}

	logger.Debug("downstream call completed", StatusKey, resp.StatusCode)
	return resp, nil
}

// attempt retries fn once after a 401. refreshed is set only by the 401-triggered refresh.
func (uc *DeskUseCase) attempt(ctx context.Context, logger *slog.Logger, fn downstreamCall, token string, refreshed bool) (*model.UpstreamResponse, error) {
	resp, err := fn(ctx, token)
	if err != nil {
		return nil, err
	}

	if !resp.IsUnauthorized() || refreshed {
		return resp, nil
	}

	logger.Info("access token rejected, refreshing")
	token, err = uc.token.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	return uc.attempt(ctx, logger, fn, token, true)
}
