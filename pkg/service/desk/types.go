package desk

import (
	"context"

	"github.com/secmon-lab/deskrelay/pkg/domain/model"
)

const (
	DefaultTicketBaseURL = "https://sdpondemand.manageengine.com/app/itdesk/api/v3"

	// AcceptHeader selects the v3 representation of the ticketing API
	AcceptHeader = "application/vnd.manageengine.sdp.v3+json"

	// ApprovalEmailParam filters the approval list by requester
	ApprovalEmailParam = "strRequestorEmpEmail"
)

// TicketService reads tickets from the ticketing API. Non-2xx replies are returned as responses,
// not errors, so that callers can pass them through.
type TicketService interface {
	ListRequests(ctx context.Context, accessToken string, listInfo model.ListInfo) (*model.UpstreamResponse, error)
	GetRequest(ctx context.Context, accessToken, id string) (*model.UpstreamResponse, error)
}

// ApprovalService reads approval requests from the approval API
type ApprovalService interface {
	ListApprovals(ctx context.Context, accessToken, email string) (*model.UpstreamResponse, error)
}
