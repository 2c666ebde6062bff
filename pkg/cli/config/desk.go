package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/service/desk"
	"github.com/urfave/cli/v3"
)

// Desk holds the downstream API locations
type Desk struct {
	ticketBaseURL    string
	approvalEndpoint string
	timeout          time.Duration
}

func (x *Desk) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ticket-api-url",
			Usage:       "Base URL of the ticketing API",
			Category:    "Helpdesk",
			Value:       desk.DefaultTicketBaseURL,
			Sources:     cli.EnvVars("DESKRELAY_TICKET_API_URL"),
			Destination: &x.ticketBaseURL,
		},
		&cli.StringFlag{
			Name:        "approval-api-url",
			Usage:       "Approval list endpoint. /assent is disabled when empty",
			Category:    "Helpdesk",
			Sources:     cli.EnvVars("DESKRELAY_APPROVAL_API_URL"),
			Destination: &x.approvalEndpoint,
		},
		&cli.DurationFlag{
			Name:        "desk-timeout",
			Usage:       "Timeout of ticketing and approval API calls",
			Category:    "Helpdesk",
			Value:       desk.DefaultTimeout,
			Sources:     cli.EnvVars("DESKRELAY_DESK_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

func (x Desk) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("ticket_api_url", x.ticketBaseURL),
		slog.String("approval_api_url", x.approvalEndpoint),
		slog.Duration("timeout", x.timeout),
	)
}

// Configure creates the ticket client, and the approval client when an endpoint is set
func (x *Desk) Configure() (desk.TicketService, desk.ApprovalService, error) {
	var opts []desk.Option
	if x.timeout > 0 {
		opts = append(opts, desk.WithTimeout(x.timeout))
	}

	tickets, err := desk.NewTicketClient(x.ticketBaseURL, opts...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create ticket client")
	}

	if x.approvalEndpoint == "" {
		return tickets, nil, nil
	}

	approvals, err := desk.NewApprovalClient(x.approvalEndpoint, opts...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create approval client")
	}
	return tickets, approvals, nil
}
