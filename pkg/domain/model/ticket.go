package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// TicketList is the body of the ticketing API list endpoint
type TicketList struct {
	Requests []Document `json:"requests"`
}

// ParseTicketList decodes a ticket list body. Numbers are kept verbatim.
func ParseTicketList(data []byte) (*TicketList, error) {
	var list TicketList
	if err := decodeDocument(data, &list); err != nil {
		return nil, goerr.Wrap(err, "failed to parse ticket list")
	}
	return &list, nil
}

// Ticket is the projection of a ticket record used for tables and summaries
type Ticket struct {
	ID         string
	DisplayID  string
	Subject    string
	Status     string
	Technician string
	Created    string
	DueBy      string
}

// NewTicket projects a downstream ticket record
func NewTicket(doc Document) Ticket {
	return Ticket{
		ID:         doc.String("id"),
		DisplayID:  doc.StringOr(NotAvailable, "display_id"),
		Subject:    doc.StringOr(NotAvailable, "subject"),
		Status:     doc.StringOr(NotAvailable, "status", "name"),
		Technician: doc.StringOr(NotAvailable, "technician", "email_id"),
		Created:    doc.StringOr(NotAvailable, "created_time", "display_value"),
		DueBy:      doc.StringOr(NotAvailable, "due_by_time", "display_value"),
	}
}

// Tickets projects every record of the list
func (x *TicketList) Tickets() []Ticket {
	tickets := make([]Ticket, len(x.Requests))
	for i, doc := range x.Requests {
		tickets[i] = NewTicket(doc)
	}
	return tickets
}

// Summary renders the ticket as the plain-text block fed to the summarizer
func (x Ticket) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Display ID: %s\n", x.DisplayID)
	fmt.Fprintf(&sb, "Subject: %s\n", x.Subject)
	fmt.Fprintf(&sb, "Status: %s\n", x.Status)
	fmt.Fprintf(&sb, "Technician: %s\n", x.Technician)
	fmt.Fprintf(&sb, "Created: %s\n", x.Created)
	fmt.Fprintf(&sb, "Due By: %s\n", x.DueBy)
	return sb.String()
}

// Link returns the UI URL of the ticket under base, or "" when either is unknown
func (x Ticket) Link(base string) string {
	if base == "" || x.ID == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + x.ID + "/details"
}

func decodeDocument(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
