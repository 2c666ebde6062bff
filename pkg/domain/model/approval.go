package model

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ApprovalList is the body of the approval API list endpoint
type ApprovalList struct {
	Value []Document `json:"value"`
}

// ParseApprovalList decodes an approval list body
func ParseApprovalList(data []byte) (*ApprovalList, error) {
	var list ApprovalList
	if err := decodeDocument(data, &list); err != nil {
		return nil, goerr.Wrap(err, "failed to parse approval list")
	}
	return &list, nil
}

// Approval is the projection of an approval request record
type Approval struct {
	Status         string
	Category       string
	Description    string
	RequestorName  string
	RequestorEmail string
	Amount         string
	TicketNumber   string
	CreatedDate    string
	RequiredBy     string
}

// NewApproval projects a downstream approval record
func NewApproval(doc Document) Approval {
	return Approval{
		Status:         doc.StringOr(NotAvailable, "strStatus"),
		Category:       doc.StringOr(NotAvailable, "strCategory"),
		Description:    doc.StringOr(NotAvailable, "strDescription"),
		RequestorName:  doc.StringOr(NotAvailable, "strRequestorEmpName"),
		RequestorEmail: doc.StringOr(NotAvailable, "strRequestorEmpEmail"),
		Amount:         doc.StringOr(NotAvailable, "decAmount"),
		TicketNumber:   doc.StringOr(NotAvailable, "strTicketNumber"),
		CreatedDate:    doc.StringOr(NotAvailable, "dtCreatedDate"),
		RequiredBy:     doc.StringOr(NotAvailable, "dtRequiredByDate"),
	}
}

// Approvals projects every record of the list
func (x *ApprovalList) Approvals() []Approval {
	approvals := make([]Approval, len(x.Value))
	for i, doc := range x.Value {
		approvals[i] = NewApproval(doc)
	}
	return approvals
}

// Summary renders the approval as the plain-text block fed to the summarizer
func (x Approval) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ticket Number: %s\n", x.TicketNumber)
	fmt.Fprintf(&sb, "Status: %s\n", x.Status)
	fmt.Fprintf(&sb, "Category: %s\n", x.Category)
	fmt.Fprintf(&sb, "Description: %s\n", x.Description)
	fmt.Fprintf(&sb, "Requestor: %s <%s>\n", x.RequestorName, x.RequestorEmail)
	fmt.Fprintf(&sb, "Amount: %s\n", x.Amount)
	fmt.Fprintf(&sb, "Created: %s\n", x.CreatedDate)
	fmt.Fprintf(&sb, "Required By: %s\n", x.RequiredBy)
	return sb.String()
}
