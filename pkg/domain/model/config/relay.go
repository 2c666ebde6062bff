package config

// TicketFields is the projection requested from the ticketing API
var TicketFields = []string{
	"id",
	"display_id",
	"subject",
	"status",
	"technician",
	"requester",
	"created_time",
	"due_by_time",
}

const (
	DefaultListRowCount    = 100
	DefaultChatRowCount    = 10
	DefaultChatTicketLimit = 5

	DefaultSystemPrompt = "You are a helpful customer service agent. Explain to the user if they have any open tickets and when they'll get resolved. If none are open, explain the status of their most recent ticket or two. Here is the status of the user's tickets"

	DefaultMaintenanceNotice = "Note: no tickets were found. The helpdesk system may be under maintenance; if you expected to see tickets here, please try again later or contact the IT helpdesk directly."

	DefaultGreeting = "Thanks for adding me%s! Send me an email address, or just say hi, and I'll summarize the helpdesk tickets raised by that person."

	DefaultUnsupportedReply = "Sorry, I can't handle that kind of event yet. Send me a message with an email address to look up tickets."
)

// Relay holds the tunable behaviour of the relay
type Relay struct {
	// TicketFields is sent as fields_required on list queries
	TicketFields []string
	// ListRowCount is the page size of /requests
	ListRowCount int
	// ChatRowCount is the page size of chat lookups
	ChatRowCount int
	// ChatTicketLimit caps the tickets put into a chat summary, newest first
	ChatTicketLimit int
	// TicketUIBase prefixes ticket IDs to build links, e.g. https://desk.example.com/app/itdesk/ui/requests
	TicketUIBase string

	SystemPrompt      string
	MaintenanceNotice string
	// Greeting is a format string receiving " to <room>" or ""
	Greeting         string
	UnsupportedReply string
}

// DefaultRelay returns the built-in configuration
func DefaultRelay() *Relay {
	fields := make([]string, len(TicketFields))
	copy(fields, TicketFields)

	return &Relay{
		TicketFields:      fields,
		ListRowCount:      DefaultListRowCount,
		ChatRowCount:      DefaultChatRowCount,
		ChatTicketLimit:   DefaultChatTicketLimit,
		SystemPrompt:      DefaultSystemPrompt,
		MaintenanceNotice: DefaultMaintenanceNotice,
		Greeting:          DefaultGreeting,
		UnsupportedReply:  DefaultUnsupportedReply,
	}
}
