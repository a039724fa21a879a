// Package ticket defines review tickets and their persistence.
package ticket

// Ticket lifecycle states.
const (
	StatusOpen      = "open"
	StatusResolved  = "resolved"
	StatusEscalated = "escalated"
	StatusClosed    = "closed"
)

// Ticket types.
const (
	TypeCoding       = "coding"
	TypeVerification = "verification"
	TypeClarity      = "clarity"
	TypePlanning     = "planning"
	TypeQuestion     = "question"
)

// Ticket is a unit of review work routed through the agent fleet. A ticket
// accumulating replies from a reviewing role past the round ceiling is
// force-escalated regardless of reply content.
type Ticket struct {
	ID         string
	Type       string
	Title      string
	Body       string
	Status     string
	WorkItemID string
	CreatedAt  string
	UpdatedAt  string
}

// Reply is a single reply on a ticket.
type Reply struct {
	ID        int64
	TicketID  string
	Author    string
	Body      string
	Score     *int
	CreatedAt string
}
