package health

import (
	"context"
	"fmt"
	"time"

	"github.com/metalagman/triage/internal/audit"
	"github.com/metalagman/triage/internal/item"
	"github.com/metalagman/triage/internal/ticket"
)

const auditQueryLimit = 200

// BuildSnapshot assembles a Snapshot from the stores. Agent states and the
// active plan are owned by the caller and can be set on the returned value.
func BuildSnapshot(ctx context.Context, items *item.Store, tickets *ticket.Store, sink audit.Sink) (Snapshot, error) {
	now := time.Now().UTC()
	snap := Snapshot{Now: now, TicketCounts: map[string]int{}}

	ready, err := items.ListReady(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list ready items: %w", err)
	}
	snap.ReadyItems = len(ready)

	for _, status := range []string{ticket.StatusOpen, ticket.StatusResolved, ticket.StatusEscalated, ticket.StatusClosed} {
		list, err := tickets.ListByStatus(ctx, status)
		if err != nil {
			return Snapshot{}, fmt.Errorf("list %s tickets: %w", status, err)
		}
		snap.TicketCounts[status] = len(list)
		switch status {
		case ticket.StatusOpen:
			snap.OpenTickets = ticketInfos(list)
		case ticket.StatusResolved:
			snap.ResolvedTickets = ticketInfos(list)
		}
	}

	entries, err := sink.Query(ctx, auditQueryLimit, audit.Filter{Since: now.Add(-failureWindow)})
	if err != nil {
		return Snapshot{}, fmt.Errorf("query audit entries: %w", err)
	}
	snap.AuditEntries = entries

	return snap, nil
}

func ticketInfos(list []ticket.Ticket) []TicketInfo {
	out := make([]TicketInfo, 0, len(list))
	for _, t := range list {
		info := TicketInfo{
			ID:         t.ID,
			Type:       t.Type,
			Status:     t.Status,
			WorkItemID: t.WorkItemID,
		}
		if created, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
			info.CreatedAt = created
		}
		out = append(out, info)
	}
	return out
}
