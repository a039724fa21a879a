// Package health computes system-health facts and corrective actions purely
// from a state snapshot. A model is consulted only to narrate findings that
// were already detected algorithmically.
package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/metalagman/triage/internal/audit"
	"github.com/metalagman/triage/internal/llm"
	"github.com/metalagman/triage/internal/metrics"
	"github.com/metalagman/triage/internal/response"
	"github.com/metalagman/triage/internal/ticket"
	"github.com/rs/zerolog/log"
)

// Fixed thresholds, independent of any model call.
const (
	maxReadyItems       = 20
	maxEscalatedTickets = 5
	maxRecentFailures   = 3
	failureWindow       = 24 * time.Hour
	staleTicketAge      = 48 * time.Hour
	maxRecoverActions   = 3
	maxVerifyActions    = 3
	driftNumerator      = 1
	driftDenominator    = 5 // (failed + recheck) / total > 20%
)

// Issue severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Issue is one health finding, generated without any model involvement.
type Issue struct {
	Severity    string
	Description string
	Actions     []response.AgentAction
}

// TicketInfo is the slice of ticket state the monitor needs.
type TicketInfo struct {
	ID         string
	Type       string
	Status     string
	WorkItemID string
	CreatedAt  time.Time
}

// PlanStatus summarizes the active plan's task outcomes.
type PlanStatus struct {
	Total        int
	Failed       int
	Recheck      int
	FailingTasks []string
}

// Snapshot is an immutable view of system state at one instant.
type Snapshot struct {
	Now             time.Time
	ReadyItems      int
	ErroredAgents   []string
	TicketCounts    map[string]int
	OpenTickets     []TicketInfo
	ResolvedTickets []TicketInfo
	AuditEntries    []audit.Entry
	Plan            *PlanStatus
}

// Report is the monitor's output: deterministic issues and actions, plus an
// optional model narrative when issues exist.
type Report struct {
	Healthy    bool
	Issues     []Issue
	Actions    []response.AgentAction
	Content    string
	TokensUsed int
}

// Monitor computes health reports. The single optional model call is the
// only blocking operation.
type Monitor struct {
	client llm.Client
}

// NewMonitor creates a monitor. A nil client disables narratives.
func NewMonitor(client llm.Client) *Monitor {
	return &Monitor{client: client}
}

// Check evaluates the snapshot. With zero issues it returns immediately and
// never calls the model; otherwise it makes exactly one model call and
// appends any actions the model proposes after the deterministic ones.
func (m *Monitor) Check(ctx context.Context, snap Snapshot) (Report, error) {
	if snap.Now.IsZero() {
		snap.Now = time.Now().UTC()
	}

	issues := detectIssues(snap)
	actions := collectActions(issues)
	actions = append(actions, verificationActions(snap)...)

	for _, issue := range issues {
		metrics.HealthIssuesTotal.WithLabelValues(issue.Severity).Inc()
	}

	report := Report{
		Healthy: len(issues) == 0,
		Issues:  issues,
		Actions: actions,
	}
	if report.Healthy || m.client == nil {
		return report, nil
	}

	metrics.ModelCallsTotal.WithLabelValues("health").Inc()
	resp, err := m.client.Respond(ctx, narrativeMessages(issues), llm.Options{MaxTokens: 1024})
	if err != nil {
		return report, fmt.Errorf("health narrative: %w", err)
	}
	report.Content = resp.Content
	report.TokensUsed = resp.TokensUsed
	report.Actions = append(report.Actions, proposedActions(resp.Content)...)
	return report, nil
}

func detectIssues(snap Snapshot) []Issue {
	var issues []Issue

	if snap.ReadyItems > maxReadyItems {
		issues = append(issues, Issue{
			Severity:    SeverityCritical,
			Description: fmt.Sprintf("work intake overloaded: %d ready items (max %d)", snap.ReadyItems, maxReadyItems),
			Actions: []response.AgentAction{{
				Type:    response.ActionPauseIntake,
				Payload: map[string]any{"ready_items": snap.ReadyItems},
			}},
		})
	}

	if len(snap.ErroredAgents) > 0 {
		issues = append(issues, Issue{
			Severity:    SeverityCritical,
			Description: fmt.Sprintf("agents in error state: %s", strings.Join(snap.ErroredAgents, ", ")),
			Actions: []response.AgentAction{{
				Type:    response.ActionEscalate,
				Payload: map[string]any{"agents": snap.ErroredAgents},
			}},
		})
	}

	if p := snap.Plan; p != nil && p.Total > 0 {
		failing := p.Failed + p.Recheck
		if failing*driftDenominator > p.Total*driftNumerator {
			issues = append(issues, Issue{
				Severity: SeverityCritical,
				Description: fmt.Sprintf("plan drift: %d of %d tasks failed or need recheck (over 20%%)",
					failing, p.Total),
				Actions: []response.AgentAction{{
					Type: response.ActionCreateTicket,
					Payload: map[string]any{
						"type":          ticket.TypePlanning,
						"title":         "Replan drifting tasks",
						"failing_tasks": p.FailingTasks,
					},
				}},
			})
		}
	}

	if n := snap.TicketCounts[ticket.StatusEscalated]; n > maxEscalatedTickets {
		issues = append(issues, Issue{
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("escalation backlog: %d escalated tickets (max %d)", n, maxEscalatedTickets),
			Actions: []response.AgentAction{{
				Type:    response.ActionEscalate,
				Payload: map[string]any{"escalated_tickets": n},
			}},
		})
	}

	if n := recentFailureCount(snap); n > maxRecentFailures {
		issues = append(issues, Issue{
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("repeated failures: %d failure events in the last 24h", n),
		})
	}

	if stale := staleTickets(snap); len(stale) > 0 {
		issue := Issue{
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("stale tickets: %d open tickets older than 48h", len(stale)),
		}
		for i, t := range stale {
			if i == maxRecoverActions {
				break
			}
			issue.Actions = append(issue.Actions, response.AgentAction{
				Type:    response.ActionRecoverTicket,
				Payload: map[string]any{"ticket_id": t.ID},
			})
		}
		issues = append(issues, issue)
	}

	return issues
}

func collectActions(issues []Issue) []response.AgentAction {
	var out []response.AgentAction
	for _, issue := range issues {
		out = append(out, issue.Actions...)
	}
	return out
}

func recentFailureCount(snap Snapshot) int {
	cutoff := snap.Now.Add(-failureWindow)
	n := 0
	for _, e := range snap.AuditEntries {
		if strings.Contains(e.Action, "fail") && e.TS.After(cutoff) {
			n++
		}
	}
	return n
}

func staleTickets(snap Snapshot) []TicketInfo {
	cutoff := snap.Now.Add(-staleTicketAge)
	var out []TicketInfo
	for _, t := range snap.OpenTickets {
		if t.Status == ticket.StatusOpen && !t.CreatedAt.IsZero() && t.CreatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// verificationActions proposes verification tickets for recently resolved
// coding tickets that have no matching open verification ticket yet.
func verificationActions(snap Snapshot) []response.AgentAction {
	openVerification := map[string]bool{}
	for _, t := range snap.OpenTickets {
		if t.Type == ticket.TypeVerification {
			openVerification[t.WorkItemID] = true
		}
	}

	var out []response.AgentAction
	for _, t := range snap.ResolvedTickets {
		if t.Type != ticket.TypeCoding || openVerification[t.WorkItemID] {
			continue
		}
		out = append(out, response.AgentAction{
			Type: response.ActionCreateVerification,
			Payload: map[string]any{
				"ticket_id":    t.ID,
				"work_item_id": t.WorkItemID,
			},
		})
		if len(out) == maxVerifyActions {
			break
		}
	}
	return out
}

func narrativeMessages(issues []Issue) []llm.Message {
	var b strings.Builder
	b.WriteString("Current health issues, detected deterministically:\n")
	for _, issue := range issues {
		fmt.Fprintf(&b, "- [%s] %s\n", issue.Severity, issue.Description)
	}
	b.WriteString("\nWrite a short operator-facing narrative of the system state. ")
	b.WriteString("Optionally propose extra actions, one per line, as 'action: <type>'. ")
	b.WriteString("Known types: escalate, create_work_item, create_ticket, pause_intake, recover_ticket.")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are the narrator for a work-orchestration health monitor. You never decide health facts; they are given."},
		{Role: llm.RoleUser, Content: b.String()},
	}
}

// proposedActions extracts any well-formed action lines from the narrative.
// Malformed proposals are dropped; the narrative itself is kept either way.
func proposedActions(content string) []response.AgentAction {
	known := map[string]bool{
		response.ActionEscalate:       true,
		response.ActionCreateWorkItem: true,
		response.ActionCreateTicket:   true,
		response.ActionPauseIntake:    true,
		response.ActionRecoverTicket:  true,
	}
	var out []response.AgentAction
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		rest, ok := strings.CutPrefix(strings.ToLower(line), "action:")
		if !ok {
			continue
		}
		typ := strings.TrimSpace(rest)
		if !known[typ] {
			log.Debug().Str("type", typ).Msg("health: dropping unknown proposed action")
			continue
		}
		out = append(out, response.AgentAction{Type: typ, Payload: map[string]any{"proposed_by": "model"}})
	}
	return out
}
