package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/metalagman/triage/internal/audit"
	"github.com/metalagman/triage/internal/llm"
	"github.com/metalagman/triage/internal/response"
	"github.com/metalagman/triage/internal/ticket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	calls   int
	content string
	err     error
}

func (f *fakeClient) Respond(context.Context, []llm.Message, llm.Options) (llm.Response, error) {
	f.calls++
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.content, TokensUsed: 42}, nil
}

func actionTypes(actions []response.AgentAction) []string {
	var out []string
	for _, a := range actions {
		out = append(out, a.Type)
	}
	return out
}

func TestHealthySnapshotNeverCallsModel(t *testing.T) {
	t.Parallel()

	client := &fakeClient{content: "should never be used"}
	monitor := NewMonitor(client)

	report, err := monitor.Check(context.Background(), Snapshot{ReadyItems: maxReadyItems})
	require.NoError(t, err)

	assert.True(t, report.Healthy)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Actions)
	assert.Empty(t, report.Content)
	assert.Equal(t, 0, client.calls)
}

func TestIntakeOverloadIsCritical(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(nil)
	report, err := monitor.Check(context.Background(), Snapshot{ReadyItems: maxReadyItems + 1})
	require.NoError(t, err)

	assert.False(t, report.Healthy)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityCritical, report.Issues[0].Severity)
	assert.Equal(t, []string{response.ActionPauseIntake}, actionTypes(report.Actions))
}

func TestErroredAgentsAreCritical(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(nil)
	report, err := monitor.Check(context.Background(), Snapshot{ErroredAgents: []string{"qa", "verify"}})
	require.NoError(t, err)

	assert.False(t, report.Healthy)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityCritical, report.Issues[0].Severity)
	assert.Contains(t, report.Issues[0].Description, "qa, verify")
	assert.Equal(t, []string{response.ActionEscalate}, actionTypes(report.Actions))
}

func TestPlanDriftThreshold(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(nil)

	// 2 of 10 is exactly 20%: not drift
	report, err := monitor.Check(context.Background(), Snapshot{
		Plan: &PlanStatus{Total: 10, Failed: 1, Recheck: 1},
	})
	require.NoError(t, err)
	assert.True(t, report.Healthy)

	// 3 of 10 crosses the line
	report, err = monitor.Check(context.Background(), Snapshot{
		Plan: &PlanStatus{Total: 10, Failed: 2, Recheck: 1, FailingTasks: []string{"a", "b", "c"}},
	})
	require.NoError(t, err)
	assert.False(t, report.Healthy)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityCritical, report.Issues[0].Severity)
	require.Len(t, report.Actions, 1)
	assert.Equal(t, response.ActionCreateTicket, report.Actions[0].Type)
	assert.Equal(t, ticket.TypePlanning, report.Actions[0].Payload["type"])
}

func TestEscalationBacklogIsWarning(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(nil)
	report, err := monitor.Check(context.Background(), Snapshot{
		TicketCounts: map[string]int{ticket.StatusEscalated: maxEscalatedTickets + 1},
	})
	require.NoError(t, err)

	assert.False(t, report.Healthy)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityWarning, report.Issues[0].Severity)
}

func TestRepeatedFailuresInWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []audit.Entry{
		{Action: "task_failed", TS: now.Add(-1 * time.Hour)},
		{Action: "verification_failed", TS: now.Add(-2 * time.Hour)},
		{Action: "task_failed", TS: now.Add(-3 * time.Hour)},
		{Action: "task_failed", TS: now.Add(-4 * time.Hour)},
		{Action: "task_failed", TS: now.Add(-30 * time.Hour)}, // outside the window
		{Action: "item_created", TS: now.Add(-1 * time.Hour)},
	}

	monitor := NewMonitor(nil)
	report, err := monitor.Check(context.Background(), Snapshot{Now: now, AuditEntries: entries})
	require.NoError(t, err)

	assert.False(t, report.Healthy)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0].Description, "4 failure events")

	// one failure fewer and the snapshot is healthy again
	report, err = monitor.Check(context.Background(), Snapshot{Now: now, AuditEntries: entries[1:]})
	require.NoError(t, err)
	assert.True(t, report.Healthy)
}

func TestStaleTicketsCapRecoverActions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-72 * time.Hour)
	open := []TicketInfo{
		{ID: "t-1", Status: ticket.StatusOpen, CreatedAt: old},
		{ID: "t-2", Status: ticket.StatusOpen, CreatedAt: old},
		{ID: "t-3", Status: ticket.StatusOpen, CreatedAt: old},
		{ID: "t-4", Status: ticket.StatusOpen, CreatedAt: old},
		{ID: "t-5", Status: ticket.StatusOpen, CreatedAt: now.Add(-time.Hour)}, // fresh
	}

	monitor := NewMonitor(nil)
	report, err := monitor.Check(context.Background(), Snapshot{Now: now, OpenTickets: open})
	require.NoError(t, err)

	assert.False(t, report.Healthy)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0].Description, "4 open tickets")
	require.Len(t, report.Actions, maxRecoverActions)
	for _, a := range report.Actions {
		assert.Equal(t, response.ActionRecoverTicket, a.Type)
	}
}

func TestVerificationActionsForResolvedCodingTickets(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		// overload makes the snapshot unhealthy without touching tickets
		ReadyItems: maxReadyItems + 1,
		OpenTickets: []TicketInfo{
			{ID: "v-1", Type: ticket.TypeVerification, Status: ticket.StatusOpen, WorkItemID: "it-covered"},
		},
		ResolvedTickets: []TicketInfo{
			{ID: "c-1", Type: ticket.TypeCoding, WorkItemID: "it-covered"},
			{ID: "c-2", Type: ticket.TypeCoding, WorkItemID: "it-a"},
			{ID: "c-3", Type: ticket.TypeCoding, WorkItemID: "it-b"},
			{ID: "c-4", Type: ticket.TypeCoding, WorkItemID: "it-c"},
			{ID: "c-5", Type: ticket.TypeCoding, WorkItemID: "it-d"},
			{ID: "q-1", Type: ticket.TypeQuestion, WorkItemID: "it-e"},
		},
	}

	monitor := NewMonitor(nil)
	report, err := monitor.Check(context.Background(), snap)
	require.NoError(t, err)

	var verifications []response.AgentAction
	for _, a := range report.Actions {
		if a.Type == response.ActionCreateVerification {
			verifications = append(verifications, a)
		}
	}
	// already-covered and non-coding tickets skipped, capped at three
	require.Len(t, verifications, maxVerifyActions)
	assert.Equal(t, "it-a", verifications[0].Payload["work_item_id"])
}

func TestModelNarrativeAndProposedActions(t *testing.T) {
	t.Parallel()

	client := &fakeClient{content: "Intake is overloaded.\n- action: escalate\naction: launch_missiles\naction: recover_ticket"}
	monitor := NewMonitor(client)

	report, err := monitor.Check(context.Background(), Snapshot{ReadyItems: maxReadyItems + 1})
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls, "an unhealthy snapshot triggers exactly one model call")
	assert.Equal(t, "Intake is overloaded.\n- action: escalate\naction: launch_missiles\naction: recover_ticket", report.Content)
	assert.Equal(t, 42, report.TokensUsed)

	// deterministic action first, then the recognized proposals
	types := actionTypes(report.Actions)
	assert.Equal(t, []string{
		response.ActionPauseIntake,
		response.ActionEscalate,
		response.ActionRecoverTicket,
	}, types)
	assert.Equal(t, "model", report.Actions[1].Payload["proposed_by"])
}

func TestModelErrorKeepsDeterministicReport(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: errors.New("quota exceeded")}
	monitor := NewMonitor(client)

	report, err := monitor.Check(context.Background(), Snapshot{ReadyItems: maxReadyItems + 1})
	require.Error(t, err)

	assert.False(t, report.Healthy)
	assert.Equal(t, []string{response.ActionPauseIntake}, actionTypes(report.Actions))
	assert.Empty(t, report.Content)
}

func TestNilClientSkipsNarrative(t *testing.T) {
	t.Parallel()

	monitor := NewMonitor(nil)
	report, err := monitor.Check(context.Background(), Snapshot{ErroredAgents: []string{"planner"}})
	require.NoError(t, err)

	assert.False(t, report.Healthy)
	assert.Empty(t, report.Content)
	assert.Zero(t, report.TokensUsed)
}
