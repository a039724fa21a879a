// Package response validates generative-agent replies and enforces hard
// invariants on them. The model's stated verdicts are advisory; the parsed
// evidence is authoritative.
package response

// AgentAction types.
const (
	ActionEscalate           = "escalate"
	ActionCreateWorkItem     = "create_work_item"
	ActionCreateTicket       = "create_ticket"
	ActionPauseIntake        = "pause_intake"
	ActionRecoverTicket      = "recover_ticket"
	ActionCreateVerification = "create_verification_ticket"
)

// AgentAction is a single instruction for the external store to apply. The
// decision layer never mutates the store directly.
type AgentAction struct {
	Type    string
	Payload map[string]any
}

// AgentResponse is a validated agent reply: plain data, suitable for
// serialization over any transport.
type AgentResponse struct {
	Content    string
	Confidence *int
	Sources    []string
	Actions    []AgentAction
	TokensUsed int
	Escalated  bool
}
