package response

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/metalagman/triage/internal/audit"
	"github.com/metalagman/triage/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Guard thresholds.
const (
	// ConfidenceFloor forces escalation for Q&A replies below it.
	ConfidenceFloor = 50
	// defaultConfidence is assumed when a reply omits its confidence.
	defaultConfidence = 50
	// MaxClarityRounds caps clarification rounds per ticket; past it the
	// ticket is force-escalated and no further model call is made.
	MaxClarityRounds = 5
)

// Verdict statuses.
const (
	VerdictPassed = "passed"
	VerdictFailed = "failed"
)

// Criterion statuses.
const (
	CriterionMet    = "met"
	CriterionNotMet = "not_met"
)

// CriterionResult captures per-criterion evidence from a verification reply.
type CriterionResult struct {
	ID       string `json:"id"`
	Text     string `json:"text,omitempty"`
	Status   string `json:"status"`
	Evidence string `json:"evidence,omitempty"`
}

// Verdict is the validated outcome of a verification reply.
type Verdict struct {
	Status     string            `json:"status"`
	Criteria   []CriterionResult `json:"criteria"`
	Overridden bool              `json:"overridden"`
}

// Pipeline applies domain invariants to raw agent output. It holds no state
// between invocations except the per-ticket clarification round counter.
type Pipeline struct {
	sink audit.Sink

	mu     sync.Mutex
	rounds map[string]int
}

// NewPipeline creates a pipeline recording overrides to the given sink.
func NewPipeline(sink audit.Sink) *Pipeline {
	return &Pipeline{sink: sink, rounds: make(map[string]int)}
}

// GuardAnswer validates a Q&A-style reply. A reply with confidence below the
// floor is forced into an escalated state with a follow-up ticket action,
// regardless of whether the model flagged escalation itself.
func (p *Pipeline) GuardAnswer(ctx context.Context, ticketID, raw string) AgentResponse {
	fields := parseFields(raw)
	if fields == nil {
		// total parse failure degrades to the raw text with no actions
		log.Debug().Str("ticket_id", ticketID).Msg("response: unstructured answer, passing through")
		return AgentResponse{Content: raw}
	}

	resp := AgentResponse{Content: raw}
	if answer, ok := fields["answer"]; ok {
		resp.Content = answer
	}
	confidence := defaultConfidence
	if value, ok := fields["confidence"]; ok {
		if n, ok := parseScore(value); ok {
			confidence = n
		}
	}
	resp.Confidence = &confidence
	if sources, ok := fields["sources"]; ok {
		resp.Sources = splitList(sources)
	}
	if parseBool(fields["escalate"]) {
		resp.Escalated = true
	}

	if confidence < ConfidenceFloor {
		resp.Escalated = true
		resp.Actions = append(resp.Actions,
			AgentAction{Type: ActionEscalate, Payload: map[string]any{
				"ticket_id": ticketID,
				"reason":    fmt.Sprintf("confidence %d below floor %d", confidence, ConfidenceFloor),
			}},
			AgentAction{Type: ActionCreateTicket, Payload: map[string]any{
				"type":      "question",
				"title":     "Follow up on low-confidence answer",
				"ticket_id": ticketID,
			}},
		)
		metrics.EscalationsTotal.WithLabelValues("low_confidence").Inc()
		p.record(ctx, "confidence_gate", fmt.Sprintf("ticket %s: confidence %d below %d", ticketID, confidence, ConfidenceFloor))
	} else if resp.Escalated {
		resp.Actions = append(resp.Actions, AgentAction{Type: ActionEscalate, Payload: map[string]any{
			"ticket_id": ticketID,
			"reason":    "model requested escalation",
		}})
	}
	return resp
}

// GuardVerdict validates a verification-style reply. If any criterion is
// not met, the overall result is forced to failed: the model's stated
// verdict never overrules per-criterion evidence.
func (p *Pipeline) GuardVerdict(ctx context.Context, itemID, raw string) (Verdict, AgentResponse) {
	verdict, parsed := parseVerdict(raw)
	if !parsed {
		log.Debug().Str("item_id", itemID).Msg("response: unstructured verdict, passing through")
		return Verdict{}, AgentResponse{Content: raw}
	}

	anyNotMet := false
	for _, c := range verdict.Criteria {
		if c.Status == CriterionNotMet {
			anyNotMet = true
			break
		}
	}
	if anyNotMet && verdict.Status != VerdictFailed {
		verdict.Status = VerdictFailed
		verdict.Overridden = true
		metrics.OverridesTotal.WithLabelValues("verification").Inc()
		p.record(ctx, "verdict_override",
			fmt.Sprintf("item %s: stated verdict overridden to failed, unmet criteria present", itemID))
	}

	resp := AgentResponse{Content: raw}
	if verdict.Status == VerdictFailed {
		resp.Actions = append(resp.Actions, AgentAction{Type: ActionCreateWorkItem, Payload: map[string]any{
			"item_id": itemID,
			"title":   "Address failed verification",
			"reason":  unmetSummary(verdict),
		}})
	}
	return verdict, resp
}

// BeginClarityRound advances the clarification round counter for a ticket.
// It reports the round number and whether a model call may proceed; at the
// ceiling it returns escalation actions instead.
func (p *Pipeline) BeginClarityRound(ctx context.Context, ticketID string) (int, bool, []AgentAction) {
	p.mu.Lock()
	p.rounds[ticketID]++
	round := p.rounds[ticketID]
	p.mu.Unlock()

	if round <= MaxClarityRounds {
		return round, true, nil
	}

	metrics.EscalationsTotal.WithLabelValues("clarity_rounds").Inc()
	p.record(ctx, "clarity_ceiling", fmt.Sprintf("ticket %s: round %d exceeds ceiling %d", ticketID, round, MaxClarityRounds))
	return round, false, []AgentAction{{
		Type: ActionEscalate,
		Payload: map[string]any{
			"ticket_id": ticketID,
			"reason":    fmt.Sprintf("clarification round ceiling of %d reached", MaxClarityRounds),
		},
	}}
}

// SeedClarityRounds primes the round counter from persisted reply counts so
// restarts do not reset the ceiling.
func (p *Pipeline) SeedClarityRounds(ticketID string, rounds int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rounds > p.rounds[ticketID] {
		p.rounds[ticketID] = rounds
	}
}

// GuardClarity validates a clarity-review reply, extracting its numeric
// score. A reply with no recoverable structure degrades to raw content.
func (p *Pipeline) GuardClarity(_ context.Context, ticketID, raw string) AgentResponse {
	fields := parseFields(raw)
	if fields == nil {
		log.Debug().Str("ticket_id", ticketID).Msg("response: unstructured clarity reply, passing through")
		return AgentResponse{Content: raw}
	}
	resp := AgentResponse{Content: raw}
	if value, ok := fields["score"]; ok {
		if n, ok := parseScore(value); ok {
			resp.Confidence = &n
		}
	}
	if feedback, ok := fields["feedback"]; ok {
		resp.Content = feedback
	}
	return resp
}

func (p *Pipeline) record(ctx context.Context, action, detail string) {
	if p.sink == nil {
		return
	}
	if err := p.sink.Record(ctx, "response-pipeline", action, detail); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("response: audit record failed")
	}
}

func parseVerdict(raw string) (Verdict, bool) {
	// structured JSON first, loosely labeled text second
	if data, ok := extractJSON([]byte(raw)); ok {
		var v Verdict
		if err := json.Unmarshal(data, &v); err == nil && v.Status != "" {
			v.Status = normalizeVerdict(v.Status)
			for i := range v.Criteria {
				v.Criteria[i].Status = normalizeCriterion(v.Criteria[i].Status)
			}
			v.Overridden = false
			return v, true
		}
	}

	fields := parseFields(raw)
	if fields == nil {
		return Verdict{}, false
	}
	status, ok := fields["verdict"]
	if !ok {
		status, ok = fields["status"]
	}
	if !ok {
		return Verdict{}, false
	}

	v := Verdict{Status: normalizeVerdict(status)}
	for key, value := range fields {
		if !strings.HasPrefix(key, "criterion_") {
			continue
		}
		v.Criteria = append(v.Criteria, CriterionResult{
			ID:     strings.TrimPrefix(key, "criterion_"),
			Status: normalizeCriterion(value),
		})
	}
	return v, true
}

func normalizeVerdict(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "passed", "pass", "success", "ok":
		return VerdictPassed
	default:
		return VerdictFailed
	}
}

func normalizeCriterion(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	// evidence may trail the status: "not_met - handler missing"
	switch {
	case strings.HasPrefix(value, "not_met"), strings.HasPrefix(value, "not met"), strings.HasPrefix(value, "fail"):
		return CriterionNotMet
	default:
		return CriterionMet
	}
}

func unmetSummary(v Verdict) string {
	var ids []string
	for _, c := range v.Criteria {
		if c.Status == CriterionNotMet {
			ids = append(ids, c.ID)
		}
	}
	return "unmet criteria: " + strings.Join(ids, ", ")
}
