package decompose

import (
	"sort"
	"sync"

	"github.com/metalagman/triage/internal/item"
	"github.com/metalagman/triage/internal/metadata"
	"github.com/rs/zerolog/log"
)

// Predicate decides whether a rule applies to a work item.
type Predicate func(item.WorkItem, metadata.TaskMetadata) bool

// Generator produces the candidate subtask list for a matched rule.
type Generator func(item.WorkItem, metadata.TaskMetadata) []SubtaskDefinition

// Rule pairs a matching condition with a splitting strategy. Lower priority
// values are evaluated first. Rules are immutable once registered.
type Rule struct {
	Name     string
	Priority int
	Strategy string
	Match    Predicate
	Generate Generator
}

// RuleSet is an ordered collection of decomposition rules owned by one
// engine instance. Registration is append-only and read-mostly.
type RuleSet struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRuleSet returns an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{}
}

// DefaultRuleSet returns a rule set with the six built-in strategies.
func DefaultRuleSet() *RuleSet {
	rs := NewRuleSet()
	for _, r := range builtinRules() {
		rs.Register(r)
	}
	return rs
}

// Register adds a rule. Structurally invalid rules (empty name, nil predicate
// or generator) are dropped without error: this is a permissive extension
// point, not a place to fail loudly.
func (rs *RuleSet) Register(r Rule) {
	if r.Name == "" || r.Match == nil || r.Generate == nil {
		log.Debug().Str("rule", r.Name).Msg("decompose: rejected invalid rule registration")
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rules = append(rs.rules, r)
}

// Rules returns the registered rules sorted ascending by priority. The sort
// is stable, so equal priorities keep registration order.
func (rs *RuleSet) Rules() []Rule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Len reports how many rules are registered.
func (rs *RuleSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rules)
}
