package decompose

import (
	"fmt"

	"github.com/metalagman/triage/internal/item"
	"github.com/metalagman/triage/internal/metadata"
	"github.com/metalagman/triage/internal/metrics"
	"github.com/rs/zerolog/log"
)

// MaxDepth bounds recursive splitting. Decomposing at depth >= MaxDepth
// returns no result; this is a loop-prevention guard, not an error.
const MaxDepth = 3

// Engine evaluates decomposition rules against work items. All evaluation is
// synchronous and side-effect-free over an immutable item snapshot.
type Engine struct {
	rules *RuleSet
}

// NewEngine creates an engine over the given rule set.
func NewEngine(rules *RuleSet) *Engine {
	return &Engine{rules: rules}
}

// Rules exposes the engine's rule set for custom registrations.
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// NeedsDecomposition is a fast gate: it reports whether an item is oversized
// without performing the decomposition.
func (e *Engine) NeedsDecomposition(it item.WorkItem) bool {
	md := metadata.Extract(it)
	return it.EstimateMinutes > 45 || md.FileCount > 3 || md.ComponentCount > 10
}

// Decompose evaluates rules in priority order and applies the first match.
// A nil result means the item is already atomic (or the depth ceiling was
// reached); callers must treat that as a normal terminal outcome.
func (e *Engine) Decompose(it item.WorkItem, depth int) *Result {
	if depth >= MaxDepth {
		log.Debug().Str("item_id", it.ID).Int("depth", depth).Msg("decompose: depth ceiling reached")
		return nil
	}

	md := metadata.Extract(it)
	for _, rule := range e.rules.Rules() {
		matched, err := safeMatch(rule, it, md)
		if err != nil {
			log.Warn().Err(err).Str("rule", rule.Name).Msg("decompose: rule predicate failed, skipping")
			continue
		}
		if !matched {
			continue
		}

		subtasks, err := safeGenerate(rule, it, md)
		if err != nil {
			log.Warn().Err(err).Str("rule", rule.Name).Msg("decompose: rule generator failed, skipping")
			continue
		}
		// an empty candidate list is a non-match, not a final answer
		if len(subtasks) == 0 {
			continue
		}

		total := 0
		for i := range subtasks {
			subtasks[i].EstimateMinutes = clampMinutes(subtasks[i].EstimateMinutes)
			total += subtasks[i].EstimateMinutes
		}
		covered := it.EstimateMinutes == 0 || total*5 >= it.EstimateMinutes*4

		metrics.DecompositionsTotal.WithLabelValues(rule.Strategy).Inc()
		log.Info().
			Str("item_id", it.ID).
			Str("rule", rule.Name).
			Int("subtasks", len(subtasks)).
			Int("total_minutes", total).
			Bool("covered", covered).
			Msg("decompose: rule matched")

		return &Result{
			ItemID:       it.ID,
			Subtasks:     subtasks,
			Strategy:     rule.Strategy,
			Reason:       ruleReason(rule, it, md),
			TotalMinutes: total,
			Covered:      covered,
		}
	}

	// no rule matched: the item is atomic by definition
	return nil
}

func ruleReason(rule Rule, it item.WorkItem, md metadata.TaskMetadata) string {
	return fmt.Sprintf("rule %s matched: estimate %dm, %d files, %d components, %d property keywords, %d dependencies, complexity %s",
		rule.Name, it.EstimateMinutes, md.FileCount, md.ComponentCount, md.PropertyCount, md.DependencyCount, md.Complexity)
}

func safeMatch(rule Rule, it item.WorkItem, md metadata.TaskMetadata) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predicate panic: %v", r)
		}
	}()
	return rule.Match(it, md), nil
}

func safeGenerate(rule Rule, it item.WorkItem, md metadata.TaskMetadata) (subtasks []SubtaskDefinition, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return rule.Generate(it, md), nil
}
