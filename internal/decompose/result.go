// Package decompose splits oversized work items into bounded, atomic subtasks
// using pure rule matching. No model call is involved.
package decompose

import (
	"github.com/metalagman/triage/internal/item"
)

// Estimate bounds for atomic subtasks, in minutes.
const (
	MinSubtaskMinutes = 15
	MaxSubtaskMinutes = 45
)

// Subtask categories.
const (
	CategorySetup          = "setup"
	CategoryImplementation = "implementation"
	CategoryTesting        = "testing"
	CategoryIntegration    = "integration"
)

// SubtaskDefinition describes one subtask produced by a strategy. DependsOn
// refers to sibling subtasks by title.
type SubtaskDefinition struct {
	Title           string
	Description     string
	Priority        string
	EstimateMinutes int
	Acceptance      string
	DependsOn       []string
	Files           []string
	Context         map[string]any
	Category        string
}

// Result is the outcome of a successful decomposition.
type Result struct {
	ItemID       string
	Subtasks     []SubtaskDefinition
	Strategy     string
	Reason       string
	TotalMinutes int
	Covered      bool
}

// WorkItems converts the subtask definitions into store-ready work items,
// inheriting the parent's context. Sibling dependencies stay title-based;
// the store resolves them when it applies the result.
func (r *Result) WorkItems(parent item.WorkItem) []item.WorkItem {
	out := make([]item.WorkItem, 0, len(r.Subtasks))
	for _, sub := range r.Subtasks {
		ctx := sub.Context
		if ctx == nil {
			ctx = parent.Context
		}
		out = append(out, item.WorkItem{
			ParentID:        parent.ID,
			Title:           sub.Title,
			Description:     sub.Description,
			Acceptance:      sub.Acceptance,
			Priority:        sub.Priority,
			EstimateMinutes: sub.EstimateMinutes,
			Files:           sub.Files,
			DependsOn:       sub.DependsOn,
			Context:         ctx,
			Category:        sub.Category,
			Status:          item.StatusReady,
		})
	}
	return out
}

func clampMinutes(minutes int) int {
	if minutes < MinSubtaskMinutes {
		return MinSubtaskMinutes
	}
	if minutes > MaxSubtaskMinutes {
		return MaxSubtaskMinutes
	}
	return minutes
}
