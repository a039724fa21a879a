// Package item defines work items and their persistence.
package item

// Work item lifecycle states.
const (
	StatusReady      = "ready"
	StatusDoing      = "doing"
	StatusDone       = "done"
	StatusFailed     = "failed"
	StatusRecheck    = "recheck"
	StatusBlocked    = "blocked"
	StatusDecomposed = "decomposed"
)

// Priority tiers.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// WorkItem is a unit of planned engineering work. It may be atomic or may
// need splitting into subtasks before execution.
type WorkItem struct {
	ID              string
	ParentID        string
	Title           string
	Description     string
	Acceptance      string
	Priority        string
	EstimateMinutes int
	Files           []string
	DependsOn       []string
	Context         map[string]any
	Category        string
	Status          string
	CreatedAt       string
	UpdatedAt       string
}
