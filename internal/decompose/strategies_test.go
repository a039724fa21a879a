package decompose

import (
	"strings"
	"testing"

	"github.com/metalagman/triage/internal/item"
	"github.com/metalagman/triage/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByComponentBatching(t *testing.T) {
	t.Parallel()

	names := []string{
		"button", "form", "input", "modal", "dropdown",
		"table", "card", "navbar", "sidebar", "tooltip", "badge",
	}
	it := item.WorkItem{ID: "c-1", Title: "Restyle component library", Priority: item.PriorityHigh}
	md := metadata.TaskMetadata{ComponentNames: names, ComponentCount: len(names)}

	subs := splitByComponent(it, md)
	// 11 components in batches of 5 plus the trailing test subtask
	require.Len(t, subs, 4)
	assert.Equal(t, "Test component batches", subs[3].Title)
	assert.Equal(t, CategoryTesting, subs[3].Category)
	assert.Len(t, subs[3].DependsOn, 3)

	for _, sub := range subs[:3] {
		assert.Equal(t, item.PriorityHigh, sub.Priority)
		assert.Equal(t, CategoryImplementation, sub.Category)
	}
	// the last batch holds the single leftover component
	assert.Equal(t, "Implement components: badge", subs[2].Title)
	assert.Equal(t, MinSubtaskMinutes, subs[2].EstimateMinutes)
}

func TestSplitByComponentWideBatches(t *testing.T) {
	t.Parallel()

	var names []string
	for _, n := range strings.Fields("button form input modal dropdown table card navbar sidebar tooltip badge tab accordion carousel breadcrumb pagination spinner") {
		names = append(names, n)
	}
	require.Len(t, names, 17)

	md := metadata.TaskMetadata{ComponentNames: names, ComponentCount: len(names)}
	subs := splitByComponent(item.WorkItem{Title: "Full refresh"}, md)
	// 17 components in batches of 8 plus the trailing test subtask
	require.Len(t, subs, 4)
	assert.Contains(t, subs[0].Title, "button")
	assert.Equal(t, 40, subs[0].EstimateMinutes)
}

func TestSplitByPropertyGroupFallsBackToPhases(t *testing.T) {
	t.Parallel()

	it := item.WorkItem{Title: "Vague styling pass", EstimateMinutes: 90}
	subs := splitByPropertyGroup(it, metadata.TaskMetadata{})
	require.Len(t, subs, 4)
	assert.Equal(t, "Setup", subs[0].Title)
}

func TestSplitByPropertyGroupPerGroupSubtasks(t *testing.T) {
	t.Parallel()

	it := item.WorkItem{Title: "Polish dashboard styles", EstimateMinutes: 80}
	md := metadata.TaskMetadata{
		PropertyGroups: []string{"sizing", "layout", "style"},
		PropertyCount:  9,
	}
	subs := splitByPropertyGroup(it, md)
	require.Len(t, subs, 4)
	assert.Equal(t, "Apply sizing properties", subs[0].Title)
	assert.Equal(t, 20, subs[0].EstimateMinutes)
	assert.Equal(t, "Integrate property changes", subs[3].Title)
	assert.Equal(t, []string{
		"Apply sizing properties",
		"Apply layout properties",
		"Apply style properties",
	}, subs[3].DependsOn)
}

func TestSplitByDependencyClusters(t *testing.T) {
	t.Parallel()

	it := item.WorkItem{
		Title:           "Upgrade build pipeline",
		EstimateMinutes: 40,
		DependsOn:       []string{"d1", "d2", "d3", "d4", "d5", "d6"},
	}
	md := metadata.TaskMetadata{DependencyCount: 6}
	subs := splitByDependency(it, md)
	// 6 deps in clusters of 2 plus the trailing verification subtask
	require.Len(t, subs, 4)
	assert.Equal(t, "Resolve dependencies: d1, d2", subs[0].Title)
	assert.Equal(t, []string{"d1", "d2"}, subs[0].DependsOn)
	assert.Equal(t, "Verify dependency resolution", subs[3].Title)
	assert.Len(t, subs[3].DependsOn, 3)
}

func TestSplitByDependencyWideClusters(t *testing.T) {
	t.Parallel()

	deps := []string{"d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9", "d10"}
	it := item.WorkItem{Title: "Migrate platform", EstimateMinutes: 120, DependsOn: deps}
	subs := splitByDependency(it, metadata.TaskMetadata{DependencyCount: len(deps)})
	// 10 deps in clusters of 3 plus verification
	require.Len(t, subs, 5)
	assert.Equal(t, []string{"d10"}, subs[3].DependsOn)
}

func TestSplitByComplexityHalves(t *testing.T) {
	t.Parallel()

	it := item.WorkItem{
		Title:           "Rework scheduler internals",
		Priority:        item.PriorityMedium,
		EstimateMinutes: 60,
	}
	md := metadata.TaskMetadata{
		Files:      []string{"a.go", "b.go", "c.go", "d.go"},
		FileCount:  4,
		Complexity: metadata.ComplexityVeryHigh,
	}
	subs := splitByComplexity(it, md)
	require.Len(t, subs, 3)

	assert.Equal(t, "Core logic", subs[0].Title)
	assert.Equal(t, item.PriorityHigh, subs[0].Priority, "core logic is always escalated to high priority")
	assert.Equal(t, []string{"a.go", "b.go"}, subs[0].Files)
	assert.Equal(t, 30, subs[0].EstimateMinutes)

	assert.Equal(t, "Edge cases and polish", subs[1].Title)
	assert.Equal(t, item.PriorityMedium, subs[1].Priority)
	assert.Equal(t, []string{"c.go", "d.go"}, subs[1].Files)

	assert.Equal(t, "Final testing", subs[2].Title)
	assert.Equal(t, []string{"Core logic", "Edge cases and polish"}, subs[2].DependsOn)
}

func TestSplitByFileEmptyFilesIsNonMatch(t *testing.T) {
	t.Parallel()

	subs := splitByFile(item.WorkItem{Title: "No files here", EstimateMinutes: 90}, metadata.TaskMetadata{})
	assert.Nil(t, subs)
}
