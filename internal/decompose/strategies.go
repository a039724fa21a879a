package decompose

import (
	"fmt"
	"strings"

	"github.com/metalagman/triage/internal/item"
	"github.com/metalagman/triage/internal/metadata"
)

// Strategy tags.
const (
	StrategyByFile          = "by_file"
	StrategyByComponent     = "by_component"
	StrategyByPropertyGroup = "by_property_group"
	StrategyByPhase         = "by_phase"
	StrategyByDependency    = "by_dependency"
	StrategyByComplexity    = "by_complexity"
)

// builtinRules returns the six built-in rules. File-count and
// component/property splits come before the generic time-based and
// complexity-based splits: they produce more meaningful subtasks.
func builtinRules() []Rule {
	return []Rule{
		{
			Name:     "split-by-file",
			Priority: 1,
			Strategy: StrategyByFile,
			Match: func(_ item.WorkItem, md metadata.TaskMetadata) bool {
				return md.FileCount > 3
			},
			Generate: splitByFile,
		},
		{
			Name:     "split-by-component",
			Priority: 2,
			Strategy: StrategyByComponent,
			Match: func(_ item.WorkItem, md metadata.TaskMetadata) bool {
				return md.IsDesign && md.ComponentCount > 10
			},
			Generate: splitByComponent,
		},
		{
			Name:     "split-by-property-group",
			Priority: 3,
			Strategy: StrategyByPropertyGroup,
			Match: func(_ item.WorkItem, md metadata.TaskMetadata) bool {
				return md.PropertyCount > 8
			},
			Generate: splitByPropertyGroup,
		},
		{
			Name:     "split-by-phase",
			Priority: 4,
			Strategy: StrategyByPhase,
			Match: func(it item.WorkItem, _ metadata.TaskMetadata) bool {
				return it.EstimateMinutes > 45
			},
			Generate: splitByPhase,
		},
		{
			Name:     "split-by-dependency",
			Priority: 5,
			Strategy: StrategyByDependency,
			Match: func(_ item.WorkItem, md metadata.TaskMetadata) bool {
				return md.DependencyCount > 5
			},
			Generate: splitByDependency,
		},
		{
			Name:     "split-by-complexity",
			Priority: 6,
			Strategy: StrategyByComplexity,
			Match: func(_ item.WorkItem, md metadata.TaskMetadata) bool {
				return md.Complexity == metadata.ComplexityVeryHigh
			},
			Generate: splitByComplexity,
		},
	}
}

// splitByFile emits one subtask per referenced file plus a trailing
// integration subtask that depends on all of them.
func splitByFile(it item.WorkItem, md metadata.TaskMetadata) []SubtaskDefinition {
	if md.FileCount == 0 {
		return nil
	}
	perFile := clampMinutes(it.EstimateMinutes / (md.FileCount + 1))

	out := make([]SubtaskDefinition, 0, md.FileCount+1)
	titles := make([]string, 0, md.FileCount)
	for _, file := range md.Files {
		title := fmt.Sprintf("Update %s", file)
		titles = append(titles, title)
		out = append(out, SubtaskDefinition{
			Title:           title,
			Description:     fmt.Sprintf("Apply the changes for %q scoped to %s.", it.Title, file),
			Priority:        it.Priority,
			EstimateMinutes: perFile,
			Acceptance:      fmt.Sprintf("Changes in %s compile and satisfy: %s", file, it.Acceptance),
			Files:           []string{file},
			Category:        CategoryImplementation,
		})
	}
	out = append(out, SubtaskDefinition{
		Title:           "Integrate file changes",
		Description:     fmt.Sprintf("Wire the per-file changes for %q together and resolve cross-file issues.", it.Title),
		Priority:        it.Priority,
		EstimateMinutes: MinSubtaskMinutes,
		Acceptance:      "All touched files work together; no integration regressions.",
		DependsOn:       titles,
		Files:           md.Files,
		Category:        CategoryIntegration,
	})
	return out
}

// splitByComponent batches component names and adds a trailing testing
// subtask. Batch size grows with the component count.
func splitByComponent(it item.WorkItem, md metadata.TaskMetadata) []SubtaskDefinition {
	names := md.ComponentNames
	if len(names) == 0 {
		return nil
	}
	batchSize := 5
	if len(names) > 16 {
		batchSize = 8
	}

	var out []SubtaskDefinition
	var titles []string
	for start := 0; start < len(names); start += batchSize {
		end := start + batchSize
		if end > len(names) {
			end = len(names)
		}
		batch := names[start:end]
		title := fmt.Sprintf("Implement components: %s", strings.Join(batch, ", "))
		titles = append(titles, title)
		out = append(out, SubtaskDefinition{
			Title:           title,
			Description:     fmt.Sprintf("Implement the %s batch for %q.", strings.Join(batch, ", "), it.Title),
			Priority:        it.Priority,
			EstimateMinutes: clampMinutes(len(batch) * 5),
			Acceptance:      fmt.Sprintf("Each of %s renders and behaves per the design.", strings.Join(batch, ", ")),
			Category:        CategoryImplementation,
		})
	}
	out = append(out, SubtaskDefinition{
		Title:           "Test component batches",
		Description:     fmt.Sprintf("Verify all component batches for %q against the design.", it.Title),
		Priority:        it.Priority,
		EstimateMinutes: MinSubtaskMinutes,
		Acceptance:      "All components verified against the design.",
		DependsOn:       titles,
		Category:        CategoryTesting,
	})
	return out
}

// splitByPropertyGroup emits one subtask per matched property dictionary plus
// a trailing integration subtask. Falls back to the phase split when no group
// matched despite the trigger.
func splitByPropertyGroup(it item.WorkItem, md metadata.TaskMetadata) []SubtaskDefinition {
	if len(md.PropertyGroups) == 0 {
		return splitByPhase(it, md)
	}
	perGroup := clampMinutes(it.EstimateMinutes / (len(md.PropertyGroups) + 1))

	out := make([]SubtaskDefinition, 0, len(md.PropertyGroups)+1)
	titles := make([]string, 0, len(md.PropertyGroups))
	for _, group := range md.PropertyGroups {
		title := fmt.Sprintf("Apply %s properties", group)
		titles = append(titles, title)
		out = append(out, SubtaskDefinition{
			Title:           title,
			Description:     fmt.Sprintf("Apply the %s-related changes for %q.", group, it.Title),
			Priority:        it.Priority,
			EstimateMinutes: perGroup,
			Acceptance:      fmt.Sprintf("The %s properties match the requirements.", group),
			Category:        CategoryImplementation,
		})
	}
	out = append(out, SubtaskDefinition{
		Title:           "Integrate property changes",
		Description:     fmt.Sprintf("Verify the property groups for %q combine without conflicts.", it.Title),
		Priority:        it.Priority,
		EstimateMinutes: MinSubtaskMinutes,
		Acceptance:      "All property groups verified together.",
		DependsOn:       titles,
		Category:        CategoryIntegration,
	})
	return out
}

// splitByPhase is the generic four-stage split for anything time-boxed over
// the atomic ceiling: setup, core implementation, testing, integration.
func splitByPhase(it item.WorkItem, _ metadata.TaskMetadata) []SubtaskDefinition {
	core := clampMinutes(it.EstimateMinutes - 40)
	return []SubtaskDefinition{
		{
			Title:           "Setup",
			Description:     fmt.Sprintf("Prepare the environment and scaffolding for %q.", it.Title),
			Priority:        it.Priority,
			EstimateMinutes: 15,
			Acceptance:      "Environment ready; scaffolding in place.",
			Category:        CategorySetup,
		},
		{
			Title:           "Core implementation",
			Description:     fmt.Sprintf("Implement the core of %q.", it.Title),
			Priority:        it.Priority,
			EstimateMinutes: core,
			Acceptance:      it.Acceptance,
			DependsOn:       []string{"Setup"},
			Files:           it.Files,
			Category:        CategoryImplementation,
		},
		{
			Title:           "Testing",
			Description:     fmt.Sprintf("Test the implementation of %q.", it.Title),
			Priority:        it.Priority,
			EstimateMinutes: 15,
			Acceptance:      "Tests cover the acceptance criterion and pass.",
			DependsOn:       []string{"Core implementation"},
			Category:        CategoryTesting,
		},
		{
			Title:           "Integration",
			Description:     fmt.Sprintf("Integrate and finalize %q.", it.Title),
			Priority:        it.Priority,
			EstimateMinutes: 10, // clamped to the floor by the engine
			Acceptance:      "Work integrated; no regressions.",
			DependsOn:       []string{"Testing"},
			Category:        CategoryIntegration,
		},
	}
}

// splitByDependency clusters declared dependencies and adds a trailing
// verification subtask.
func splitByDependency(it item.WorkItem, md metadata.TaskMetadata) []SubtaskDefinition {
	deps := it.DependsOn
	if len(deps) == 0 {
		return nil
	}
	clusterSize := 2
	if len(deps) > 9 {
		clusterSize = 3
	}
	clusters := (len(deps) + clusterSize - 1) / clusterSize
	perCluster := clampMinutes(it.EstimateMinutes / (clusters + 1))

	var out []SubtaskDefinition
	var titles []string
	for start := 0; start < len(deps); start += clusterSize {
		end := start + clusterSize
		if end > len(deps) {
			end = len(deps)
		}
		cluster := deps[start:end]
		title := fmt.Sprintf("Resolve dependencies: %s", strings.Join(cluster, ", "))
		titles = append(titles, title)
		out = append(out, SubtaskDefinition{
			Title:           title,
			Description:     fmt.Sprintf("Satisfy %s before continuing %q.", strings.Join(cluster, ", "), it.Title),
			Priority:        it.Priority,
			EstimateMinutes: perCluster,
			Acceptance:      fmt.Sprintf("Dependencies %s resolved.", strings.Join(cluster, ", ")),
			DependsOn:       append([]string(nil), cluster...),
			Category:        CategoryImplementation,
		})
	}
	out = append(out, SubtaskDefinition{
		Title:           "Verify dependency resolution",
		Description:     fmt.Sprintf("Confirm every dependency cluster of %q is satisfied.", it.Title),
		Priority:        it.Priority,
		EstimateMinutes: MinSubtaskMinutes,
		Acceptance:      "All dependency clusters verified.",
		DependsOn:       titles,
		Category:        CategoryTesting,
	})
	return out
}

// splitByComplexity is the catch-all for very-high complexity items nothing
// more specific claimed. Core logic runs at high priority regardless of the
// parent's tier.
func splitByComplexity(it item.WorkItem, md metadata.TaskMetadata) []SubtaskDefinition {
	half := clampMinutes(it.EstimateMinutes / 2)
	mid := len(md.Files) / 2
	firstHalf := md.Files[:mid]
	secondHalf := md.Files[mid:]

	return []SubtaskDefinition{
		{
			Title:           "Core logic",
			Description:     fmt.Sprintf("Implement the core logic of %q.", it.Title),
			Priority:        item.PriorityHigh,
			EstimateMinutes: half,
			Acceptance:      it.Acceptance,
			Files:           firstHalf,
			Category:        CategoryImplementation,
		},
		{
			Title:           "Edge cases and polish",
			Description:     fmt.Sprintf("Handle edge cases and polish %q.", it.Title),
			Priority:        it.Priority,
			EstimateMinutes: half,
			Acceptance:      "Edge cases handled; behavior consistent.",
			DependsOn:       []string{"Core logic"},
			Files:           secondHalf,
			Category:        CategoryImplementation,
		},
		{
			Title:           "Final testing",
			Description:     fmt.Sprintf("Run the full verification pass for %q.", it.Title),
			Priority:        it.Priority,
			EstimateMinutes: MinSubtaskMinutes,
			Acceptance:      "Full verification pass green.",
			DependsOn:       []string{"Core logic", "Edge cases and polish"},
			Category:        CategoryTesting,
		},
	}
}
