package metadata

import (
	"testing"

	"github.com/metalagman/triage/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFiles(t *testing.T) {
	t.Parallel()

	it := item.WorkItem{
		Title:       "Refactor session handling",
		Description: "Touch internal/session/store.go and internal/session/cookie.go, bump to v1.2.3 later. See a.b for details.",
		Files:       []string{"cmd/app/main.go"},
	}
	md := Extract(it)

	assert.Contains(t, md.Files, "cmd/app/main.go")
	assert.Contains(t, md.Files, "internal/session/store.go")
	assert.Contains(t, md.Files, "internal/session/cookie.go")
	// version-shaped and too-short tokens are filtered
	assert.NotContains(t, md.Files, "v1.2.3")
	assert.NotContains(t, md.Files, "a.b")
	assert.Equal(t, len(md.Files), md.FileCount)
}

func TestCategoryNeedsTwoKeywords(t *testing.T) {
	t.Parallel()

	single := Extract(item.WorkItem{Title: "Fix the sync job"})
	assert.False(t, single.IsSync, "one keyword must not flag a category")

	double := Extract(item.WorkItem{Title: "Fix the sync job", Description: "reconcile divergent state"})
	assert.True(t, double.IsSync)
}

func TestDesignAndComponents(t *testing.T) {
	t.Parallel()

	it := item.WorkItem{
		Title:       "Redesign settings screen",
		Description: "New visual design and theme. Rework button, form, input, modal, dropdown, table, card, navbar, sidebar, tooltip, badge components.",
	}
	md := Extract(it)
	assert.True(t, md.IsDesign)
	assert.Greater(t, md.ComponentCount, 10)
	assert.Equal(t, len(md.ComponentNames), md.ComponentCount)
}

func TestPropertyGroups(t *testing.T) {
	t.Parallel()

	it := item.WorkItem{
		Description: "Adjust width and height, the margin and padding layout, color and background style, plus hover and focus behavior.",
	}
	md := Extract(it)
	assert.Contains(t, md.PropertyGroups, "sizing")
	assert.Contains(t, md.PropertyGroups, "layout")
	assert.Contains(t, md.PropertyGroups, "style")
	assert.Contains(t, md.PropertyGroups, "behavior")
	assert.GreaterOrEqual(t, md.PropertyCount, 8)
}

func TestContextHints(t *testing.T) {
	t.Parallel()

	it := item.WorkItem{
		Title: "Migrate report export",
		Context: map[string]any{
			"summary": "touches export/csv_writer.go",
			"files":   []string{"export/pdf_writer.go"},
			"weird":   map[string]any{"nested": true},
		},
	}
	md := Extract(it)
	assert.Contains(t, md.Files, "export/csv_writer.go")
	assert.Contains(t, md.Files, "export/pdf_writer.go")
}

func TestExtractNeverFailsOnEmptyItem(t *testing.T) {
	t.Parallel()

	md := Extract(item.WorkItem{})
	assert.Zero(t, md.FileCount)
	assert.Zero(t, md.ComponentCount)
	assert.Equal(t, ComplexityLow, md.Complexity)
}

func TestComplexityTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		minutes    int
		files      int
		components int
		want       Complexity
	}{
		{"long estimate is very high", 46, 0, 0, ComplexityVeryHigh},
		{"many files is very high", 10, 6, 0, ComplexityVeryHigh},
		{"many components is very high", 10, 0, 11, ComplexityVeryHigh},
		{"boundary 45 minutes stays below very high", 45, 0, 0, ComplexityHigh},
		{"over 35 minutes is high", 36, 1, 0, ComplexityHigh},
		{"over 20 minutes is medium", 21, 1, 0, ComplexityMedium},
		{"small everything is low", 20, 1, 0, ComplexityLow},
		{"files alone can raise", 10, 4, 0, ComplexityHigh},
		{"two files is medium", 10, 2, 0, ComplexityMedium},
		{"component-driven high downgrades when small", 10, 1, 6, ComplexityMedium},
		{"component-driven medium downgrades when small", 10, 0, 4, ComplexityLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, complexityTier(tc.minutes, tc.files, tc.components))
		})
	}
}

func TestKeywordDictionariesLoaded(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, dicts.Categories)
	require.NotEmpty(t, dicts.Components)
	for _, group := range PropertyGroups {
		require.NotEmpty(t, dicts.Properties[group], "property group %s must have keywords", group)
	}
}
