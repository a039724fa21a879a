// Package metadata derives structured signals from a work item's free text.
package metadata

import (
	"regexp"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/metalagman/triage/internal/item"
)

// Complexity is the derived complexity tier of a work item.
type Complexity string

// Complexity tiers.
const (
	ComplexityLow      Complexity = "low"
	ComplexityMedium   Complexity = "medium"
	ComplexityHigh     Complexity = "high"
	ComplexityVeryHigh Complexity = "very_high"
)

// Signal is a single keyword match with its source dictionary.
type Signal struct {
	Keyword string
	Source  string
}

// TaskMetadata holds the signals derived from one work item. It is a pure
// function of the item and is recomputed on every decomposition attempt.
type TaskMetadata struct {
	Files           []string
	FileCount       int
	ComponentNames  []string
	ComponentCount  int
	PropertyGroups  []string
	PropertyCount   int
	DependencyCount int

	IsDesign bool
	IsSync   bool
	IsEthics bool
	HasTests bool
	HasDocs  bool
	HasUI    bool

	Complexity Complexity
	Signals    []Signal
}

// filePattern matches path-shaped tokens: at least one letter, a dot, and a
// short extension. Version-shaped tokens are filtered separately.
var (
	filePattern    = regexp.MustCompile(`[A-Za-z0-9_./\\-]*[A-Za-z][A-Za-z0-9_./\\-]*\.[A-Za-z0-9]{1,5}`)
	versionPattern = regexp.MustCompile(`^v?\d+(\.\d+)+$`)
	wordPattern    = regexp.MustCompile(`[a-z0-9][a-z0-9_-]*`)
)

type contextHints struct {
	Summary string   `mapstructure:"summary"`
	Notes   string   `mapstructure:"notes"`
	Files   []string `mapstructure:"files"`
}

// Extract derives TaskMetadata from a work item. It has no side effects and
// never fails: absent or malformed fields degrade to zero values.
func Extract(it item.WorkItem) TaskMetadata {
	hints := decodeContext(it.Context)

	corpus := strings.ToLower(strings.Join([]string{
		it.Title,
		it.Description,
		it.Acceptance,
		hints.Summary,
		hints.Notes,
		strings.Join(it.Files, " "),
		strings.Join(hints.Files, " "),
	}, "\n"))

	md := TaskMetadata{
		Files:           extractFiles(corpus, it.Files, hints.Files),
		DependencyCount: len(it.DependsOn),
	}
	md.FileCount = len(md.Files)

	words := wordSet(corpus)

	categoryHits := map[string][]string{}
	for category, keywords := range dicts.Categories {
		for _, kw := range keywords {
			if matchKeyword(corpus, words, kw) {
				categoryHits[category] = append(categoryHits[category], kw)
				md.Signals = append(md.Signals, Signal{Keyword: kw, Source: "category:" + category})
			}
		}
	}
	// a single stray keyword is not a signal
	present := func(category string) bool { return len(categoryHits[category]) >= 2 }
	md.IsDesign = present(CategoryDesign)
	md.IsSync = present(CategorySync)
	md.IsEthics = present(CategoryEthics)
	md.HasTests = present(CategoryTesting)
	md.HasDocs = present(CategoryDocs)
	md.HasUI = present(CategoryUI)

	for _, name := range dicts.Components {
		if matchKeyword(corpus, words, name) {
			md.ComponentNames = append(md.ComponentNames, name)
			md.Signals = append(md.Signals, Signal{Keyword: name, Source: "component"})
		}
	}
	md.ComponentCount = len(md.ComponentNames)

	for _, group := range PropertyGroups {
		matched := 0
		for _, kw := range dicts.Properties[group] {
			if matchKeyword(corpus, words, kw) {
				matched++
				md.Signals = append(md.Signals, Signal{Keyword: kw, Source: "property:" + group})
			}
		}
		if matched > 0 {
			md.PropertyGroups = append(md.PropertyGroups, group)
			md.PropertyCount += matched
		}
	}

	md.Complexity = complexityTier(it.EstimateMinutes, md.FileCount, md.ComponentCount)
	return md
}

func decodeContext(blob map[string]any) contextHints {
	var hints contextHints
	if blob == nil {
		return hints
	}
	// best effort: a context blob that does not fit the hint shape is ignored
	_ = mapstructure.Decode(blob, &hints)
	return hints
}

func extractFiles(corpus string, declared ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(path string) {
		path = strings.Trim(path, "./\\")
		if len(path) < 4 || versionPattern.MatchString(path) || seen[path] {
			return
		}
		seen[path] = true
		out = append(out, path)
	}
	for _, list := range declared {
		for _, path := range list {
			add(strings.ToLower(path))
		}
	}
	for _, token := range filePattern.FindAllString(corpus, -1) {
		add(token)
	}
	sort.Strings(out)
	return out
}

func wordSet(corpus string) map[string]bool {
	words := map[string]bool{}
	for _, w := range wordPattern.FindAllString(corpus, -1) {
		words[w] = true
	}
	return words
}

func matchKeyword(corpus string, words map[string]bool, keyword string) bool {
	if strings.ContainsAny(keyword, " -") {
		return strings.Contains(corpus, keyword)
	}
	return words[keyword]
}

// complexityTier derives the four-level tier. The first pass flags very-high;
// the refinement pass can only downgrade when both minutes and file count are
// small.
func complexityTier(minutes, files, components int) Complexity {
	if minutes > 45 || files > 5 || components > 10 {
		return ComplexityVeryHigh
	}

	tier := ComplexityLow
	switch {
	case minutes > 35 || files > 3 || components > 5:
		tier = ComplexityHigh
	case minutes > 20 || files > 1 || components > 3:
		tier = ComplexityMedium
	}

	if minutes <= 20 && files <= 1 {
		switch tier {
		case ComplexityHigh:
			tier = ComplexityMedium
		case ComplexityMedium:
			tier = ComplexityLow
		}
	}
	return tier
}
