package metadata

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Keyword category names.
const (
	CategoryDesign  = "design"
	CategorySync    = "sync"
	CategoryEthics  = "ethics"
	CategoryTesting = "testing"
	CategoryDocs    = "docs"
	CategoryUI      = "ui"
)

// PropertyGroups lists the property dictionaries in a stable order, matching
// the order the by-property-group strategy emits subtasks in.
var PropertyGroups = []string{
	"position", "sizing", "style", "typography", "layout", "behavior", "data", "responsive",
}

//go:embed keywords.yaml
var keywordsYAML []byte

type dictionaries struct {
	Categories map[string][]string `yaml:"categories"`
	Components []string            `yaml:"components"`
	Properties map[string][]string `yaml:"properties"`
}

var dicts dictionaries

func init() {
	if err := yaml.Unmarshal(keywordsYAML, &dicts); err != nil {
		panic(fmt.Sprintf("metadata: parse keywords.yaml: %v", err))
	}
}
