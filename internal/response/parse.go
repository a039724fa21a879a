package response

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var labeledField = regexp.MustCompile(`(?im)^\s*[-*]?\s*([a-z][a-z0-9_ -]*?)\s*[:=]\s*(.+?)\s*$`)

// parseFields extracts labeled fields from free text. Labels are matched
// case-insensitively; unknown labels are kept so role parsers can pick what
// they need. Returns nil when no labeled field is recoverable.
func parseFields(raw string) map[string]string {
	matches := labeledField.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	fields := make(map[string]string, len(matches))
	for _, m := range matches {
		key := strings.Join(strings.Fields(strings.ToLower(m[1])), "_")
		if _, exists := fields[key]; !exists {
			fields[key] = strings.TrimSpace(m[2])
		}
	}
	return fields
}

// extractJSON finds the outermost JSON object embedded in agent output, which
// is frequently wrapped in prose or code fences.
func extractJSON(raw []byte) ([]byte, bool) {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	candidate := raw[start : end+1]
	if !json.Valid(candidate) {
		return nil, false
	}
	return candidate, true
}

// parseScore reads an integer score from text like "85", "85/100" or "85%".
func parseScore(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if idx := strings.IndexAny(value, "/%"); idx > 0 {
		value = value[:idx]
	}
	value = strings.TrimSpace(value)
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

// splitList splits a comma- or semicolon-separated list, dropping empties.
func splitList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
