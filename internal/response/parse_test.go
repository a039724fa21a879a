package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	t.Parallel()

	raw := "Answer: the cache is stale\n- Confidence: 80\n* Clarity Score: 60\nno label on this line"
	fields := parseFields(raw)
	require.NotNil(t, fields)
	assert.Equal(t, "the cache is stale", fields["answer"])
	assert.Equal(t, "80", fields["confidence"])
	assert.Equal(t, "60", fields["clarity_score"])

	assert.Nil(t, parseFields("free prose with no structure"))
}

func TestParseFieldsKeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	fields := parseFields("score: 30\nscore: 90")
	require.NotNil(t, fields)
	assert.Equal(t, "30", fields["score"])
}

func TestExtractJSONFromProse(t *testing.T) {
	t.Parallel()

	raw := []byte("Here is the verdict:\n```json\n{\"status\": \"passed\"}\n```\nHope that helps.")
	data, ok := extractJSON(raw)
	require.True(t, ok)
	assert.JSONEq(t, `{"status": "passed"}`, string(data))

	_, ok = extractJSON([]byte("no braces here"))
	assert.False(t, ok)
	_, ok = extractJSON([]byte("{broken"))
	assert.False(t, ok)
}

func TestParseScoreFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"85", 85, true},
		{"85/100", 85, true},
		{"85%", 85, true},
		{" 7 ", 7, true},
		{"0", 0, true},
		{"high", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseScore(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a.go", "b.go"}, splitList("a.go, b.go"))
	assert.Equal(t, []string{"x"}, splitList("x;"))
	assert.Nil(t, splitList("  ,  "))
}
