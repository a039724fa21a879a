package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{
			name:     "empty config is valid",
			settings: map[string]any{},
			wantErr:  false,
		},
		{
			name: "full config is valid",
			settings: map[string]any{
				"db_path": ".triage/triage.db",
				"model": map[string]any{
					"name":        "gemini-2.0-flash",
					"api_key_env": "GEMINI_API_KEY",
					"timeout_s":   30,
				},
				"web": map[string]any{"addr": "127.0.0.1:7733"},
			},
			wantErr: false,
		},
		{
			name:     "unknown key rejected",
			settings: map[string]any{"agents": map[string]any{}},
			wantErr:  true,
		},
		{
			name: "non-integer timeout rejected",
			settings: map[string]any{
				"model": map[string]any{"timeout_s": "soon"},
			},
			wantErr: true,
		},
		{
			name:     "empty db_path rejected",
			settings: map[string]any{"db_path": ""},
			wantErr:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSettings(tc.settings)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Config{}.Default()
	assert.Equal(t, ".triage/triage.db", cfg.DBPath)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Name)
	assert.Equal(t, 60, cfg.Model.TimeoutS)
	assert.Equal(t, "127.0.0.1:7733", cfg.Web.Addr)

	custom := Config{DBPath: "x.db", Model: ModelConfig{Name: "m", TimeoutS: 5}}.Default()
	assert.Equal(t, "x.db", custom.DBPath)
	assert.Equal(t, "m", custom.Model.Name)
	assert.Equal(t, 5, custom.Model.TimeoutS)
}
