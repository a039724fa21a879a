// Package config provides configuration loading and management for triage.
package config

// Config is the root configuration.
type Config struct {
	DBPath string      `json:"db_path,omitempty" mapstructure:"db_path"`
	Model  ModelConfig `json:"model"             mapstructure:"model"`
	Web    WebConfig   `json:"web,omitempty"     mapstructure:"web"`
}

// ModelConfig describes how to reach the generative model backend.
type ModelConfig struct {
	Name      string `json:"name"                  mapstructure:"name"`
	APIKey    string `json:"api_key,omitempty"     mapstructure:"api_key"`
	APIKeyEnv string `json:"api_key_env,omitempty" mapstructure:"api_key_env"`
	TimeoutS  int    `json:"timeout_s,omitempty"   mapstructure:"timeout_s"`
}

// WebConfig configures the status server.
type WebConfig struct {
	Addr string `json:"addr,omitempty" mapstructure:"addr"`
}

// Default returns a config with defaults applied for unset fields.
func (c Config) Default() Config {
	if c.DBPath == "" {
		c.DBPath = ".triage/triage.db"
	}
	if c.Model.Name == "" {
		c.Model.Name = "gemini-2.0-flash"
	}
	if c.Model.TimeoutS <= 0 {
		c.Model.TimeoutS = 60
	}
	if c.Web.Addr == "" {
		c.Web.Addr = "127.0.0.1:7733"
	}
	return c
}
