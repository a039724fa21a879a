package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient wraps the Gemini API for oneshot calls.
type GeminiClient struct {
	cfg    Config
	client *genai.Client
}

// NewGeminiClient constructs a Gemini-backed model client.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		envKey := strings.TrimSpace(cfg.APIKeyEnv)
		if envKey == "" {
			envKey = defaultAPIKeyEnv
		}
		apiKey = strings.TrimSpace(os.Getenv(envKey))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("model api key is required (set api_key or api_key_env)")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.Model = model

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{cfg: cfg, client: client}, nil
}

// Respond executes a single generate-content request.
func (c *GeminiClient) Respond(ctx context.Context, messages []Message, opts Options) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature != nil {
		genCfg.Temperature = opts.Temperature
	}

	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			genCfg.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
			continue
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
	}
	if len(contents) == 0 {
		return Response{}, fmt.Errorf("at least one user message is required")
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, genCfg)
	if err != nil {
		return Response{}, fmt.Errorf("genai generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Response{}, fmt.Errorf("model response did not contain output text")
	}

	out := Response{Content: text}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}
