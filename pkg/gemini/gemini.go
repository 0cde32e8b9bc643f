package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

type Config struct {
	APIKey  string `envconfig:"GOOGLE_API_KEY" required:"true"`
	BaseURL string `envconfig:"GOOGLE_BASE_URL"`
}

// New creates a Gemini API client shared by the chat model and the embedder.
func (c *Config) New(ctx context.Context) (*genai.Client, error) {
	if c.APIKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  c.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = c.BaseURL
	}

	return genai.NewClient(ctx, clientCfg)
}
