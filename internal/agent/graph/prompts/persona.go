package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/tryluxor/server/internal/agent/model"
)

const (
	PersonaClassic = "classic"
	PersonaGenZ    = "genz"
)

var (
	//go:embed template/classic.txt
	classicPrompt string

	//go:embed template/genz.txt
	genzPrompt string
)

// Template returns the raw system prompt of a persona.
func Template(persona string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(persona)) {
	case "", PersonaClassic:
		return classicPrompt, nil
	case PersonaGenZ:
		return genzPrompt, nil
	default:
		return "", fmt.Errorf("unknown prompt persona %q", persona)
	}
}

// RenderSystem renders the persona system prompt through the Eino prompt
// component so prompt callbacks observe it.
func RenderSystem(ctx context.Context, cfg model.PromptConfig, now time.Time) (string, error) {
	tpl, err := Template(cfg.Persona)
	if err != nil {
		return "", err
	}

	msgs, err := prompt.FromMessages(schema.FString, schema.SystemMessage(tpl)).
		Format(ctx, map[string]any{
			"business_name": cfg.BusinessName,
			"time":          now.Format(time.RFC3339),
		})
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
