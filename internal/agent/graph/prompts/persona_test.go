package prompts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryluxor/server/internal/agent/model"
)

func TestRenderSystem(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

	for _, persona := range []string{PersonaClassic, PersonaGenZ, ""} {
		out, err := RenderSystem(context.Background(), model.PromptConfig{Persona: persona, BusinessName: "Luxor"}, now)
		require.NoError(t, err)
		assert.Contains(t, out, "Current time: 2025-06-01T15:30:00Z")
		assert.Contains(t, out, "Luxor")
		assert.Contains(t, out, `TOOL_CALL: product_lookup(query="`)
		assert.NotContains(t, out, "{time}")
	}
}

func TestTemplateUnknownPersona(t *testing.T) {
	_, err := Template("pirate")
	assert.Error(t, err)

	_, err = RenderSystem(context.Background(), model.PromptConfig{Persona: "pirate"}, time.Now())
	assert.Error(t, err)
}
