package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNew(t *testing.T) {
	_, err := (&Config{}).New(context.Background())
	assert.Error(t, err)

	client, err := (&Config{APIKey: "test-key", BaseURL: "http://127.0.0.1:1"}).New(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, client.Models)
}
