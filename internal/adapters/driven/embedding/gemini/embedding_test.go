package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(context.Background(), Config{})
	assert.ErrorContains(t, err, "API key is required")
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())

	out, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestVectors(t *testing.T) {
	out, err := vectors([]*genai.ContentEmbedding{{Values: []float32{1}}, {Values: []float32{2}}}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, out)

	_, err = vectors([]*genai.ContentEmbedding{{Values: []float32{1}}}, 2)
	assert.ErrorContains(t, err, "got 1 embeddings for 2 inputs")

	_, err = vectors([]*genai.ContentEmbedding{nil}, 1)
	assert.ErrorContains(t, err, "input 0")
}
