package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder returns len(text) as a one-element vector.
type countingEmbedder struct {
	model   string
	calls   int
	batched []string
	err     error
	closed  bool
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.batched = append(c.batched, texts...)
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int              { return 1 }
func (c *countingEmbedder) ModelName() string            { return c.model }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error                 { c.closed = true; return nil }

func TestNew_RequiresInner(t *testing.T) {
	_, err := New(nil, "")
	assert.Error(t, err)
}

func TestEmbeddingService_Embed(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	svc, err := New(inner, t.TempDir())
	require.NoError(t, err)
	defer svc.Close()

	for range 3 {
		vec, err := svc.Embed(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{5}, vec)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, Stats{Hits: 2, Misses: 1}, svc.Stats())
}

func TestEmbeddingService_EmbedBatchSendsOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	svc, err := New(inner, "")
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Embed(context.Background(), "cached")
	require.NoError(t, err)

	out, err := svc.EmbedBatch(context.Background(), []string{"a", "cached", "abc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {6}, {3}}, out)
	assert.Equal(t, []string{"a", "abc"}, inner.batched)

	inner.batched = nil
	_, err = svc.EmbedBatch(context.Background(), []string{"a", "abc"})
	require.NoError(t, err)
	assert.Empty(t, inner.batched)
}

func TestEmbeddingService_KeyIncludesModel(t *testing.T) {
	dir := t.TempDir()
	first := &countingEmbedder{model: "one"}
	svc, err := New(first, dir)
	require.NoError(t, err)
	_, err = svc.Embed(context.Background(), "text")
	require.NoError(t, err)
	require.NoError(t, svc.Close())
	assert.True(t, first.closed)

	second := &countingEmbedder{model: "two"}
	svc, err = New(second, dir)
	require.NoError(t, err)
	defer svc.Close()
	_, err = svc.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 1, second.calls, "a different model misses the cache")
}

func TestEmbeddingService_ErrorsAreNotCached(t *testing.T) {
	inner := &countingEmbedder{model: "m", err: errors.New("down")}
	svc, err := New(inner, "")
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Embed(context.Background(), "x")
	require.Error(t, err)

	inner.err = nil
	vec, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, 2, inner.calls)
}

func TestCodec(t *testing.T) {
	assert.Equal(t, []float32{1.5, -2}, decode(encode([]float32{1.5, -2})))
	assert.Nil(t, decode([]byte{1, 2, 3}))
}
