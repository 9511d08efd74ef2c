package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts in vectors get fixed embeddings; anything else maps to a far point.
type mockEmbeddingService struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   []string
}

func newMockEmbedder(vectors map[string][]float32) *mockEmbeddingService {
	if vectors == nil {
		vectors = make(map[string][]float32)
	}
	return &mockEmbeddingService{vectors: vectors}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{100, 100}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int             { return 2 }
func (m *mockEmbeddingService) ModelName() string           { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error                { return nil }

func (m *mockEmbeddingService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu          sync.Mutex
	response    string
	generated   string
	err         error
	lastChat    []driven.ChatMessage
	lastOptions driven.ChatOptions
	prompts     []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.generated, nil
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastChat = messages
	m.lastOptions = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string           { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// failingStore wraps a memory store and fails SaveChunk after a number
// of successful saves.
type failingStore struct {
	*memory.ChunkStore
	failAfter int
	saves     int
}

var errStoreDown = errors.New("store down")

func (f *failingStore) SaveChunk(ctx context.Context, c *domain.Chunk, b []domain.StructuredBlock) (string, error) {
	if f.saves >= f.failAfter {
		return "", errStoreDown
	}
	f.saves++
	return f.ChunkStore.SaveChunk(ctx, c, b)
}

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	queries []string
}

func (m *mockSearchService) Search(_ context.Context, query string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	m.queries = append(m.queries, query)
	return m.results, m.err
}
