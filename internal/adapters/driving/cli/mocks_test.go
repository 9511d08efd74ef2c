package cli

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

func strPtr(s string) *string { return &s }

// sampleResults is a parent section and its child, nearest first.
func sampleResults() []domain.SearchResult {
	parent := domain.Chunk{
		ID:          "chunk-orders",
		DocumentID:  "doc-1",
		HeaderLevel: 1,
		Headers:     domain.HeaderTitles{H1: "Orders"},
		Content:     "# Orders\nOrders represent purchases.",
	}
	return []domain.SearchResult{
		{
			Chunk: domain.Chunk{
				ID:          "chunk-create",
				DocumentID:  "doc-1",
				ParentID:    strPtr("chunk-orders"),
				HeaderLevel: 2,
				Headers:     domain.HeaderTitles{H1: "Orders", H2: "Create order"},
				Content:     "## Create order\nPOST /orders creates an order.",
				Blocks: []domain.StructuredBlock{
					{Kind: domain.BlockKindJSON, JSON: map[string]any{"id": "ord_1"}},
					{
						Kind:    domain.BlockKindTable,
						Headers: []string{"Field", "Type"},
						Rows:    []map[string]string{{"Field": "amount", "Type": "integer"}},
					},
				},
			},
			Distance:    0.25,
			Parent:      &parent,
			DocumentURI: "file:///docs/orders.md",
		},
		{
			Chunk:       parent,
			Distance:    0.75,
			DocumentURI: "file:///docs/orders.md",
		},
	}
}

type mockSettingsService struct {
	mu       sync.Mutex
	settings domain.AppSettings
	sets     map[string]string
	err      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), sets: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = *settings
	return m.err
}

func (m *mockSettingsService) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sets[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error        { return nil }

type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

type mockAnswerService struct {
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockAnswerService) Answer(_ context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{
		Query:     question,
		Text:      "Send a POST to /orders.",
		Results:   sampleResults()[:1],
		Generated: true,
	}, nil
}

type mockChatSession struct {
	questions []string
	resets    int
}

func (m *mockChatSession) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	return &domain.Answer{Query: question, Text: "answer to " + question, Generated: true}, nil
}

func (m *mockChatSession) Reset() { m.resets++ }

type mockDocumentService struct {
	documents []domain.Document
	tree      []domain.Chunk
	chunk     *domain.Chunk
	stats     domain.StoreStats
	err       error
	deleted   []string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, idOrURI string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == idOrURI || m.documents[i].URI == idOrURI {
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Tree(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.tree, m.err
}

func (m *mockDocumentService) Chunk(_ context.Context, _ string) (*domain.Chunk, error) {
	if m.chunk == nil {
		return nil, domain.ErrNotFound
	}
	return m.chunk, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	return m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

type mockIngestService struct {
	mu       sync.Mutex
	ingested []string
	removed  []string
	err      error
}

func (m *mockIngestService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, raw.URI)
	return &domain.IngestReport{DocumentID: "doc-" + raw.URI, URI: raw.URI, Chunks: 2, Blocks: 1, Placeholders: 1}, nil
}

func (m *mockIngestService) IngestAll(ctx context.Context, raws []domain.RawDocument) ([]domain.IngestReport, error) {
	reports := make([]domain.IngestReport, 0, len(raws))
	for i := range raws {
		r, err := m.Ingest(ctx, &raws[i])
		if err != nil {
			return reports, err
		}
		reports = append(reports, *r)
	}
	return reports, nil
}

func (m *mockIngestService) Remove(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, uri)
	return m.err
}

// testMocks holds the mocks installed by setupTestServices.
type testMocks struct {
	settings  *mockSettingsService
	search    *mockSearchService
	answer    *mockAnswerService
	documents *mockDocumentService
	ingest    *mockIngestService
	chat      *mockChatSession
}

// setupTestServices installs mocks for every driving port and returns a
// cleanup that restores the previous services and resets command flags.
func setupTestServices() func() {
	_, cleanup := setupTestMocks()
	return cleanup
}

func setupTestMocks() (*testMocks, func()) {
	oldSettings, oldSearch, oldAnswer := settingsService, searchService, answerService
	oldDocs, oldIngest, oldChat := documentService, ingestService, newChatSession

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := &testMocks{
		settings: newMockSettingsService(),
		search:   &mockSearchService{results: sampleResults()},
		answer:   &mockAnswerService{},
		documents: &mockDocumentService{
			documents: []domain.Document{{
				ID: "doc-1", URI: "file:///docs/orders.md", Title: "Orders",
				CreatedAt: created, UpdatedAt: created,
			}},
			stats: domain.StoreStats{Documents: 1, Chunks: 2, JSONBlocks: 1, TableBlocks: 1},
		},
		ingest: &mockIngestService{},
		chat:   &mockChatSession{},
	}
	tree := sampleResults()
	m.documents.tree = []domain.Chunk{tree[1].Chunk, tree[0].Chunk}

	settingsService = m.settings
	searchService = m.search
	answerService = m.answer
	documentService = m.documents
	ingestService = m.ingest
	newChatSession = func() driving.ChatSession { return m.chat }

	return m, func() {
		settingsService, searchService, answerService = oldSettings, oldSearch, oldAnswer
		documentService, ingestService, newChatSession = oldDocs, oldIngest, oldChat
		resetFlags()
	}
}

// resetFlags restores flag variables that persist across Execute calls.
func resetFlags() {
	searchLimit, searchMaxDistance, searchJSON, searchBlocks = 0, 0, false, false
	askLimit, askMaxDistance = 0, 0
	chatPlain = false
	ingestWatch, ingestWorkers, ingestRate, ingestDryRun = false, 0, 0, false
	verbose, configDir = false, ""
}
