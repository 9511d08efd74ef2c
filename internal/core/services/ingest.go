package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultWorkers is the number of documents ingested concurrently.
const DefaultWorkers = 4

// IngestService turns raw pages into stored chunk trees.
type IngestService struct {
	store       driven.ChunkStore
	embedder    driven.EmbeddingService
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	workers     int
	limiter     *rate.Limiter
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithWorkers sets how many documents IngestAll processes at once.
func WithWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRateLimit caps embedding requests per second across all workers.
// Zero or negative disables the limit.
func WithRateLimit(perSecond float64) IngestOption {
	return func(s *IngestService) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:       store,
		embedder:    embedder,
		normalisers: normalisers,
		pipeline:    pipeline,
		workers:     DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest normalises, chunks, extracts, embeds and stores one page.
// A failure part-way through leaves earlier chunks stored; the returned
// report counts them.
func (s *IngestService) Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.IngestReport, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if raw == nil || raw.URI == "" {
		return nil, fmt.Errorf("%w: document URI is required", domain.ErrInvalidInput)
	}
	defer logger.Timed("ingest " + raw.URI)()

	result, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", raw.URI, err)
	}
	doc := result.Document
	doc.URI = raw.URI

	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", raw.URI, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", raw.URI, domain.ErrEmptyDocument)
	}
	logger.Debug("%s: %d chunks after post-processing", raw.URI, len(chunks))

	if err := s.replaceExisting(ctx, &doc); err != nil {
		return nil, err
	}
	if err := s.store.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("save document %s: %w", raw.URI, err)
	}

	builder := newTreeBuilder(s.store, s.embed, &doc)
	for i := range chunks {
		if _, err := builder.Add(ctx, chunks[i]); err != nil {
			report := builder.Report()
			return &report, fmt.Errorf("ingest %s: %w", raw.URI, err)
		}
	}

	report := builder.Report()
	logger.Info("Ingested %s: %d chunks (%d synthesised), %d blocks",
		report.URI, report.Chunks, report.Placeholders, report.Blocks)
	return &report, nil
}

// replaceExisting removes the previously stored document for the same URI.
func (s *IngestService) replaceExisting(ctx context.Context, doc *domain.Document) error {
	existing, err := s.store.GetDocumentByURI(ctx, doc.URI)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", doc.URI, err)
	}

	logger.Debug("Replacing existing document %s for %s", existing.ID, doc.URI)
	if err := s.store.DeleteDocument(ctx, existing.ID); err != nil {
		return fmt.Errorf("replace %s: %w", doc.URI, err)
	}
	doc.CreatedAt = existing.CreatedAt
	return nil
}

// IngestAll ingests pages concurrently. Each page gets its own tree
// builder; reports are returned in input order for the pages that
// produced any chunks.
func (s *IngestService) IngestAll(ctx context.Context, raws []domain.RawDocument) ([]domain.IngestReport, error) {
	logger.Section("Ingestion")
	logger.Debug("Ingesting %d documents with %d workers", len(raws), s.workers)

	reports := make([]*domain.IngestReport, len(raws))
	errs := make([]error, len(raws))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(s.workers, len(raws)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i], errs[i] = s.Ingest(ctx, &raws[i])
				if errs[i] != nil {
					logger.Warn("%v", errs[i])
				}
			}
		}()
	}

	var cancelled error
feed:
	for i := range raws {
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]domain.IngestReport, 0, len(raws))
	for _, r := range reports {
		if r != nil && r.Chunks > 0 {
			out = append(out, *r)
		}
	}
	return out, errors.Join(append(errs, cancelled)...)
}

// Remove deletes the document stored for a URI.
func (s *IngestService) Remove(ctx context.Context, uri string) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	doc, err := s.store.GetDocumentByURI(ctx, uri)
	if err != nil {
		return fmt.Errorf("remove %s: %w", uri, err)
	}
	if err := s.store.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("remove %s: %w", uri, err)
	}
	logger.Info("Removed %s", uri)
	return nil
}

func (s *IngestService) embed(ctx context.Context, text string) ([]float32, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return s.embedder.Embed(ctx, text)
}
