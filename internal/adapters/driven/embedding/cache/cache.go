// Package cache wraps an embedding service with an on-disk cache backed
// by Badger. Keys hash the model name, dimensions and text, so changing
// the model never returns stale vectors.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService is a caching decorator over another embedding service.
type EmbeddingService struct {
	inner  driven.EmbeddingService
	db     *badger.DB
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}

// New opens the cache in dir. An empty dir keeps the cache in memory.
func New(inner driven.EmbeddingService, dir string) (*EmbeddingService, error) {
	if inner == nil {
		return nil, errors.New("cache: embedding service is required")
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", dir, err)
	}
	return &EmbeddingService{inner: inner, db: db}, nil
}

// Embed returns the cached vector for text or computes and stores it.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.key(text)
	if vec, ok := s.get(key); ok {
		s.hits.Add(1)
		return vec, nil
	}
	s.misses.Add(1)

	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.put(map[string][]float32{string(key): vec}); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch serves cached texts locally and sends only misses upstream.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if vec, ok := s.get(s.key(text)); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	s.hits.Add(int64(len(texts) - len(missIdx)))
	s.misses.Add(int64(len(missIdx)))

	if len(missTexts) == 0 {
		return out, nil
	}

	computed, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missTexts) {
		return nil, fmt.Errorf("cache: got %d embeddings for %d inputs", len(computed), len(missTexts))
	}

	entries := make(map[string][]float32, len(computed))
	for j, vec := range computed {
		out[missIdx[j]] = vec
		entries[string(s.key(missTexts[j]))] = vec
	}
	if err := s.put(entries); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats returns hit and miss counts since the cache was opened.
func (s *EmbeddingService) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the cache and the wrapped service.
func (s *EmbeddingService) Close() error {
	return errors.Join(s.db.Close(), s.inner.Close())
}

func (s *EmbeddingService) key(text string) []byte {
	h := sha256.New()
	h.Write([]byte(s.inner.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(s.inner.Dimensions())))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum(nil)
}

// get reads a vector; any read failure is treated as a miss.
func (s *EmbeddingService) get(key []byte) ([]float32, bool) {
	var vec []float32
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vec = decode(val)
			return nil
		})
	})
	if err != nil || vec == nil {
		return nil, false
	}
	return vec, true
}

func (s *EmbeddingService) put(entries map[string][]float32) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for key, vec := range entries {
		if err := wb.Set([]byte(key), encode(vec)); err != nil {
			return fmt.Errorf("cache: write: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("cache: flush: %w", err)
	}
	return nil
}

func encode(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
