package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Verify interface compliance.
var _ driven.ChunkStore = (*Store)(nil)

// Store is a pgvector-backed chunk store.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
	metric     domain.DistanceMetric
	schema     string
}

// Option configures a Store.
type Option func(*Store)

// WithMetric sets the distance metric used for search and indexing.
func WithMetric(metric domain.DistanceMetric) Option {
	return func(s *Store) {
		if metric.IsValid() {
			s.metric = metric
		}
	}
}

// WithSchema places the tables in the named schema instead of public.
func WithSchema(schema string) Option {
	return func(s *Store) {
		s.schema = schema
	}
}

// NewStore connects to dsn, applies the schema and returns a store whose
// vector column holds embeddings of the given dimension.
func NewStore(ctx context.Context, dsn string, dimensions int, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: database URL is required", domain.ErrStoreUnavailable)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrInvalidInput)
	}

	s := &Store{dimensions: dimensions, metric: domain.DistanceL2}
	for _, opt := range opts {
		opt(s)
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if s.schema != "" {
		config.ConnConfig.RuntimeParams["search_path"] = s.schema + ",public"
	}

	// The vector type must exist before the pool registers it.
	if err := s.migrate(ctx, config.ConnConfig.Copy()); err != nil {
		return nil, err
	}

	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	s.pool = pool
	return s, nil
}

// migrate applies the schema over a single connection.
func (s *Store) migrate(ctx context.Context, config *pgx.ConnConfig) error {
	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer conn.Close(ctx)

	if s.schema != "" {
		if _, err := conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{s.schema}.Sanitize()); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	ddl := strings.NewReplacer(
		"{{DIMENSIONS}}", strconv.Itoa(s.dimensions),
		"{{OPCLASS}}", s.opclass(),
	).Replace(schemaSQL)
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	// vector(n) stores n as the column type modifier.
	var existing int
	err = conn.QueryRow(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = 'document_chunks'::regclass AND attname = 'embedding'
	`).Scan(&existing)
	if err != nil {
		return fmt.Errorf("reading embedding dimensions: %w", err)
	}
	if existing != s.dimensions {
		return fmt.Errorf("%w: table holds %d-dimensional vectors, configured %d",
			domain.ErrDimensionMismatch, existing, s.dimensions)
	}
	return nil
}

// operator returns the pgvector distance operator for the metric.
func (s *Store) operator() string {
	if s.metric == domain.DistanceCosine {
		return "<=>"
	}
	return "<->"
}

func (s *Store) opclass() string {
	if s.metric == domain.DistanceCosine {
		return "vector_cosine_ops"
	}
	return "vector_l2_ops"
}

// Dimensions returns the configured vector width.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
