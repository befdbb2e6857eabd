// Package vectorstore persists embedded knowledge chunks and ranks them by
// cosine similarity against a query embedding.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

// DefaultSearchLimit applies when Search is called with limit <= 0.
const DefaultSearchLimit = 5

// Embedder turns text into a vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Backend stores chunks keyed by sanitized id.
type Backend interface {
	Put(ctx context.Context, chunk domain.KnowledgeChunk) error
	Get(ctx context.Context, id string) (*domain.KnowledgeChunk, error)
	All(ctx context.Context) ([]domain.KnowledgeChunk, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// NearestSearcher is implemented by backends that rank chunks themselves.
// Store.Search prefers it over loading every chunk.
type NearestSearcher interface {
	Nearest(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error)
}

// Store embeds documents and searches them.
type Store struct {
	embedder Embedder
	backend  Backend
	chunking ChunkConfig
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithChunkConfig(cfg ChunkConfig) Option {
	return func(s *Store) { s.chunking = cfg }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store.
func New(embedder Embedder, backend Backend, opts ...Option) *Store {
	s := &Store{
		embedder: embedder,
		backend:  backend,
		chunking: DefaultChunkConfig(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "vectorstore")
	return s
}

// AddDocument embeds text and stores it under id, replacing any chunk with the
// same sanitized id.
func (s *Store) AddDocument(ctx context.Context, id, text string, metadata map[string]string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingRequiredField
	}
	if s.embedder == nil {
		return domain.ErrEmbeddingsNotConfigured
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed document %s: %w", id, err)
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	chunk := domain.KnowledgeChunk{
		ID:        Sanitize(id),
		Text:      text,
		Embedding: embedding,
		Metadata:  metadata,
		CreatedAt: s.now().UTC(),
	}
	if err := s.backend.Put(ctx, chunk); err != nil {
		return fmt.Errorf("failed to store document %s: %w", id, err)
	}

	s.logger.Debug("document added", "id", chunk.ID)
	return nil
}

// Search embeds query and returns the limit most similar chunks, best first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingsNotConfigured
	}

	queryEmbedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if ns, ok := s.backend.(NearestSearcher); ok {
		results, err := ns.Nearest(ctx, queryEmbedding, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to search nearest chunks: %w", err)
		}
		return results, nil
	}

	chunks, err := s.backend.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, domain.SearchResult{
			KnowledgeChunk: c,
			Similarity:     CosineSimilarity(queryEmbedding, c.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Get returns the chunk stored under id. The id is sanitized the same way
// AddDocument sanitizes it.
func (s *Store) Get(ctx context.Context, id string) (*domain.KnowledgeChunk, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrMissingRequiredField
	}
	return s.backend.Get(ctx, Sanitize(id))
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.backend.Count(ctx)
}

// Clear removes every stored chunk. Used by full corpus rebuilds.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear vector store: %w", err)
	}
	s.logger.Info("vector store cleared")
	return nil
}

// Ready reports whether the store can embed.
func (s *Store) Ready() bool {
	return s.embedder != nil
}
