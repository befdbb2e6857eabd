package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// KnowledgeChunkRepository stores embedded knowledge chunks in a pgvector
// column. It satisfies vectorstore.Backend and vectorstore.NearestSearcher.
type KnowledgeChunkRepository struct {
	db dbtx
}

func NewKnowledgeChunkRepository(pool *pgxpool.Pool) *KnowledgeChunkRepository {
	return &KnowledgeChunkRepository{db: pool}
}

func NewKnowledgeChunkRepositoryWithTx(tx dbtx) *KnowledgeChunkRepository {
	return &KnowledgeChunkRepository{db: tx}
}

// Put inserts the chunk or replaces the stored record with the same id.
func (r *KnowledgeChunkRepository) Put(ctx context.Context, c domain.KnowledgeChunk) error {
	if c.ID == "" {
		return fmt.Errorf("chunk id: %w", domain.ErrMissingRequiredField)
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	meta, err := json.Marshal(metadataOrEmpty(c.Metadata))
	if err != nil {
		return fmt.Errorf("failed to encode chunk metadata: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO knowledge_chunks (id, text, embedding, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			created_at = EXCLUDED.created_at`,
		c.ID, c.Text, pgvector.NewVector(c.Embedding), meta, createdAt,
	)
	return err
}

func (r *KnowledgeChunkRepository) Get(ctx context.Context, id string) (*domain.KnowledgeChunk, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, text, embedding, metadata, created_at FROM knowledge_chunks WHERE id = $1`,
		id,
	)
	c, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *KnowledgeChunkRepository) All(ctx context.Context) ([]domain.KnowledgeChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, text, embedding, metadata, created_at FROM knowledge_chunks ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.KnowledgeChunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *c)
	}
	return chunks, rows.Err()
}

func (r *KnowledgeChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&n)
	return n, err
}

func (r *KnowledgeChunkRepository) Clear(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM knowledge_chunks`)
	return err
}

// Nearest ranks chunks by cosine distance using the hnsw index.
func (r *KnowledgeChunkRepository) Nearest(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, text, embedding, metadata, created_at, 1 - (embedding <=> $1) AS similarity
		 FROM knowledge_chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var (
			c    domain.KnowledgeChunk
			vec  pgvector.Vector
			meta []byte
			sim  float64
		)
		if err := rows.Scan(&c.ID, &c.Text, &vec, &meta, &c.CreatedAt, &sim); err != nil {
			return nil, err
		}
		if err := decodeChunk(&c, vec, meta); err != nil {
			return nil, err
		}
		results = append(results, domain.SearchResult{KnowledgeChunk: c, Similarity: sim})
	}
	return results, rows.Err()
}

func scanChunk(row pgx.Row) (*domain.KnowledgeChunk, error) {
	var (
		c    domain.KnowledgeChunk
		vec  pgvector.Vector
		meta []byte
	)
	if err := row.Scan(&c.ID, &c.Text, &vec, &meta, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeChunk(&c, vec, meta); err != nil {
		return nil, err
	}
	return &c, nil
}

func decodeChunk(c *domain.KnowledgeChunk, vec pgvector.Vector, meta []byte) error {
	c.Embedding = vec.Slice()
	c.Metadata = map[string]string{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &c.Metadata); err != nil {
			return fmt.Errorf("failed to decode chunk metadata: %w", err)
		}
	}
	return nil
}

func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
