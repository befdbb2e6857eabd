package domain

import "time"

// KnowledgeChunk is an embedded slice of knowledge text. Chunks are immutable
// once written; re-adding an id replaces the whole record.
type KnowledgeChunk struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"timestamp"`
}

// SearchResult is a chunk annotated with its similarity to a query.
type SearchResult struct {
	KnowledgeChunk
	Similarity float64 `json:"similarity"`
}

// Metadata keys used on knowledge chunks.
const (
	MetaType     = "type"
	MetaCategory = "category"
	MetaSource   = "source"
	MetaFilename = "filename"
	MetaChunk    = "chunk"
	MetaTags     = "tags"
)
