package vectorstore

import (
	"bytes"
	"context"
	"errors"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// hashEmbedder is a deterministic bag-of-words embedder.
type hashEmbedder struct{}

func (hashEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 64)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%64]++
	}
	return vec, nil
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// nearestBackend records Nearest calls instead of scanning.
type nearestBackend struct {
	memoryBackend
	called bool
}

func (n *nearestBackend) Nearest(_ context.Context, _ []float32, limit int) ([]domain.SearchResult, error) {
	n.called = true
	return []domain.SearchResult{{KnowledgeChunk: domain.KnowledgeChunk{ID: "from-index"}, Similarity: 0.9}}, nil
}

type memoryBackend struct {
	chunks map[string]domain.KnowledgeChunk
}

func (m *memoryBackend) Put(_ context.Context, c domain.KnowledgeChunk) error {
	if m.chunks == nil {
		m.chunks = map[string]domain.KnowledgeChunk{}
	}
	m.chunks[c.ID] = c
	return nil
}

func (m *memoryBackend) Get(_ context.Context, id string) (*domain.KnowledgeChunk, error) {
	c, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrChunkNotFound
	}
	return &c, nil
}

func (m *memoryBackend) All(context.Context) ([]domain.KnowledgeChunk, error) {
	out := make([]domain.KnowledgeChunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryBackend) Count(context.Context) (int, error) { return len(m.chunks), nil }

func (m *memoryBackend) Clear(context.Context) error {
	m.chunks = nil
	return nil
}

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, nil)
	require.NoError(t, err)
	return New(hashEmbedder{}, backend), dir
}

func TestStore_AddDocument_SearchRoundTrip(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocument(ctx, "kozi-about", "Kozi connects families with vetted domestic workers in Rwanda", map[string]string{"type": "company_info"}))
	require.NoError(t, store.AddDocument(ctx, "cv-tips", "Keep your CV short and list recent jobs first", nil))

	results, err := store.Search(ctx, "Kozi connects families with vetted domestic workers in Rwanda", 6)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "kozi-about", results[0].ID)
	assert.GreaterOrEqual(t, results[0].Similarity, 0.55)
	assert.Equal(t, "company_info", results[0].Metadata["type"])
	assert.False(t, results[0].CreatedAt.IsZero())
}

func TestStore_AddDocument_Idempotent(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocument(ctx, "profile-completion", "first version", nil))
	require.NoError(t, store.AddDocument(ctx, "profile-completion", "second version", nil))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := store.Search(ctx, "second version", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second version", results[0].Text)
}

func TestStore_AddDocument_SanitizedFileName(t *testing.T) {
	store, dir := newFileStore(t)

	require.NoError(t, store.AddDocument(context.Background(), "Kozi Agreement.pdf#0003", "text", nil))

	_, err := os.Stat(filepath.Join(dir, "Kozi_Agreement.pdf#0003.json"))
	assert.NoError(t, err)
}

func TestStore_Get(t *testing.T) {
	store, dir := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocument(ctx, "Kozi Agreement.pdf#0003", "agreement text", map[string]string{"source": "s3"}))

	chunk, err := store.Get(ctx, "Kozi Agreement.pdf#0003")
	require.NoError(t, err)
	assert.Equal(t, "Kozi_Agreement.pdf#0003", chunk.ID)
	assert.Equal(t, "agreement text", chunk.Text)
	assert.Equal(t, "s3", chunk.Metadata["source"])
	assert.NotEmpty(t, chunk.Embedding)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrChunkNotFound)

	_, err = store.Get(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	_, err = store.Get(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrChunkNotFound)
}

func TestStore_AddDocument_Errors(t *testing.T) {
	ctx := context.Background()

	store := New(nil, &memoryBackend{})
	assert.ErrorIs(t, store.AddDocument(ctx, "id", "text", nil), domain.ErrEmbeddingsNotConfigured)
	assert.False(t, store.Ready())

	mockEmbedder := new(MockEmbedder)
	mockEmbedder.On("GenerateEmbedding", ctx, "text").Return(nil, errors.New("quota exceeded"))
	store = New(mockEmbedder, &memoryBackend{})

	err := store.AddDocument(ctx, "id", "text", nil)
	assert.ErrorContains(t, err, "quota exceeded")
	assert.ErrorIs(t, store.AddDocument(ctx, "  ", "text", nil), domain.ErrMissingRequiredField)
	mockEmbedder.AssertExpectations(t)
}

func TestStore_Search_OrderAndLimit(t *testing.T) {
	store := New(hashEmbedder{}, &memoryBackend{})
	ctx := context.Background()

	require.NoError(t, store.AddDocument(ctx, "a", "salary payment terms", nil))
	require.NoError(t, store.AddDocument(ctx, "b", "salary payment", nil))
	require.NoError(t, store.AddDocument(ctx, "c", "house cleaner duties", nil))

	results, err := store.Search(ctx, "salary payment", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, "a", results[1].ID)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)

	results, err = store.Search(ctx, "salary", 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestStore_Search_PrefersNearestSearcher(t *testing.T) {
	backend := &nearestBackend{}
	store := New(hashEmbedder{}, backend)

	results, err := store.Search(context.Background(), "fees", 3)

	require.NoError(t, err)
	assert.True(t, backend.called)
	require.Len(t, results, 1)
	assert.Equal(t, "from-index", results[0].ID)
}

func TestStore_Clear(t *testing.T) {
	store, dir := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocument(ctx, "one", "one", nil))
	require.NoError(t, store.AddDocument(ctx, "two", "two", nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))

	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
}

func TestFileBackend_All_SkipsCorruptFiles(t *testing.T) {
	store, dir := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocument(ctx, "valid", "valid chunk", nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	backend, err := NewFileBackend(dir, nil)
	require.NoError(t, err)

	chunks, err := backend.All(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "valid", chunks[0].ID)
}

func TestStore_IndexText_Chunks(t *testing.T) {
	backend := &memoryBackend{}
	store := New(hashEmbedder{}, backend)

	text := strings.Repeat("kozi ", 500) // 2500 runes
	n, err := store.indexText(context.Background(), "guidelines.pdf", "  "+text+"  ", map[string]string{"source": "pdf"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	chunk, ok := backend.chunks["guidelines.pdf#0001"]
	require.True(t, ok)
	assert.Equal(t, "guidelines.pdf", chunk.Metadata[domain.MetaFilename])
	assert.Equal(t, "1", chunk.Metadata[domain.MetaChunk])
	assert.Equal(t, "pdf", chunk.Metadata["source"])
	assert.Len(t, []rune(chunk.Text), 1200)
}

func TestStore_IndexText_EmptyText(t *testing.T) {
	backend := &memoryBackend{}
	store := New(hashEmbedder{}, backend)

	n, err := store.indexText(context.Background(), "scan.pdf", " \n\t ", nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, backend.chunks)
}

func TestStore_IndexFile_NotPDF(t *testing.T) {
	store, _ := newFileStore(t)
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o644))

	n, err := store.IndexFile(context.Background(), path, nil)

	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrMalformedPDF)
}

func TestStore_IndexFile_Missing(t *testing.T) {
	store, _ := newFileStore(t)

	_, err := store.IndexFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), nil)
	assert.Error(t, err)
}

func TestExtractPDFText_Empty(t *testing.T) {
	_, err := ExtractPDFText(bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, ErrMalformedPDF)
}
