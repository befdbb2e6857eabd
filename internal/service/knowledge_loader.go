package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/storage"
)

//go:embed seed/knowledge.json
var seedCorpus []byte

// DefaultDocsDir is where local PDF knowledge is read from.
const DefaultDocsDir = "./data/docs"

// DocumentIndexer stores knowledge text and PDFs.
type DocumentIndexer interface {
	AddDocument(ctx context.Context, id, text string, metadata map[string]string) error
	IndexFile(ctx context.Context, path string, metadata map[string]string) (int, error)
	IndexReader(ctx context.Context, name string, r io.ReaderAt, size int64, metadata map[string]string) (int, error)
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// ObjectSource lists and downloads remote documents.
type ObjectSource interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

type SeedDocument struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// SeedDocuments returns the built-in knowledge corpus.
func SeedDocuments() ([]SeedDocument, error) {
	var docs []SeedDocument
	if err := json.Unmarshal(seedCorpus, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode seed corpus: %w", err)
	}
	return docs, nil
}

// LoadSummary counts what one load stored.
type LoadSummary struct {
	SeedDocuments int      `json:"seed_documents"`
	LocalChunks   int      `json:"local_chunks"`
	RemoteChunks  int      `json:"remote_chunks"`
	Total         int      `json:"total_chunks"`
	Failed        []string `json:"failed,omitempty"`
}

type KnowledgeLoaderConfig struct {
	DocsDir  string
	S3Prefix string
}

// KnowledgeLoader fills the vector store from the seed corpus, the local docs
// directory and, when configured, an S3 prefix.
type KnowledgeLoader struct {
	store   DocumentIndexer
	objects ObjectSource
	cfg     KnowledgeLoaderConfig
	logger  *slog.Logger

	mu sync.Mutex
}

func NewKnowledgeLoader(store DocumentIndexer, objects ObjectSource, cfg KnowledgeLoaderConfig, logger *slog.Logger) *KnowledgeLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DocsDir == "" {
		cfg.DocsDir = DefaultDocsDir
	}
	return &KnowledgeLoader{
		store:   store,
		objects: objects,
		cfg:     cfg,
		logger:  logger.With("component", "knowledge_loader"),
	}
}

// LoadAll indexes every configured source. Seed failures abort the load;
// individual document failures are logged and listed in the summary.
func (l *KnowledgeLoader) LoadAll(ctx context.Context) (*LoadSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadAll(ctx)
}

// Reload clears the store and loads every source again.
func (l *KnowledgeLoader) Reload(ctx context.Context) (*LoadSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear knowledge store: %w", err)
	}
	return l.loadAll(ctx)
}

func (l *KnowledgeLoader) loadAll(ctx context.Context) (*LoadSummary, error) {
	summary := &LoadSummary{}

	n, err := l.LoadSeed(ctx)
	if err != nil {
		return nil, err
	}
	summary.SeedDocuments = n

	local, failed, err := l.LoadLocalDocuments(ctx)
	if err != nil {
		return nil, err
	}
	summary.LocalChunks = local
	summary.Failed = append(summary.Failed, failed...)

	if l.objects != nil {
		remote, failed, err := l.SyncS3(ctx)
		if err != nil {
			// Remote storage is optional; local knowledge stays usable.
			l.logger.Error("s3 knowledge sync failed", "prefix", l.cfg.S3Prefix, "error", err)
			summary.Failed = append(summary.Failed, "s3://"+l.cfg.S3Prefix)
		}
		summary.RemoteChunks = remote
		summary.Failed = append(summary.Failed, failed...)
	}

	if summary.Total, err = l.store.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count knowledge chunks: %w", err)
	}
	l.logger.Info("knowledge base loaded",
		"seed", summary.SeedDocuments, "local_chunks", summary.LocalChunks,
		"remote_chunks", summary.RemoteChunks, "total", summary.Total, "failed", len(summary.Failed))
	return summary, nil
}

// LoadSeed indexes the built-in corpus and returns the number of documents.
func (l *KnowledgeLoader) LoadSeed(ctx context.Context) (int, error) {
	docs, err := SeedDocuments()
	if err != nil {
		return 0, err
	}
	for i, d := range docs {
		if err := l.store.AddDocument(ctx, d.ID, d.Text, d.Metadata); err != nil {
			return i, fmt.Errorf("failed to add seed document %s: %w", d.ID, err)
		}
	}
	return len(docs), nil
}

// LoadLocalDocuments indexes every PDF in the docs directory. A missing
// directory is not an error.
func (l *KnowledgeLoader) LoadLocalDocuments(ctx context.Context) (chunks int, failed []string, err error) {
	entries, err := os.ReadDir(l.cfg.DocsDir)
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Info("no local docs folder found", "docs_dir", l.cfg.DocsDir)
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read docs dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && isPDF(e.Name()) {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		l.logger.Info("no PDFs found in docs folder", "docs_dir", l.cfg.DocsDir)
		return 0, nil, nil
	}
	sort.Strings(files)

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return chunks, failed, err
		}
		n, err := l.store.IndexFile(ctx, filepath.Join(l.cfg.DocsDir, name), pdfMetadata("pdf", name))
		if err != nil {
			l.logger.Error("failed to index PDF", "file", name, "error", err)
			failed = append(failed, name)
			continue
		}
		chunks += n
	}
	return chunks, failed, nil
}

// SyncS3 indexes every PDF stored under the configured prefix.
func (l *KnowledgeLoader) SyncS3(ctx context.Context) (chunks int, failed []string, err error) {
	if l.objects == nil {
		return 0, nil, domain.ErrStorageNotConfigured
	}

	objects, err := l.objects.ListObjects(ctx, l.cfg.S3Prefix)
	if err != nil {
		return 0, nil, err
	}

	for _, obj := range objects {
		if !isPDF(obj.Key) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return chunks, failed, err
		}

		data, err := l.objects.GetObject(ctx, obj.Key)
		if err != nil {
			l.logger.Error("failed to download PDF", "key", obj.Key, "error", err)
			failed = append(failed, obj.Key)
			continue
		}

		meta := pdfMetadata("s3", obj.Name())
		meta["key"] = obj.Key
		n, err := l.store.IndexReader(ctx, obj.Name(), bytes.NewReader(data), int64(len(data)), meta)
		if err != nil {
			l.logger.Error("failed to index PDF", "key", obj.Key, "error", err)
			failed = append(failed, obj.Key)
			continue
		}
		chunks += n
	}
	return chunks, failed, nil
}

// Search runs a similarity search over the loaded knowledge.
func (l *KnowledgeLoader) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query: %w", domain.ErrMissingRequiredField)
	}
	if limit <= 0 {
		limit = DefaultContextLimit
	}
	return l.store.Search(ctx, query, limit)
}

func pdfMetadata(source, filename string) map[string]string {
	meta := map[string]string{domain.MetaSource: source, domain.MetaType: "document"}
	if tags := TagsFor(filename); len(tags) > 0 {
		meta[domain.MetaTags] = strings.Join(tags, ",")
	}
	return meta
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// TagsFor derives topic tags from a document's file name.
func TagsFor(filename string) []string {
	f := strings.ToLower(filename)
	switch {
	case strings.Contains(f, "agreement"):
		return []string{"contract", "house cleaner", "fees", "payment", "terms"}
	case strings.Contains(f, "request"):
		return []string{"job provider", "form", "requirements", "fees"}
	case strings.Contains(f, "guidelines"):
		return []string{"worker", "guidelines", "conduct", "benefits", "process"}
	case strings.Contains(f, "business profile"):
		return []string{"company", "about", "services", "contact"}
	}
	return nil
}
