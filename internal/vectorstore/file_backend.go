package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

const chunkExt = ".json"

// FileBackend stores each chunk as one JSON file in a directory.
type FileBackend struct {
	dir    string
	logger *slog.Logger
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string, logger *slog.Logger) (*FileBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vector store directory: %w", err)
	}
	return &FileBackend{dir: dir, logger: logger.With("component", "vectorstore.file")}, nil
}

func (b *FileBackend) path(id string) string {
	return filepath.Join(b.dir, Sanitize(id)+chunkExt)
}

// Put writes chunk through a temp file and rename so readers never observe a
// partially written record.
func (b *FileBackend) Put(ctx context.Context, chunk domain.KnowledgeChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}

	tmp, err := os.CreateTemp(b.dir, ".chunk-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close chunk file: %w", err)
	}
	if err := os.Rename(tmpName, b.path(chunk.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move chunk into place: %w", err)
	}
	return nil
}

// Get reads the chunk stored under id.
func (b *FileBackend) Get(ctx context.Context, id string) (*domain.KnowledgeChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, fmt.Errorf("failed to read chunk %s: %w", id, err)
	}

	var chunk domain.KnowledgeChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("failed to decode chunk %s: %w", id, err)
	}
	return &chunk, nil
}

// All loads every chunk, skipping files that cannot be read or decoded.
func (b *FileBackend) All(ctx context.Context) ([]domain.KnowledgeChunk, error) {
	names, err := b.chunkFiles()
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.KnowledgeChunk, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(b.dir, name))
		if err != nil {
			b.logger.Warn("skipping unreadable chunk file", "file", name, "error", err)
			continue
		}
		var chunk domain.KnowledgeChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			b.logger.Warn("skipping corrupt chunk file", "file", name, "error", err)
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (b *FileBackend) Count(ctx context.Context) (int, error) {
	names, err := b.chunkFiles()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

func (b *FileBackend) Clear(ctx context.Context) error {
	names, err := b.chunkFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(b.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

func (b *FileBackend) chunkFiles() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read vector store directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), chunkExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
