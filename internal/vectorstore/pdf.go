package vectorstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/ledongthuc/pdf"
)

var ErrMalformedPDF = errors.New("malformed pdf document")

// IndexFile extracts the text of the PDF at path, chunks it and stores every
// chunk as <basename>#NNNN. It returns the number of chunks stored.
func (s *Store) IndexFile(ctx context.Context, path string, metadata map[string]string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return s.IndexReader(ctx, filepath.Base(path), f, info.Size(), metadata)
}

// IndexReader is IndexFile for documents that are not on local disk.
func (s *Store) IndexReader(ctx context.Context, name string, r io.ReaderAt, size int64, metadata map[string]string) (int, error) {
	text, err := ExtractPDFText(r, size)
	if err != nil {
		s.logger.Error("failed to extract pdf text", "file", name, "error", err)
		return 0, fmt.Errorf("failed to extract text from %s: %w", name, err)
	}
	return s.indexText(ctx, name, text, metadata)
}

func (s *Store) indexText(ctx context.Context, name, text string, metadata map[string]string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warn("empty document text", "file", name)
		return 0, nil
	}

	chunks := Chunk(text, s.chunking)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		meta := make(map[string]string, len(metadata)+2)
		for k, v := range metadata {
			meta[k] = v
		}
		meta[domain.MetaFilename] = name
		meta[domain.MetaChunk] = strconv.Itoa(i)

		id := fmt.Sprintf("%s#%04d", name, i)
		if err := s.AddDocument(ctx, id, chunk, meta); err != nil {
			return i, err
		}
	}

	s.logger.Info("document indexed", "file", name, "chunks", len(chunks))
	return len(chunks), nil
}

// ExtractPDFText returns the plain text of a PDF. The parser panics on some
// malformed inputs; those are reported as ErrMalformedPDF.
func ExtractPDFText(r io.ReaderAt, size int64) (text string, err error) {
	if size <= 0 {
		return "", ErrMalformedPDF
	}

	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrMalformedPDF, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPDF, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}
