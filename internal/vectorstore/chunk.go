package vectorstore

import (
	"regexp"
	"strings"
)

// ChunkConfig controls how long documents are split before embedding.
type ChunkConfig struct {
	Size    int
	Overlap int
}

func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    1200,
		Overlap: 200,
	}
}

// Chunk splits text into fixed-size rune windows. Consecutive windows share
// Overlap runes; the step is never less than one rune.
func Chunk(text string, cfg ChunkConfig) []string {
	if text == "" {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	step := cfg.Size - cfg.Overlap
	if step < 1 {
		step = 1
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

var unsafeID = regexp.MustCompile(`[^\w\-.#]+`)

// Sanitize makes id safe as a file name by collapsing every run of characters
// outside [A-Za-z0-9_-.#] into a single underscore.
func Sanitize(id string) string {
	return unsafeID.ReplaceAllString(strings.TrimSpace(id), "_")
}
