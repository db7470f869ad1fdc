// Package chunker splits document text into fixed-size overlapping windows
// for embedding and retrieval.
package chunker

import (
	"strings"

	"github.com/horizon-ai/sowlens/internal/domain"
)

// Config controls window size and overlap for chunking.
type Config struct {
	Size    int
	Overlap int
}

// DefaultConfig provides the standard SOW chunking parameters.
func DefaultConfig() Config {
	return Config{
		Size:    600,
		Overlap: 60,
	}
}

// Chunk splits text into consecutive windows of cfg.Size runes, each window
// starting cfg.Size-cfg.Overlap runes after the previous one. The final
// window may be shorter. A non-positive stride would never terminate, so
// overlap >= size fails immediately.
func Chunk(text string, cfg Config) ([]string, error) {
	if cfg.Size <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.Size {
		return nil, domain.ErrInvalidChunking
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	runes := []rune(text)
	stride := cfg.Size - cfg.Overlap
	chunks := make([]string, 0, (len(runes)+stride-1)/stride)

	for start := 0; start < len(runes); start += stride {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}
