package chunker

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Options controls how text is chunked. Sizes are measured in characters.
type Options struct {
	ChunkSize int
	Overlap   int
}

// Chunk represents a slice of the document text.
type Chunk struct {
	Index      int
	Text       string
	TokenCount int
}

// ChunkText splits text recursively on paragraph, line and word boundaries
// so that no chunk exceeds ChunkSize characters, with Overlap characters
// shared between neighbours.
func ChunkText(text string, opts Options) ([]Chunk, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.Overlap < 0 || opts.Overlap >= opts.ChunkSize {
		opts.Overlap = 0
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(opts.ChunkSize),
		textsplitter.WithChunkOverlap(opts.Overlap),
	)
	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Text:       p,
			TokenCount: len(strings.Fields(p)),
		})
	}
	return chunks, nil
}
