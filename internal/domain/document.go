package domain

import (
	"fmt"
	"strings"
)

// Document is an ingested SOW: an identity plus extracted plain text.
// Text extraction from the source file happens upstream; pages are
// separated by form feeds when the extractor preserved them.
type Document struct {
	ID   string
	Text string
}

// pageBudgetChars approximates one page of text when the upstream
// extractor did not preserve form-feed page breaks.
const pageBudgetChars = 3000

// NewDocument validates and constructs a Document.
func NewDocument(id, text string) (*Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewDomainError(ErrCodeValidation, "document ID is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	return &Document{ID: id, Text: text}, nil
}

// FirstPages returns the document text restricted to the first n pages.
// Form feeds delimit pages when present; otherwise a fixed per-page
// character budget stands in for page boundaries.
func (d *Document) FirstPages(n int) string {
	if n <= 0 {
		return ""
	}
	if strings.ContainsRune(d.Text, '\f') {
		pages := strings.Split(d.Text, "\f")
		if len(pages) > n {
			pages = pages[:n]
		}
		return strings.TrimSpace(strings.Join(pages, "\n"))
	}
	budget := n * pageBudgetChars
	runes := []rune(d.Text)
	if len(runes) <= budget {
		return strings.TrimSpace(d.Text)
	}
	return strings.TrimSpace(string(runes[:budget]))
}

// DocumentChunk is one overlapping window of a document, the unit of
// retrieval. Chunk IDs are doc ID plus ordinal and unique per document.
type DocumentChunk struct {
	ChunkID   string
	DocID     string
	Ordinal   int
	Content   string
	Embedding []float32
}

// ChunkID builds the canonical chunk identifier for a document ordinal.
func ChunkID(docID string, ordinal int) string {
	return fmt.Sprintf("%s_%d", docID, ordinal)
}

// RetrievedChunk is a chunk returned from vector search together with
// its similarity to the query.
type RetrievedChunk struct {
	DocumentChunk
	Similarity float64
}
