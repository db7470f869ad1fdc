// Package extract orchestrates the SOW field extraction pipeline:
// chunk, index, retrieve, prompt, complete, sanitize.
package extract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/horizon-ai/sowlens/internal/chunker"
	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/prompt"
	"github.com/horizon-ai/sowlens/internal/sanitize"
	"github.com/horizon-ai/sowlens/internal/telemetry"
	"github.com/horizon-ai/sowlens/internal/vocab"
)

// ChunkStoreInterface defines the chunk persistence and search operations
// the extractor depends on.
type ChunkStoreInterface interface {
	HasChunk(ctx context.Context, chunkID string) (bool, error)
	UpsertChunks(ctx context.Context, chunks []domain.DocumentChunk) error
	SearchChunks(ctx context.Context, embedding []float32, docID string, k int) ([]domain.RetrievedChunk, error)
}

// EmbedderInterface defines embedding generation.
type EmbedderInterface interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// CompleterInterface defines the blocking completion call.
type CompleterInterface interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options tunes the extraction pipeline.
type Options struct {
	Chunking         chunker.Config
	TopK             int // chunks retrieved per field query
	EarlyPages       int // pages of context for Technology/Practice/Category
	ProjectNamePages int // pages of context for Project Name
	FuzzyCutoff      float64
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		Chunking:         chunker.DefaultConfig(),
		TopK:             5,
		EarlyPages:       5,
		ProjectNamePages: 2,
		FuzzyCutoff:      vocab.DefaultCutoff,
	}
}

// Extractor runs the field extraction pipeline against a chunk store,
// an embedder and a completion backend.
type Extractor struct {
	chunks    ChunkStoreInterface
	embedder  EmbedderInterface
	completer CompleterInterface
	vocab     vocab.Vocabulary
	opts      Options
}

// NewExtractor creates an Extractor. vocabulary may be nil when no
// controlled vocabulary is configured.
func NewExtractor(
	chunks ChunkStoreInterface,
	embedder EmbedderInterface,
	completer CompleterInterface,
	vocabulary vocab.Vocabulary,
	opts Options,
) *Extractor {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.EarlyPages <= 0 {
		opts.EarlyPages = 5
	}
	if opts.ProjectNamePages <= 0 {
		opts.ProjectNamePages = 2
	}
	if opts.FuzzyCutoff <= 0 {
		opts.FuzzyCutoff = vocab.DefaultCutoff
	}
	if opts.Chunking.Size <= 0 {
		opts.Chunking = chunker.DefaultConfig()
	}
	return &Extractor{
		chunks:    chunks,
		embedder:  embedder,
		completer: completer,
		vocab:     vocabulary,
		opts:      opts,
	}
}

// Retrieval keyword sets for fields whose evidence rarely matches the
// field name itself.
var (
	startDateKeywords = []string{
		"start date", "project start", "commencement", "begin", "kick-off",
		"initiation", "launch", "January", "November",
	}
	endDateKeywords = []string{
		"end date", "completion", "delivery", "final", "conclusion",
		"project end", "deadline", "due date", "November", "January",
	}
	clientKeywords = []string{
		"client", "customer", "organization", "company", "corporation",
		"enterprise", "contracting party", "service recipient", "sponsor",
		"contact information", "stakeholder", "agreement", "contract",
	}
)

// Index chunks and embeds a document into the store. Ingestion is
// idempotent: a document whose first chunk ID is already present is
// left untouched.
func (e *Extractor) Index(ctx context.Context, doc *domain.Document) error {
	ctx, span := telemetry.StartSpan(ctx, "Extractor.Index", telemetry.SpanAttributes{
		DocID:     doc.ID,
		Operation: "index",
	})
	defer span.End()

	texts, err := chunker.Chunk(doc.Text, e.opts.Chunking)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeIngestion, "chunking failed", err)
	}
	if len(texts) == 0 {
		return domain.ErrEmptyDocument
	}

	exists, err := e.chunks.HasChunk(ctx, domain.ChunkID(doc.ID, 0))
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval, "index lookup failed", err)
	}
	if exists {
		return nil
	}

	embeddings, err := e.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeIngestion, "embedding failed", err)
	}

	chunks := make([]domain.DocumentChunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.DocumentChunk{
			ChunkID:   domain.ChunkID(doc.ID, i),
			DocID:     doc.ID,
			Ordinal:   i,
			Content:   text,
			Embedding: embeddings[i],
		}
	}
	if err := e.chunks.UpsertChunks(ctx, chunks); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeIngestion, "chunk upsert failed", err)
	}
	return nil
}

// ExtractFields indexes the document and extracts all twelve fields.
// Individual field failures degrade to empty values so one bad
// completion never loses the rest of the document.
func (e *Extractor) ExtractFields(ctx context.Context, doc *domain.Document) (*domain.SOWFields, error) {
	ctx, span := telemetry.StartSpan(ctx, "Extractor.ExtractFields", telemetry.SpanAttributes{
		DocID:     doc.ID,
		Operation: "extract",
	})
	defer span.End()

	if err := e.Index(ctx, doc); err != nil {
		span.SetError(err)
		return nil, err
	}

	fields := domain.NewSOWFields()

	fields.StartDate = e.extractDate(ctx, doc.ID, domain.FieldStartDate, startDateKeywords)
	fields.EndDate = e.extractDate(ctx, doc.ID, domain.FieldEndDate, endDateKeywords)
	fields.Client = e.extractClient(ctx, doc.ID)

	early := doc.FirstPages(e.opts.EarlyPages)

	fields.Technology = e.extractTechnology(ctx, early)
	fields.Practice = e.extractPractice(ctx, early)
	fields.ProjectName = e.extractFromWindow(ctx, domain.FieldProjectName,
		prompt.Field(domain.FieldProjectName, doc.FirstPages(e.opts.ProjectNamePages)))
	fields.Category = e.extractFromWindow(ctx, domain.FieldCategory, prompt.Category(early))

	fields.Manager = e.extractRetrieved(ctx, doc.ID, domain.FieldManager)
	fields.Partner = e.extractRetrieved(ctx, doc.ID, domain.FieldPartner)
	fields.BillingType = e.extractRetrieved(ctx, doc.ID, domain.FieldBillingType)
	fields.Status = e.extractRetrieved(ctx, doc.ID, domain.FieldStatus)
	fields.BudgetedHours = e.extractRetrieved(ctx, doc.ID, domain.FieldBudgetedHours)

	return fields, nil
}

// retrieveContext embeds a query and joins the nearest chunks of the
// document into one prompt context.
func (e *Extractor) retrieveContext(ctx context.Context, docID, query string) (string, error) {
	embedding, err := e.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", err
	}
	results, err := e.chunks.SearchChunks(ctx, embedding, docID, e.opts.TopK)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(results))
	for i, rc := range results {
		parts[i] = rc.Content
	}
	return strings.Join(parts, prompt.ContextSeparator), nil
}

func (e *Extractor) extractDate(ctx context.Context, docID string, field domain.FieldName, keywords []string) string {
	query := strings.Join(keywords, " ") + " deliverables timelines schedule milestone"
	context, err := e.retrieveContext(ctx, docID, query)
	if err != nil {
		log.Printf("extract: %s retrieval failed for doc %s: %v", field, docID, err)
		return ""
	}
	if context == "" {
		return ""
	}

	var p string
	if field == domain.FieldStartDate {
		p = prompt.StartDate(context)
	} else {
		p = prompt.EndDate(context)
	}

	raw, err := e.completer.Complete(ctx, p)
	if err != nil {
		log.Printf("extract: %s completion failed for doc %s: %v", field, docID, err)
		return ""
	}
	return sanitize.Clean(raw)
}

func (e *Extractor) extractClient(ctx context.Context, docID string) string {
	query := strings.Join(clientKeywords, " ")
	context, err := e.retrieveContext(ctx, docID, query)
	if err != nil {
		log.Printf("extract: Client retrieval failed for doc %s: %v", docID, err)
		return ""
	}
	if context == "" {
		return ""
	}
	raw, err := e.completer.Complete(ctx, prompt.Client(context))
	if err != nil {
		log.Printf("extract: Client completion failed for doc %s: %v", docID, err)
		return ""
	}
	return sanitize.Clean(raw)
}

func (e *Extractor) extractTechnology(ctx context.Context, early string) []string {
	raw, err := e.completer.Complete(ctx, prompt.Technology(early))
	if err != nil {
		log.Printf("extract: Technology completion failed: %v", err)
		return []string{}
	}
	items := sanitize.ParseList(raw)
	if items == nil {
		items = []string{}
	}

	valid := e.vocab.Values(string(domain.FieldTechnology))
	if len(valid) == 0 {
		return items
	}
	return vocab.MatchAll(items, valid, e.opts.FuzzyCutoff)
}

func (e *Extractor) extractPractice(ctx context.Context, early string) string {
	valid := e.vocab.Values(string(domain.FieldPractice))

	raw, err := e.completer.Complete(ctx, prompt.Practice(early, valid))
	if err != nil {
		log.Printf("extract: Practice completion failed: %v", err)
		return ""
	}

	var values []string
	if strings.Contains(raw, "[") {
		values = sanitize.ParseList(raw)
	} else if cleaned := sanitize.Clean(raw); cleaned != "" {
		values = []string{cleaned}
	}
	if len(values) == 0 {
		return ""
	}
	if len(valid) == 0 {
		return values[0]
	}
	if matches := vocab.MatchAll(values, valid, e.opts.FuzzyCutoff); len(matches) > 0 {
		return matches[0]
	}
	// no vocabulary entry is close enough, keep the raw value
	return values[0]
}

func (e *Extractor) extractFromWindow(ctx context.Context, field domain.FieldName, p string) string {
	raw, err := e.completer.Complete(ctx, p)
	if err != nil {
		log.Printf("extract: %s completion failed: %v", field, err)
		return ""
	}
	return sanitize.Clean(raw)
}

// extractRetrieved runs the regular retrieval flow: query by field name
// (seeded with known vocabulary values), then a field-specific prompt.
func (e *Extractor) extractRetrieved(ctx context.Context, docID string, field domain.FieldName) string {
	query := string(field)
	if valid := e.vocab.Values(string(field)); len(valid) > 0 {
		query = fmt.Sprintf("%s. Possible values: %s", field, strings.Join(valid, ", "))
	}

	context, err := e.retrieveContext(ctx, docID, query)
	if err != nil {
		log.Printf("extract: %s retrieval failed for doc %s: %v", field, docID, err)
		return ""
	}
	if context == "" {
		return ""
	}

	var p string
	switch field {
	case domain.FieldStatus:
		p = prompt.Status(context)
	case domain.FieldBillingType:
		p = prompt.BillingType(context)
	default:
		p = prompt.Field(field, context)
	}

	raw, err := e.completer.Complete(ctx, p)
	if err != nil {
		log.Printf("extract: %s completion failed for doc %s: %v", field, docID, err)
		return ""
	}
	return sanitize.Clean(raw)
}
