package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/horizon-ai/sowlens/internal/api"
	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/storage"
)

type ExtractService interface {
	ExtractFields(ctx context.Context, doc *domain.Document) (*domain.SOWFields, error)
}

type DocumentStore interface {
	DeleteDocument(ctx context.Context, docID string) error
}

// DocumentArchive stores extracted document text; optional.
type DocumentArchive interface {
	PutObject(ctx context.Context, key string, contentType string, body []byte) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type SOWHandler struct {
	extractor ExtractService
	docs      DocumentStore
	archive   DocumentArchive
}

// NewSOWHandler creates a SOWHandler. archive may be nil when no object
// storage is configured.
func NewSOWHandler(extractor ExtractService, docs DocumentStore, archive DocumentArchive) *SOWHandler {
	return &SOWHandler{extractor: extractor, docs: docs, archive: archive}
}

type ExtractRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text"`
}

type ExtractResponse struct {
	DocumentID string            `json:"document_id"`
	Fields     *domain.SOWFields `json:"fields"`
	ArchiveURL string            `json:"archive_url,omitempty"`
}

// Extract handles POST /sow/extract
func (h *SOWHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DocumentID == "" {
		req.DocumentID = uuid.NewString()
	}

	doc, err := domain.NewDocument(req.DocumentID, req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	fields, err := h.extractor.ExtractFields(r.Context(), doc)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ExtractResponse{
		DocumentID: doc.ID,
		Fields:     fields,
	}

	// Archive failures never fail the extraction
	if h.archive != nil {
		key := storage.ArchiveKey(doc.ID)
		if err := h.archive.PutObject(r.Context(), key, "text/plain; charset=utf-8", []byte(req.Text)); err != nil {
			log.Printf("archive put failed for %s: %v", doc.ID, err)
		} else if url, err := h.archive.GenerateDownloadURL(r.Context(), key); err != nil {
			log.Printf("archive presign failed for %s: %v", doc.ID, err)
		} else {
			resp.ArchiveURL = url
		}
	}

	api.Success(w, http.StatusOK, resp)
}

// Delete handles DELETE /sow/{docID}
func (h *SOWHandler) Delete(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if docID == "" {
		api.Error(w, http.StatusBadRequest, "document id is required")
		return
	}

	if err := h.docs.DeleteDocument(r.Context(), docID); err != nil {
		api.HandleError(w, err)
		return
	}

	if h.archive != nil {
		if err := h.archive.DeleteObject(r.Context(), storage.ArchiveKey(docID)); err != nil {
			log.Printf("archive delete failed for %s: %v", docID, err)
		}
	}

	api.JSON(w, http.StatusNoContent, nil)
}
