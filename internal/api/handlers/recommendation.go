package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/horizon-ai/sowlens/internal/api"
	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/recommend"
)

type RecommendService interface {
	Recommend(ctx context.Context, req domain.Requirements) (*domain.RecommendationSet, error)
}

type RecommendationHandler struct {
	svc RecommendService
}

func NewRecommendationHandler(svc RecommendService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Recommend handles POST /recommendations. The response is the trimmed
// client shape; use Full for the complete decision artifact.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequirements(w, r)
	if !ok {
		return
	}

	set, err := h.svc.Recommend(r.Context(), req)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, recommend.CleanView(set))
}

// Full handles POST /recommendations/full
func (h *RecommendationHandler) Full(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequirements(w, r)
	if !ok {
		return
	}

	set, err := h.svc.Recommend(r.Context(), req)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, set)
}

func decodeRequirements(w http.ResponseWriter, r *http.Request) (domain.Requirements, bool) {
	var req domain.Requirements
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return domain.Requirements{}, false
	}
	if req.Technology == nil {
		req.Technology = []string{}
	}
	return req, true
}
