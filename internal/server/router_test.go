package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/horizon-ai/sowlens/internal/api/handlers"
	"github.com/horizon-ai/sowlens/internal/api/middleware"
	"github.com/horizon-ai/sowlens/internal/domain"
)

type MockExtractService struct {
	mock.Mock
}

func (m *MockExtractService) ExtractFields(ctx context.Context, doc *domain.Document) (*domain.SOWFields, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SOWFields), args.Error(1)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) DeleteDocument(ctx context.Context, docID string) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

type MockRecommendService struct {
	mock.Mock
}

func (m *MockRecommendService) Recommend(ctx context.Context, req domain.Requirements) (*domain.RecommendationSet, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecommendationSet), args.Error(1)
}

func setupRouter() (http.Handler, *MockExtractService, *MockRecommendService, *MockDocumentStore) {
	extractSvc := new(MockExtractService)
	recommendSvc := new(MockRecommendService)
	docStore := new(MockDocumentStore)

	cfg := RouterConfig{
		AuthValidator:         middleware.NewStaticKeyValidator("sk_test"),
		SOWHandler:            handlers.NewSOWHandler(extractSvc, docStore, nil),
		RecommendationHandler: handlers.NewRecommendationHandler(recommendSvc),
	}

	router := NewRouter(cfg)
	return router, extractSvc, recommendSvc, docStore
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_AuthenticatedRoutes_RequireAuth(t *testing.T) {
	router, _, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/sow/extract"},
		{http.MethodDelete, "/sow/doc-1"},
		{http.MethodPost, "/recommendations"},
		{http.MethodPost, "/recommendations/full"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AuthenticatedRoutes_WithValidAuth(t *testing.T) {
	router, extractSvc, _, _ := setupRouter()

	extractSvc.On("ExtractFields", mock.Anything, mock.Anything).Return(domain.NewSOWFields(), nil)

	body, err := json.Marshal(handlers.ExtractRequest{DocumentID: "doc-1", Text: "Statement of Work"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/sow/extract", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer sk_test")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	extractSvc.AssertExpectations(t)
}

func TestRouter_RecommendationsRoute(t *testing.T) {
	router, _, recommendSvc, _ := setupRouter()

	recommendSvc.On("Recommend", mock.Anything, mock.Anything).Return(&domain.RecommendationSet{
		Recommendations: []domain.RankedRecommendation{},
	}, nil)

	body, err := json.Marshal(domain.Requirements{ProjectName: "Payments Replatform"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer sk_test")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	recommendSvc.AssertExpectations(t)
}

func TestRouter_WrongKeyRejected(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/recommendations", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RequestIDHeaderSet(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
