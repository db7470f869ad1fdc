package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	handler := APIKeyAuth(NewStaticKeyValidator("secret"))(protectedHandler())

	req := httptest.NewRequest(http.MethodPost, "/sow/extract", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAPIKeyAuth_InvalidFormat(t *testing.T) {
	handler := APIKeyAuth(NewStaticKeyValidator("secret"))(protectedHandler())

	req := httptest.NewRequest(http.MethodPost, "/sow/extract", nil)
	req.Header.Set("Authorization", "Basic secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization format")
}

func TestAPIKeyAuth_WrongKey(t *testing.T) {
	handler := APIKeyAuth(NewStaticKeyValidator("secret"))(protectedHandler())

	req := httptest.NewRequest(http.MethodPost, "/sow/extract", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid api key")
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	handler := APIKeyAuth(NewStaticKeyValidator("secret"))(protectedHandler())

	req := httptest.NewRequest(http.MethodPost, "/sow/extract", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaticKeyValidator_EmptyConfiguredKeyRejectsAll(t *testing.T) {
	validator := NewStaticKeyValidator("")

	err := validator.ValidateAPIKey(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "")
	assert.Error(t, err)
}
