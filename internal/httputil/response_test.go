package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/domain/models"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "chat not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"chat not found"}`, rec.Body.String())
}

func TestRespondErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithDetails(rec, http.StatusInternalServerError, "generation failed", "quota exceeded")

	assert.JSONEq(t, `{"error":"generation failed","details":"quota exceeded"}`, rec.Body.String())
}

func TestRespondJSON_Unencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		Message string `json:"message"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, ParseJSON(httptest.NewRecorder(), req, &dest))
	assert.Equal(t, "hi", dest.Message)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":`))
	assert.Error(t, ParseJSON(httptest.NewRecorder(), req, &dest))
}

func TestParseOptionalJSON(t *testing.T) {
	var dest struct {
		Title *string `json:"title"`
	}

	req := httptest.NewRequest(http.MethodPut, "/", nil)
	require.NoError(t, ParseOptionalJSON(httptest.NewRecorder(), req, &dest))
	assert.Nil(t, dest.Title)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":`))
	assert.Error(t, ParseOptionalJSON(httptest.NewRecorder(), req, &dest))
}

func TestIdentityContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetIdentity(req))
	assert.Empty(t, GetUserID(req))

	req = WithIdentity(req, &models.Identity{UserID: "u1", Email: "a@example.com"})
	assert.Equal(t, "u1", GetUserID(req))
	assert.Equal(t, "a@example.com", GetIdentity(req).Email)
}
