package http

import (
	"LinkPulse-Backend/internal/analytics"
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository/memory"
	"LinkPulse-Backend/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestServer(t *testing.T) (*memory.MemStorage, http.Handler) {
	t.Helper()

	storage := memory.New()
	log := zap.NewNop()
	shortener := service.NewShortener(storage, &config.Shortener{CodeLength: 6, MaxAttempts: 5})
	engine := analytics.NewEngine(storage, log)

	server := NewServer(storage, shortener, engine, nil, log, "http://sho.rt")
	return storage, server.SetupRoutes()
}

func createURL(t *testing.T, storage *memory.MemStorage, userID, code string) *domain.URLRecord {
	t.Helper()
	rec := &domain.URLRecord{
		UserID:      userID,
		OriginalURL: "https://example.com/landing",
		ShortCode:   code,
		IsActive:    true,
	}
	require.NoError(t, storage.CreateURL(context.Background(), rec))
	return rec
}

func TestRedirect_ResolvesAndRecordsClick(t *testing.T) {
	storage, handler := setupTestServer(t)
	rec := createURL(t, storage, "user-1", "abc123")

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://news.example.org")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/landing", w.Header().Get("Location"))

	got, err := storage.GetURLByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Clicks)

	clicks, err := storage.ListClicksByURL(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	require.NotNil(t, clicks[0].IPAddress)
	assert.Equal(t, "203.0.113.7", *clicks[0].IPAddress)
	require.NotNil(t, clicks[0].UserAgent)
	assert.Equal(t, "Mozilla/5.0", *clicks[0].UserAgent)
	require.NotNil(t, clicks[0].Referrer)
	assert.Equal(t, "https://news.example.org", *clicks[0].Referrer)
}

func TestRedirect_UnknownCode(t *testing.T) {
	_, handler := setupTestServer(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nosuch", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRedirect_InactiveCodeIsNotFound(t *testing.T) {
	storage, handler := setupTestServer(t)
	rec := createURL(t, storage, "user-1", "abc123")

	inactive := false
	_, err := storage.UpdateURL(context.Background(), rec.ID, domain.URLUpdate{IsActive: &inactive})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc123", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// No click gets recorded for a dead link
	clicks, err := storage.ListClicksByURL(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Empty(t, clicks)
}

func TestRedirect_ExpiredCodeIsGone(t *testing.T) {
	storage, handler := setupTestServer(t)
	rec := createURL(t, storage, "user-1", "abc123")

	expired := time.Now().Add(-time.Hour)
	_, err := storage.UpdateURL(context.Background(), rec.ID, domain.URLUpdate{ExpiresAt: &expired})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc123", nil))
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestCreateLink_GeneratedCode(t *testing.T) {
	_, handler := setupTestServer(t)

	body := bytes.NewBufferString(`{"original_url":"https://example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/links", body)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Link.ShortCode, 6)
	assert.Equal(t, int64(0), resp.Link.Clicks)
	assert.True(t, resp.Link.IsActive)
	assert.Equal(t, "http://sho.rt/"+resp.Link.ShortCode, resp.ShortURL)
}

func TestCreateLink_CustomAliasConflict(t *testing.T) {
	storage, handler := setupTestServer(t)
	createURL(t, storage, "user-1", "mine")

	body := bytes.NewBufferString(`{"original_url":"https://example.com","custom_alias":"mine"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/links", body)
	req.Header.Set("X-User-ID", "user-2")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Exactly one record with that code remains
	all, err := storage.ListAllURLs(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "user-1", all[0].UserID)
}

func TestCreateLink_RequiresUserID(t *testing.T) {
	_, handler := setupTestServer(t)

	body := bytes.NewBufferString(`{"original_url":"https://example.com"}`)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/links", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListLinks_UserScope(t *testing.T) {
	storage, handler := setupTestServer(t)
	createURL(t, storage, "user-1", "one")
	createURL(t, storage, "user-2", "two")

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListLinksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Links, 1)
	assert.Equal(t, "one", resp.Links[0].ShortCode)
}

func TestUpdateLink_ToggleActive(t *testing.T) {
	storage, handler := setupTestServer(t)
	rec := createURL(t, storage, "user-1", "abc123")

	body := bytes.NewBufferString(`{"is_active":false}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/links/"+rec.ID, body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var updated domain.URLRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.False(t, updated.IsActive)
	assert.Equal(t, "abc123", updated.ShortCode)
}

func TestUpdateLink_NotFound(t *testing.T) {
	_, handler := setupTestServer(t)

	body := bytes.NewBufferString(`{"is_active":false}`)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/links/missing", body))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteLink_CascadesClicks(t *testing.T) {
	storage, handler := setupTestServer(t)
	rec := createURL(t, storage, "user-1", "abc123")
	require.NoError(t, storage.RecordClick(context.Background(), &domain.ClickRecord{URLID: rec.ID}))
	require.NoError(t, storage.RecordClick(context.Background(), &domain.ClickRecord{URLID: rec.ID}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/links/"+rec.ID, nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	clicks, err := storage.ListClicksByURL(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Empty(t, clicks)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc123", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListClicks(t *testing.T) {
	storage, handler := setupTestServer(t)
	rec := createURL(t, storage, "user-1", "abc123")
	require.NoError(t, storage.RecordClick(context.Background(), &domain.ClickRecord{URLID: rec.ID}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/links/"+rec.ID+"/clicks", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListClicksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Clicks, 1)
	assert.Equal(t, rec.ID, resp.Clicks[0].URLID)
}

func TestAnalyticsEndpoint(t *testing.T) {
	storage, handler := setupTestServer(t)
	rec := createURL(t, storage, "user-1", "abc123")
	require.NoError(t, storage.RecordClick(context.Background(), &domain.ClickRecord{URLID: rec.ID}))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, int64(1), summary.TotalURLs)
	assert.Equal(t, int64(1), summary.TotalClicks)
	assert.Len(t, summary.DailyClicks, 30)
}

func TestAnalyticsEndpoint_RequiresUserIDOrAllScope(t *testing.T) {
	_, handler := setupTestServer(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics?scope=all", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
