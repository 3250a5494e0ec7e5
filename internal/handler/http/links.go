package http

import (
	"LinkPulse-Backend/internal/cache"
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LinksHandler обработчик для работы со ссылками
type LinksHandler struct {
	storage   repository.Storage
	shortener *service.ShortenerService
	cache     *cache.Cache
	log       *zap.Logger
	baseURL   string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(storage repository.Storage, shortener *service.ShortenerService, urlCache *cache.Cache, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		storage:   storage,
		shortener: shortener,
		cache:     urlCache,
		log:       log,
		baseURL:   baseURL,
	}
}

// CreateLinkRequest структура запроса создания ссылки
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url"`
	CustomAlias string `json:"custom_alias,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"` // RFC 3339
}

// CreateLinkResponse структура ответа создания ссылки
type CreateLinkResponse struct {
	Link     *domain.URLRecord `json:"link"`
	ShortURL string            `json:"short_url"`
}

// UpdateLinkRequest структура частичного обновления ссылки
type UpdateLinkRequest struct {
	OriginalURL *string `json:"original_url,omitempty"`
	CustomAlias *string `json:"custom_alias,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	ExpiresAt   *string `json:"expires_at,omitempty"` // RFC 3339
}

// ListLinksResponse структура ответа списка ссылок
type ListLinksResponse struct {
	Links []*domain.URLRecord `json:"links"`
}

// ListClicksResponse структура ответа списка кликов
type ListClicksResponse struct {
	Clicks []*domain.ClickRecord `json:"clicks"`
}

// CreateLink создает новую короткую ссылку
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		h.writeError(w, "X-User-ID header is required", http.StatusUnauthorized)
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.OriginalURL == "" {
		h.writeError(w, "original_url is required", http.StatusBadRequest)
		return
	}

	rec := &domain.URLRecord{
		UserID:      uid,
		OriginalURL: req.OriginalURL,
		IsActive:    true,
	}
	if req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			h.writeError(w, "expires_at must be RFC 3339", http.StatusBadRequest)
			return
		}
		rec.ExpiresAt = &expiresAt
	}

	var customAlias *string
	if req.CustomAlias != "" {
		customAlias = &req.CustomAlias
	}

	rec, err := h.shortener.Shorten(r.Context(), rec, customAlias)
	if err != nil {
		if errors.Is(err, repository.ErrShortCodeExists) {
			h.writeError(w, "This alias is already taken", http.StatusConflict)
			return
		}
		h.log.Error("failed to create link", zap.String("user_id", uid), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("link created", zap.String("id", rec.ID), zap.String("short_code", rec.ShortCode))
	h.writeJSON(w, http.StatusCreated, CreateLinkResponse{
		Link:     rec,
		ShortURL: fmt.Sprintf("%s/%s", h.baseURL, rec.ShortCode),
	})
}

// ListLinks возвращает ссылки пользователя; ?scope=all — все ссылки
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	var (
		links []*domain.URLRecord
		err   error
	)
	if r.URL.Query().Get("scope") == "all" {
		links, err = h.storage.ListAllURLs(r.Context())
	} else {
		uid := userID(r)
		if uid == "" {
			h.writeError(w, "X-User-ID header is required", http.StatusUnauthorized)
			return
		}
		links, err = h.storage.ListUserURLs(r.Context(), uid)
	}
	if err != nil {
		h.log.Error("failed to list links", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if links == nil {
		links = []*domain.URLRecord{}
	}
	h.writeJSON(w, http.StatusOK, ListLinksResponse{Links: links})
}

// UpdateLink вливает частичное обновление в существующую ссылку
func (h *LinksHandler) UpdateLink(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	upd := domain.URLUpdate{
		OriginalURL: req.OriginalURL,
		CustomAlias: req.CustomAlias,
		IsActive:    req.IsActive,
	}
	if req.ExpiresAt != nil {
		expiresAt, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			h.writeError(w, "expires_at must be RFC 3339", http.StatusBadRequest)
			return
		}
		upd.ExpiresAt = &expiresAt
	}

	rec, err := h.storage.UpdateURL(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to update link", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Кэш редиректа мог держать устаревшую запись
	h.cache.Invalidate(r.Context(), rec.ShortCode)

	h.log.Info("link updated", zap.String("id", id))
	h.writeJSON(w, http.StatusOK, rec)
}

// DeleteLink удаляет ссылку и каскадно все ее клики
func (h *LinksHandler) DeleteLink(w http.ResponseWriter, r *http.Request, id string) {
	// Код нужен до удаления, чтобы сбросить кэш
	rec, err := h.storage.GetURLByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to load link for deletion", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.storage.DeleteURL(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete link", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.cache.Invalidate(r.Context(), rec.ShortCode)

	h.log.Info("link deleted", zap.String("id", id), zap.String("short_code", rec.ShortCode))
	w.WriteHeader(http.StatusNoContent)
}

// ListClicks возвращает клики ссылки, новые первыми
func (h *LinksHandler) ListClicks(w http.ResponseWriter, r *http.Request, id string) {
	clicks, err := h.storage.ListClicksByURL(r.Context(), id)
	if err != nil {
		h.log.Error("failed to list clicks", zap.String("url_id", id), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if clicks == nil {
		clicks = []*domain.ClickRecord{}
	}
	h.writeJSON(w, http.StatusOK, ListClicksResponse{Clicks: clicks})
}

func (h *LinksHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *LinksHandler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
