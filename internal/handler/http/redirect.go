package http

import (
	"LinkPulse-Backend/internal/cache"
	"LinkPulse-Backend/internal/domain"
	"LinkPulse-Backend/internal/repository"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// RedirectHandler обработчик редиректов
type RedirectHandler struct {
	storage repository.Storage
	cache   *cache.Cache
	log     *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(storage repository.Storage, urlCache *cache.Cache, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		storage: storage,
		cache:   urlCache,
		log:     log,
	}
}

// HandleRedirect обрабатывает редирект по короткому коду: резолвит код,
// записывает клик и отдает 302 на оригинальный URL
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/")

	// Системные пути сюда попадать не должны
	if code == "" || strings.HasPrefix(code, "api/") ||
		strings.HasPrefix(code, "health") || strings.HasPrefix(code, "ready") {
		http.NotFound(w, r)
		return
	}

	rec := h.cache.GetURL(r.Context(), code)
	if rec == nil {
		var err error
		rec, err = h.storage.GetURLByShortCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, repository.ErrURLNotFound) {
				h.log.Debug("short code not found", zap.String("short_code", code))
				http.NotFound(w, r)
				return
			}
			h.log.Error("failed to resolve short code", zap.String("short_code", code), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		h.cache.SetURL(r.Context(), rec)
	}

	// Истекшие ссылки не удаляются из хранилища, проверка ленивая
	if rec.IsExpired() {
		h.log.Debug("short code expired", zap.String("short_code", code))
		http.Error(w, "Link expired", http.StatusGone)
		return
	}

	// Телеметрия хранится как есть, без парсинга
	click := &domain.ClickRecord{URLID: rec.ID}
	if ip := extractIPAddress(r); ip != "" {
		click.IPAddress = &ip
	}
	if ua := r.UserAgent(); ua != "" {
		click.UserAgent = &ua
	}
	if ref := r.Referer(); ref != "" {
		click.Referrer = &ref
	}

	// Потерянный клик рассинхронизирует счетчик и лог — это фатально
	// для запроса, а не повод молча продолжить
	if err := h.storage.RecordClick(r.Context(), click); err != nil {
		h.log.Error("failed to record click", zap.String("short_code", code), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("redirect",
		zap.String("short_code", code),
		zap.String("original_url", rec.OriginalURL))

	http.Redirect(w, r, rec.OriginalURL, http.StatusFound)
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For может содержать список IP через запятую
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
