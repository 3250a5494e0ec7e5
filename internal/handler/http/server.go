package http

import (
	"LinkPulse-Backend/internal/analytics"
	"LinkPulse-Backend/internal/cache"
	"LinkPulse-Backend/internal/repository"
	"LinkPulse-Backend/internal/service"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	linksHandler     *LinksHandler
	redirectHandler  *RedirectHandler
	analyticsHandler *AnalyticsHandler
	healthHandler    *HealthHandler
	log              *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	shortener *service.ShortenerService,
	engine *analytics.Engine,
	urlCache *cache.Cache,
	log *zap.Logger,
	baseURL string,
) *Server {
	return &Server{
		linksHandler:     NewLinksHandler(storage, shortener, urlCache, log, baseURL),
		redirectHandler:  NewRedirectHandler(storage, urlCache, log),
		analyticsHandler: NewAnalyticsHandler(engine, log),
		healthHandler:    NewHealthHandler(storage, log),
		log:              log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)

	// API endpoints. Идентификация — opaque X-User-ID от внешнего
	// identity provider, ядро его не валидирует.
	mux.HandleFunc("/api/links", s.withCORS(s.handleLinksCollection))
	mux.HandleFunc("/api/links/", s.withCORS(s.handleLinksItem))
	mux.HandleFunc("/api/analytics", s.withCORS(s.analyticsHandler.GetSummary))

	// Redirect endpoint — должен быть последним
	mux.HandleFunc("/", s.redirectHandler.HandleRedirect)

	return mux
}

// handleLinksCollection обрабатывает /api/links
func (s *Server) handleLinksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.linksHandler.CreateLink(w, r)
	case http.MethodGet:
		s.linksHandler.ListLinks(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleLinksItem обрабатывает /api/links/{id} и /api/links/{id}/clicks
func (s *Server) handleLinksItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/links/")
	if strings.HasSuffix(rest, "/clicks") {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.linksHandler.ListClicks(w, r, strings.TrimSuffix(rest, "/clicks"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		s.linksHandler.UpdateLink(w, r, rest)
	case http.MethodDelete:
		s.linksHandler.DeleteLink(w, r, rest)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// withCORS добавляет CORS headers к обработчику
func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		handler(w, r)
	}
}

// userID извлекает opaque идентификатор пользователя из запроса
func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}
