package http

import (
	"LinkPulse-Backend/internal/analytics"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// AnalyticsHandler обработчик дашборда аналитики
type AnalyticsHandler struct {
	engine *analytics.Engine
	log    *zap.Logger
}

// NewAnalyticsHandler создает новый обработчик аналитики
func NewAnalyticsHandler(engine *analytics.Engine, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		engine: engine,
		log:    log,
	}
}

// GetSummary возвращает сводку по ссылкам пользователя;
// ?scope=all — сводка по всему хранилищу
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uid := userID(r)
	if r.URL.Query().Get("scope") == "all" {
		uid = ""
	} else if uid == "" {
		h.writeError(w, "X-User-ID header is required", http.StatusUnauthorized)
		return
	}

	summary, err := h.engine.Summarize(r.Context(), uid)
	if err != nil {
		h.log.Error("failed to compute analytics", zap.String("user_id", uid), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		h.log.Error("failed to encode analytics response", zap.Error(err))
	}
}

func (h *AnalyticsHandler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
