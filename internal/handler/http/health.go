package http

import (
	"Shortly-Backend/internal/repository"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const version = "1.0.0"

// StatsProvider отдает внутреннюю статистику компонента
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// HealthHandler обработчик health checks
type HealthHandler struct {
	storage   repository.Storage
	analytics StatsProvider
	log       *zap.Logger
	startTime time.Time
}

// NewHealthHandler создает новый health handler. analytics может быть nil.
func NewHealthHandler(storage repository.Storage, analytics StatsProvider, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		analytics: analytics,
		log:       log,
		startTime: time.Now(),
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status         string                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	Version        string                 `json:"version"`
	DatabaseStatus string                 `json:"database_status"`
	Uptime         string                 `json:"uptime,omitempty"`
	Analytics      map[string]interface{} `json:"analytics,omitempty"`
}

// Health основной health check endpoint
//
//	@Summary	Health check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, dbStatus, statusCode := "healthy", "healthy", http.StatusOK
	if err := h.storage.Ping(ctx); err != nil {
		h.log.Error("database health check failed", zap.Error(err))
		status, dbStatus, statusCode = "unhealthy", "unhealthy", http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		Version:        version,
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(h.startTime).String(),
	}
	if h.analytics != nil {
		response.Analytics = h.analytics.GetStats()
	}

	writeJSON(w, response, statusCode)
}

// Ready readiness probe endpoint
//
//	@Summary	Readiness probe
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	}, http.StatusOK)
}

// Index стартовая страница, сюда же ведут неизвестные коды
//
//	@Summary	Service index
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/ [get]
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"service": "shortly",
		"version": version,
		"docs":    "/swagger/index.html",
	}, http.StatusOK)
}
