package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recordformatter/enrichment"
)

// ResolverInfo сведения о резолвере для проверки состояния
type ResolverInfo interface {
	GetAvailableServices() []string
	CacheStats() enrichment.CacheStats
}

// HealthHandler отвечает на GET /health
type HealthHandler struct {
	resolver  ResolverInfo // nil, если обогащение выключено
	startedAt time.Time
}

// NewHealthHandler создает обработчик проверки состояния
func NewHealthHandler(resolver ResolverInfo) *HealthHandler {
	return &HealthHandler{resolver: resolver, startedAt: time.Now()}
}

// Health возвращает статус сервиса и состояние уровней поиска
func (h *HealthHandler) Health(c *gin.Context) {
	response := gin.H{
		"status":         "ok",
		"time":           time.Now().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"enrichment":     h.resolver != nil,
	}

	if h.resolver != nil {
		services := h.resolver.GetAvailableServices()
		if services == nil {
			services = []string{}
		}
		response["lookup_tiers"] = services
		response["cache"] = h.resolver.CacheStats()
	}

	c.JSON(http.StatusOK, response)
}
