package handler

import (
	"context"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Pinger checks that the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// PageHandler serves the static pages and the health check
type PageHandler struct {
	db           Pinger
	timeProvider coreport.TimeProvider
	pingTimeout  time.Duration
	logger       coreport.Logger
}

// NewPageHandler creates a new page handler instance
func NewPageHandler(db Pinger, timeProvider coreport.TimeProvider, pingTimeout time.Duration, logger coreport.Logger) *PageHandler {
	return &PageHandler{
		db:           db,
		timeProvider: timeProvider,
		pingTimeout:  pingTimeout,
		logger:       logger,
	}
}

// Privacy handles GET /privacy
func (h *PageHandler) Privacy(c *gin.Context) {
	c.HTML(http.StatusOK, templatePrivacy, nil)
}

// Health handles GET /healthz
func (h *PageHandler) Health(c *gin.Context) {
	ctx, cancel := h.timeProvider.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", map[string]any{
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		})
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   dto.StatusUnavailable,
			Database: dto.StatusUnavailable,
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   dto.StatusOK,
		Database: dto.StatusOK,
	})
}
