package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"gorm.io/gorm"
)

// ConnectionPoolMetrics is a snapshot of the sql.DB pool
type ConnectionPoolMetrics struct {
	OpenConnections    int
	IdleConnections    int
	MaxOpenConnections int
	InUse              int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleClosed      int64
	MaxLifetimeClosed  int64
}

// HealthChecker periodically pings the database and logs pool stats
type HealthChecker struct {
	db          *gorm.DB
	logger      coreport.Logger
	pingTimeout time.Duration

	mutex        sync.RWMutex
	metricsCache ConnectionPoolMetrics
	lastErr      error

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *gorm.DB, logger coreport.Logger, pingTimeout time.Duration) *HealthChecker {
	return &HealthChecker{
		db:          db,
		logger:      logger,
		pingTimeout: pingTimeout,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start runs a check immediately and then every interval until Stop is called
func (h *HealthChecker) Start(interval time.Duration) {
	if !h.started.CompareAndSwap(false, true) {
		return
	}
	h.CheckHealth()

	go func() {
		defer close(h.doneChan)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		h.logger.Info("Database health monitoring started", map[string]any{
			"interval": interval.String(),
		})

		for {
			select {
			case <-h.stopChan:
				h.logger.Info("Database health monitoring stopped", nil)
				return
			case <-ticker.C:
				h.CheckHealth()
			}
		}
	}()
}

// Stop stops the monitoring goroutine and waits for it to exit. Safe to call twice.
func (h *HealthChecker) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	if h.started.Load() {
		<-h.doneChan
	}
}

// Metrics returns the most recent pool snapshot
func (h *HealthChecker) Metrics() ConnectionPoolMetrics {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.metricsCache
}

// LastError returns the error of the most recent ping, if any
func (h *HealthChecker) LastError() error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.lastErr
}

// CheckHealth pings the database and records pool metrics
func (h *HealthChecker) CheckHealth() {
	sqlDB, err := h.db.DB()
	if err != nil {
		h.record(ConnectionPoolMetrics{}, fmt.Errorf("failed to get database connection: %w", err))
		h.logger.Error("Failed to get SQL DB instance during health check", map[string]any{
			"error": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.pingTimeout)
	defer cancel()

	pingErr := sqlDB.PingContext(ctx)
	if pingErr != nil {
		h.logger.Error("Database ping failed", map[string]any{
			"error": pingErr.Error(),
		})
	}

	stats := sqlDB.Stats()
	metrics := ConnectionPoolMetrics{
		OpenConnections:    stats.OpenConnections,
		IdleConnections:    stats.Idle,
		MaxOpenConnections: stats.MaxOpenConnections,
		InUse:              stats.InUse,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
	h.record(metrics, pingErr)

	fields := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// Warn when more than 80% of the pool is busy
	if stats.MaxOpenConnections > 0 && float64(stats.InUse) > float64(stats.MaxOpenConnections)*0.8 {
		h.logger.Warn("Database connection pool nearly exhausted", fields)
		return
	}
	h.logger.Debug("Database connection pool stats", fields)
}

func (h *HealthChecker) record(metrics ConnectionPoolMetrics, err error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.metricsCache = metrics
	h.lastErr = err
}
