package session

import (
	"context"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// Sweeper periodically deletes expired sessions
type Sweeper struct {
	sessions usecase.SessionUseCase
	logger   coreport.Logger
	timeout  time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSweeper creates a sweeper; each sweep is bounded by timeout
func NewSweeper(sessions usecase.SessionUseCase, logger coreport.Logger, timeout time.Duration) *Sweeper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sweeper{
		sessions: sessions,
		logger:   logger,
		timeout:  timeout,
		stopChan: make(chan struct{}),
	}
}

// Start runs a sweep immediately and then every interval until Stop
func (s *Sweeper) Start(interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn("Session sweeper disabled", map[string]any{
			"interval": interval.String(),
		})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Info("Session sweeper started", map[string]any{
			"interval": interval.String(),
		})
		s.sweep()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				s.logger.Info("Session sweeper stopped", nil)
				return
			}
		}
	}()
}

// Stop stops the sweeper and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.sessions.PurgeExpired(ctx); err != nil {
		s.logger.Error("Failed to purge expired sessions", map[string]any{
			"error": err.Error(),
		})
	}
}
