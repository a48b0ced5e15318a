package ledger

import (
	"context"
	"sync"
	"time"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

const (
	defaultQueueSize         = 100
	defaultWorkerIdleTimeout = time.Minute
)

// BalanceProcessorFunc is the function signature for applying one balance change
type BalanceProcessorFunc func(ctx context.Context, userID uint64, amountInCents int64) (*usecase.BalanceUpdateResult, error)

// TransactionManager processes balance changes of each user sequentially.
// Each user with pending work gets one worker goroutine; idle workers exit.
type TransactionManager struct {
	logger      coreport.Logger
	processor   BalanceProcessorFunc
	queueSize   int
	idleTimeout time.Duration

	mu      sync.Mutex
	workers map[uint64]*userWorker
	wg      sync.WaitGroup

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type userWorker struct {
	queue   chan *balanceRequest
	pending int // guarded by TransactionManager.mu
}

// balanceRequest represents a queued balance change
type balanceRequest struct {
	ctx        context.Context
	amount     int64
	resultChan chan balanceResult
}

type balanceResult struct {
	result *usecase.BalanceUpdateResult
	err    error
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(logger coreport.Logger, processor BalanceProcessorFunc, queueSize int) *TransactionManager {
	if processor == nil {
		panic("balance processor function cannot be nil")
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &TransactionManager{
		logger:      logger,
		processor:   processor,
		queueSize:   queueSize,
		idleTimeout: defaultWorkerIdleTimeout,
		workers:     make(map[uint64]*userWorker),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// WithIdleTimeout sets how long a worker waits for new work before exiting
func (m *TransactionManager) WithIdleTimeout(d time.Duration) *TransactionManager {
	if d > 0 {
		m.idleTimeout = d
	}
	return m
}

// Enqueue submits a balance change to the user's queue and waits for its result
func (m *TransactionManager) Enqueue(ctx context.Context, userID uint64, amountInCents int64) (*usecase.BalanceUpdateResult, error) {
	worker, err := m.acquireWorker(userID)
	if err != nil {
		return nil, err
	}

	req := &balanceRequest{
		ctx:        ctx,
		amount:     amountInCents,
		resultChan: make(chan balanceResult, 1),
	}

	select {
	case worker.queue <- req:
	case <-ctx.Done():
		m.release(worker)
		m.logger.Warn("Context canceled while enqueueing balance update", map[string]any{
			"user_id": userID,
			"error":   ctx.Err().Error(),
		})
		return nil, ctx.Err()
	case <-m.stop:
		m.release(worker)
		return nil, errs.ErrShuttingDown
	}

	return m.awaitResult(ctx, userID, req)
}

// awaitResult waits for the worker's answer to req. A result that is already
// buffered is returned even when ctx or shutdown fired at the same time,
// since the change behind it has been committed.
func (m *TransactionManager) awaitResult(ctx context.Context, userID uint64, req *balanceRequest) (*usecase.BalanceUpdateResult, error) {
	select {
	case res := <-req.resultChan:
		return res.result, res.err
	case <-ctx.Done():
		if res, ok := bufferedResult(req); ok {
			return res.result, res.err
		}
		m.logger.Warn("Context canceled while waiting for balance update", map[string]any{
			"user_id": userID,
			"error":   ctx.Err().Error(),
		})
		return nil, ctx.Err()
	case <-m.done:
		if res, ok := bufferedResult(req); ok {
			return res.result, res.err
		}
		return nil, errs.ErrShuttingDown
	}
}

func bufferedResult(req *balanceRequest) (balanceResult, bool) {
	select {
	case res := <-req.resultChan:
		return res, true
	default:
		return balanceResult{}, false
	}
}

// acquireWorker returns the user's worker, starting one if needed, and
// registers one pending request so the worker cannot retire underneath it
func (m *TransactionManager) acquireWorker(userID uint64) (*userWorker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.stop:
		return nil, errs.ErrShuttingDown
	default:
	}

	worker, ok := m.workers[userID]
	if !ok {
		worker = &userWorker{queue: make(chan *balanceRequest, m.queueSize)}
		m.workers[userID] = worker
		m.wg.Add(1)
		go m.runWorker(userID, worker)

		m.logger.Debug("Started balance worker", map[string]any{
			"user_id": userID,
		})
	}
	worker.pending++
	return worker, nil
}

func (m *TransactionManager) release(worker *userWorker) {
	m.mu.Lock()
	worker.pending--
	m.mu.Unlock()
}

// runWorker handles the worker goroutine for a user's queue
func (m *TransactionManager) runWorker(userID uint64, worker *userWorker) {
	defer m.wg.Done()

	idle := time.NewTimer(m.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case req := <-worker.queue:
			m.handle(userID, req)
			m.release(worker)
			idle.Reset(m.idleTimeout)

		case <-idle.C:
			m.mu.Lock()
			if worker.pending == 0 {
				delete(m.workers, userID)
				m.mu.Unlock()
				m.logger.Debug("Balance worker retired", map[string]any{
					"user_id": userID,
				})
				return
			}
			m.mu.Unlock()
			idle.Reset(m.idleTimeout)

		case <-m.stop:
			m.drain(userID, worker)
			return
		}
	}
}

func (m *TransactionManager) handle(userID uint64, req *balanceRequest) {
	if err := req.ctx.Err(); err != nil {
		req.resultChan <- balanceResult{err: err}
		return
	}

	result, err := m.processor(req.ctx, userID, req.amount)
	req.resultChan <- balanceResult{result: result, err: err}
}

// drain finishes requests already queued when shutdown started
func (m *TransactionManager) drain(userID uint64, worker *userWorker) {
	for {
		select {
		case req := <-worker.queue:
			m.handle(userID, req)
			m.release(worker)
		default:
			return
		}
	}
}

// ActiveWorkers returns the number of users with a running worker
func (m *TransactionManager) ActiveWorkers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}

// Shutdown stops accepting work, lets workers finish queued requests and
// waits for them or for ctx to expire
func (m *TransactionManager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down transaction manager", nil)

	m.stopOnce.Do(func() {
		m.mu.Lock()
		close(m.stop)
		m.mu.Unlock()

		go func() {
			m.wg.Wait()
			close(m.done)
		}()
	})

	select {
	case <-m.done:
		m.logger.Info("Transaction manager shut down successfully", nil)
		return nil
	case <-ctx.Done():
		m.logger.Warn("Transaction manager shutdown timed out", map[string]any{
			"error": ctx.Err().Error(),
		})
		return ctx.Err()
	}
}
