package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// TaskResult carries the outcome of a task submitted with SubmitWithResult
type TaskResult struct {
	Data  interface{}
	Error error
}

// Config holds worker pool settings
type Config struct {
	Workers   int `mapstructure:"workers"`    // pool capacity
	QueueSize int `mapstructure:"queue_size"` // reserved for pre-allocation hints
}

// DefaultConfig returns default pool settings
func DefaultConfig() *Config {
	return &Config{
		Workers:   32,
		QueueSize: 256,
	}
}

// Statistics is a point-in-time snapshot of the task counters
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
}

type counters struct {
	mu    sync.RWMutex
	stats Statistics
}

func (c *counters) incSubmitted() {
	c.mu.Lock()
	c.stats.Submitted++
	c.mu.Unlock()
}

func (c *counters) incCompleted() {
	c.mu.Lock()
	c.stats.Completed++
	c.mu.Unlock()
}

func (c *counters) incFailed() {
	c.mu.Lock()
	c.stats.Failed++
	c.mu.Unlock()
}

func (c *counters) get() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Pool is a bounded goroutine pool backed by ants. The search
// orchestrator submits one fetch task per source to it, so pool
// capacity caps the number of concurrent upstream calls.
type Pool struct {
	pool   *ants.Pool
	config *Config
	stats  *counters

	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger
}

// New creates a worker pool
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	antsPool, err := ants.NewPool(config.Workers,
		ants.WithPanicHandler(func(v interface{}) {
			logger.Error("worker panic", zap.Any("panic", v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		pool:   antsPool,
		config: config,
		stats:  &counters{},
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}, nil
}

// Submit schedules a task on the pool
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.ctx.Done():
		return ErrPoolClosed
	default:
	}

	p.stats.incSubmitted()
	err := p.pool.Submit(func() {
		defer p.stats.incCompleted()
		task()
	})
	if err != nil {
		p.stats.incFailed()
		return fmt.Errorf("submit failed: %w", err)
	}

	return nil
}

// SubmitWithResult schedules a task and returns a channel that yields
// its single result. The channel is buffered, so the worker never
// blocks on a reader that already gave up.
func (p *Pool) SubmitWithResult(task func() (interface{}, error)) (<-chan TaskResult, error) {
	resultCh := make(chan TaskResult, 1)

	err := p.Submit(func() {
		data, err := task()
		resultCh <- TaskResult{Data: data, Error: err}
		close(resultCh)
	})
	if err != nil {
		return nil, err
	}

	return resultCh, nil
}

// Running returns the number of busy workers
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free returns the number of idle worker slots
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Stats returns a snapshot of task counters
func (p *Pool) Stats() Statistics {
	return p.stats.get()
}

// Shutdown stops accepting tasks and releases the pool
func (p *Pool) Shutdown() {
	p.cancel()
	p.pool.Release()
}
