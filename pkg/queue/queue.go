// Package queue runs background jobs through a pluggable driver.
//
//	type SendOrderConfirmation struct{ OrderID uint }
//	func (SendOrderConfirmation) JobName() string { return "order.confirmation" }
//	func (j *SendOrderConfirmation) Handle(ctx context.Context) error { … }
//
//	q := queue.New(queue.NewMemoryDriver(), queue.WithFailedStore(db))
//	q.Register("order.confirmation", func() queue.Job { return &SendOrderConfirmation{} })
//	go q.Work(ctx, 2)
//	q.Dispatch(ctx, &SendOrderConfirmation{OrderID: 7})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Job is the interface every queued job must satisfy. Jobs are JSON encoded,
// so their payload fields must be exported.
type Job interface {
	JobName() string
	Handle(ctx context.Context) error
}

// Driver is the queue storage backend. Pop returns (nil, nil) when it timed
// out without a job.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// delayer is implemented by drivers with native delayed delivery.
type delayer interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

// runner is implemented by drivers with background housekeeping.
type runner interface {
	run(ctx context.Context)
}

type envelope struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"queued_at"`
}

// Manager dispatches and processes jobs.
type Manager struct {
	driver   Driver
	db       *gorm.DB
	maxRetry int
	backoff  func(attempt int) time.Duration

	mu       sync.RWMutex
	registry map[string]func() Job
	failed   []FailedJob
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxRetry sets how many times a job is attempted before it is failed.
func WithMaxRetry(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxRetry = n
		}
	}
}

// WithBackoff sets the pause between attempts.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(m *Manager) { m.backoff = fn }
}

// WithFailedStore persists exhausted jobs to the failed_jobs table.
func WithFailedStore(db *gorm.DB) Option {
	return func(m *Manager) { m.db = db }
}

func New(driver Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
		registry: make(map[string]func() Job),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register makes a job type available for decoding by name.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

// Dispatch pushes job onto the queue.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	return m.driver.Push(ctx, raw)
}

// DispatchAfter pushes job after delay. Drivers without delayed delivery
// use an in-process timer, which does not survive a restart.
func (m *Manager) DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	if d, ok := m.driver.(delayer); ok {
		return d.PushDelayed(ctx, raw, delay)
	}
	time.AfterFunc(delay, func() {
		if err := m.driver.Push(context.Background(), raw); err != nil {
			logger.Error("queue: delayed dispatch failed", "type", job.JobName(), "error", err)
		}
	})
	return nil
}

func encode(job Job) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", job.JobName(), err)
	}
	raw, err := json.Marshal(envelope{Type: job.JobName(), Payload: payload, QueuedAt: time.Now()})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return raw, nil
}

// Work runs n workers and blocks until ctx is cancelled and every in-flight
// job has finished.
func (m *Manager) Work(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	var wg sync.WaitGroup
	if r, ok := m.driver.(runner); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.run(ctx)
		}()
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	wg.Wait()
	logger.Info("queue: workers stopped")
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		raw, err := m.driver.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		m.process(context.WithoutCancel(ctx), raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(ctx, job, env)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, env envelope) {
	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= m.maxRetry; attempt++ {
		if lastErr = job.Handle(ctx); lastErr == nil {
			metrics.RecordQueueJob(env.Type, "ok", start)
			logger.Info("queue: job processed", "type", env.Type, "attempt", attempt)
			return
		}
		logger.Warn("queue: job failed", "type", env.Type, "attempt", attempt, "error", lastErr)
		if attempt < m.maxRetry {
			sleep(ctx, m.backoff(attempt))
		}
	}

	metrics.RecordQueueJob(env.Type, "failed", start)
	m.persistFailed(ctx, env, lastErr, m.maxRetry)
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
