package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// FailedJob is a job that exhausted its retries.
type FailedJob struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobType  string    `gorm:"size:255;not null;index" json:"job_type"`
	Payload  string    `gorm:"type:text;not null" json:"payload"`
	Error    string    `gorm:"type:text" json:"error"`
	Attempts int       `gorm:"not null;default:0" json:"attempts"`
	FailedAt time.Time `gorm:"not null" json:"failed_at"`
}

func (FailedJob) TableName() string { return "failed_jobs" }

// persistFailed records the failure in memory and, when configured, in the
// failed_jobs table.
func (m *Manager) persistFailed(ctx context.Context, env envelope, lastErr error, attempts int) {
	record := FailedJob{
		JobType:  env.Type,
		Payload:  string(env.Payload),
		Attempts: attempts,
		FailedAt: time.Now(),
	}
	if lastErr != nil {
		record.Error = lastErr.Error()
	}

	if m.db != nil {
		if err := m.db.WithContext(ctx).Create(&record).Error; err != nil {
			logger.Error("queue: persist failed job", "type", env.Type, "error", err)
		}
	}

	m.mu.Lock()
	m.failed = append(m.failed, record)
	m.mu.Unlock()
}

// FailedJobs returns the failed jobs, newest first. With a failed store it
// reads the table; otherwise the in-memory list of this process.
func (m *Manager) FailedJobs(ctx context.Context) ([]FailedJob, error) {
	if m.db != nil {
		var out []FailedJob
		err := m.db.WithContext(ctx).Order("id DESC").Find(&out).Error
		return out, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	for i, f := range m.failed {
		out[len(m.failed)-1-i] = f
	}
	return out, nil
}

// RetryFailed pushes every failed job back onto the queue and forgets it.
// It returns how many jobs were requeued.
func (m *Manager) RetryFailed(ctx context.Context) (int, error) {
	failed, err := m.FailedJobs(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, f := range failed {
		raw, err := json.Marshal(envelope{Type: f.JobType, Payload: json.RawMessage(f.Payload), QueuedAt: time.Now()})
		if err != nil {
			return n, fmt.Errorf("queue: marshal envelope: %w", err)
		}
		if err := m.driver.Push(ctx, raw); err != nil {
			return n, err
		}
		if err := m.forgetFailed(ctx, f); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		logger.Info("queue: failed jobs requeued", "count", n)
	}
	return n, nil
}

func (m *Manager) forgetFailed(ctx context.Context, f FailedJob) error {
	if m.db != nil {
		return m.db.WithContext(ctx).Delete(&FailedJob{}, f.ID).Error
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.failed {
		if m.failed[i].FailedAt.Equal(f.FailedAt) && m.failed[i].Payload == f.Payload {
			m.failed = append(m.failed[:i], m.failed[i+1:]...)
			break
		}
	}
	return nil
}
