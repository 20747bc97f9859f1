// Package schedule runs periodic background tasks.
//
//	s := schedule.New()
//	s.Every(time.Hour, "queue.retry-failed", func(ctx context.Context) error {
//	    _, err := jobs.RetryFailed(ctx)
//	    return err
//	})
//	s.Cron("0 3 * * *", "nightly", nightly)
//	go s.Run(ctx)
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Task is one unit of scheduled work.
type Task func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	cron     []string
	task     Task

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler holds entries and dispatches them from Run. A task never
// overlaps with its own previous run.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	wg      sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{tick: time.Second}
}

// Every runs task every interval, first on the tick after Run starts.
func (s *Scheduler) Every(interval time.Duration, name string, task Task) {
	s.add(&entry{name: name, interval: interval, task: task})
}

// Cron runs task when a 5-field expression (minute hour dom month dow)
// matches. Fields accept *, N, */N and N-M.
func (s *Scheduler) Cron(expr, name string, task Task) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("schedule: %q: want 5 fields, got %d", expr, len(fields))
	}
	s.add(&entry{name: name, cron: fields, task: task})
	return nil
}

func (s *Scheduler) add(e *entry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// Names lists the registered task names with their frequency.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.interval.String()
		if e.cron != nil {
			freq = strings.Join(e.cron, " ")
		}
		out = append(out, fmt.Sprintf("%s [%s]", e.name, freq))
	}
	return out
}

// Run dispatches due tasks until ctx is cancelled, then waits for running
// tasks to return.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	defer s.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.mu.Lock()
			current := append([]*entry(nil), s.entries...)
			s.mu.Unlock()
			for _, e := range current {
				if e.due(now) {
					s.dispatch(ctx, e, now)
				}
			}
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		logger.Warn("schedule: previous run still active", "task", e.name)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "task", e.name, "panic", r)
			}
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "task", e.name, "error", err)
		}
	}()
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	last := e.lastRun
	e.mu.Unlock()

	if e.cron != nil {
		// one run per matching minute
		if !last.IsZero() && last.Truncate(time.Minute).Equal(now.Truncate(time.Minute)) {
			return false
		}
		return matchCron(e.cron, now)
	}
	return last.IsZero() || now.Sub(last) >= e.interval
}

func matchCron(fields []string, t time.Time) bool {
	values := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, values[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int) bool {
	if field == "*" {
		return true
	}
	if step, ok := strings.CutPrefix(field, "*/"); ok {
		n, err := strconv.Atoi(step)
		return err == nil && n > 0 && val%n == 0
	}
	if lo, hi, ok := strings.Cut(field, "-"); ok {
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		return err1 == nil && err2 == nil && val >= a && val <= b
	}
	n, err := strconv.Atoi(field)
	return err == nil && n == val
}
