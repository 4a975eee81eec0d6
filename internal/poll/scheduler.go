// Package poll runs at most one recurring task at a time on behalf of the active route.
package poll

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task performs one refresh. ctx is canceled when the recurrence is stopped, which
// aborts any request still in flight.
type Task func(ctx context.Context)

type recurrence struct {
	owner  string
	cancel context.CancelFunc
	done   chan struct{}
}

type Scheduler struct {
	logger logrus.FieldLogger

	startMu sync.Mutex
	mu      sync.Mutex
	current *recurrence
	// stopped is the last recurrence canceled by Stop. Its task may still be running.
	stopped *recurrence
}

func New(logger logrus.FieldLogger) *Scheduler {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Scheduler{logger: logger.WithField("component", "poll")}
}

// Start stops any running recurrence and waits until its task has returned, then runs
// task immediately and every interval until Stop or ctx is done. Start does nothing when
// ctx is already done. task must not call Start or Stop, and Start must not be called
// while holding a lock that task may need.
func (s *Scheduler) Start(ctx context.Context, owner string, interval time.Duration, task Task) {
	if interval <= 0 {
		interval = time.Second
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	previous, stopped := s.current, s.stopped
	s.current, s.stopped = nil, nil
	s.mu.Unlock()
	for _, rec := range []*recurrence{previous, stopped} {
		if rec == nil {
			continue
		}
		rec.cancel()
		<-rec.done
	}

	// The owner may have left while we waited.
	if ctx.Err() != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	rec := &recurrence{owner: owner, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.current = rec
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"owner": owner, "interval": interval.String()}).Debug("polling started")
	go s.run(runCtx, rec, interval, task)
}

func (s *Scheduler) run(ctx context.Context, rec *recurrence, interval time.Duration, task Task) {
	defer close(rec.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		task(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Stop cancels the running recurrence without waiting for it. After Stop returns every
// task invocation of that recurrence sees a canceled context, and the next Start waits
// for the invocation still in flight.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	rec := s.current
	s.current = nil
	if rec != nil {
		s.stopped = rec
	}
	s.mu.Unlock()

	if rec == nil {
		return
	}
	rec.cancel()
	s.logger.WithField("owner", rec.owner).Debug("polling stopped")
}

// Active reports the owner of the running recurrence.
func (s *Scheduler) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.owner, true
}
