package daemon

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TaskFunc represents a runnable task.
type TaskFunc func() error

// NotifyFunc is called with the task error when a run fails.
type NotifyFunc func(err error)

// Scheduler runs a task on a cron schedule. It is used by the daemon to
// prune stale history sessions in the background.
type Scheduler struct {
	Task    TaskFunc
	OnError NotifyFunc

	parser cron.Parser

	mu       sync.Mutex
	schedule cron.Schedule
	nextRun  time.Time
	running  bool

	stopCh chan struct{}
}

func NewScheduler(task TaskFunc, onError NotifyFunc) *Scheduler {
	if task == nil {
		panic("task function cannot be nil")
	}
	return &Scheduler{
		Task:    task,
		OnError: onError,
		parser:  cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		stopCh:  make(chan struct{}),
	}
}

// Schedule parses cronExpr and arms the next run. It can be called before
// or after Start.
func (s *Scheduler) Schedule(cronExpr string) error {
	sh, err := s.parser.Parse(cronExpr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.schedule = sh
	s.nextRun = sh.Next(time.Now())
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.runScheduled()
}

func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh: // already closed
	default:
		close(s.stopCh)
	}
}

// Status reports the next scheduled run and whether the loop is running.
func (s *Scheduler) Status() (next time.Time, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun, s.running
}

func (s *Scheduler) runScheduled() {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		sh := s.schedule
		next := s.nextRun
		s.mu.Unlock()

		if sh == nil {
			// Nothing armed yet; check again shortly.
			select {
			case <-s.stopCh:
				return
			case <-time.After(time.Second):
				continue
			}
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := s.Task(); err != nil {
			logrus.WithError(err).Error("scheduled task failed")
			if s.OnError != nil {
				s.OnError(err)
			}
		}

		s.mu.Lock()
		s.nextRun = sh.Next(time.Now())
		s.mu.Unlock()
	}
}
