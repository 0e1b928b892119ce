package scheduler

import (
	"fmt"
	"sync"
	"time"

	"mealtracker-go-worker/services/trackLog"
)

// Scheduler 管名稱對應的週期性工作，
// 同名重複註冊會保留原本的排程，不會跑出第二份
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]chan struct{}
}

func New() *Scheduler {
	return &Scheduler{jobs: make(map[string]chan struct{})}
}

// RegisterPeriodic 已經有同名工作時回傳 false，原排程不動
func (s *Scheduler) RegisterPeriodic(name string, interval time.Duration, fn func() error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return false
	}
	stop := make(chan struct{})
	s.jobs[name] = stop
	go s.run(name, interval, fn, stop)
	return true
}

func (s *Scheduler) Registered(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.jobs[name]; ok {
		close(stop)
		delete(s.jobs, name)
	}
}

func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, stop := range s.jobs {
		close(stop)
		delete(s.jobs, name)
	}
}

func (s *Scheduler) run(name string, interval time.Duration, fn func() error, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := fn(); err != nil {
				trackLog.Error(fmt.Sprintf("[scheduler] job %s fail: %s", name, err.Error()), true)
			}
		case <-stop:
			return
		}
	}
}
