package stopper

import (
	"sync"
)

func New() *Stopper {
	idle := make(chan struct{})
	close(idle)

	return &Stopper{
		idle:     idle,
		stopping: make(chan struct{}),
	}
}

// Stopper tracks in-flight jobs. Unlike sync.WaitGroup, Add may be called while another
// goroutine is blocked in Wait, and once Stop is called no new jobs are admitted.
type Stopper struct {
	mu  sync.Mutex
	cnt int32

	// idle is closed whenever cnt is zero
	idle chan struct{}

	stoppingOnce sync.Once
	stopping     chan struct{}
}

// Add admits a new job. It returns false if the stopper is stopping.
func (s *Stopper) Add() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.stopping:
		return false
	default:
	}

	if s.cnt == 0 {
		s.idle = make(chan struct{})
	}
	s.cnt++

	return true
}

// Done marks one admitted job as finished
func (s *Stopper) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cnt <= 0 {
		return
	}

	s.cnt--

	if s.cnt == 0 {
		close(s.idle)
	}
}

// Count returns the number of admitted jobs that haven't finished yet
func (s *Stopper) Count() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cnt
}

// Stop stops admitting new jobs
func (s *Stopper) Stop() {
	s.stoppingOnce.Do(func() {
		s.mu.Lock()
		close(s.stopping)
		s.mu.Unlock()
	})
}

// Stopping indicates that no new jobs are admitted
func (s *Stopper) Stopping() bool {
	select {
	case <-s.stopping:
		return true
	default:
		return false
	}
}

// Wait blocks until there are no jobs in flight
func (s *Stopper) Wait() {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	<-idle
}
