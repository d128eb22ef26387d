// Package sched is a cooperative run-to-completion task scheduler.
//
// Tasks are plain functions posted in FIFO order and executed one after the
// other on whichever goroutine drives the scheduler (Run, RunOnce or
// RunPending). Tasks never interleave with each other, so state touched only
// from task context needs no further locking. Post may be called from any
// goroutine or from an interrupt handler; it never blocks.
package sched

import (
	"context"

	"batterygauge-go/x/critsec"
)

// Task is a unit of deferred work.
type Task func()

// Poster is the subset of the scheduler handed to producers.
type Poster interface {
	Post(t Task)
}

type Scheduler struct {
	cs    critsec.Lock
	tasks []Task
	head  int
	wake  chan struct{} // edge: empty -> non-empty
}

// Default is the process-wide scheduler.
var Default = New()

func New() *Scheduler {
	return &Scheduler{wake: make(chan struct{}, 1)}
}

// Post appends t to the run queue. Nil tasks are ignored.
func (s *Scheduler) Post(t Task) {
	if t == nil {
		return
	}
	s.cs.Lock()
	s.tasks = append(s.tasks, t)
	s.cs.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending reports the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.cs.Lock()
	n := len(s.tasks) - s.head
	s.cs.Unlock()
	return n
}

// RunPending runs tasks until the queue is empty, including tasks posted by
// the tasks it runs. It returns the number of tasks executed.
func (s *Scheduler) RunPending() int {
	n := 0
	for {
		t := s.next()
		if t == nil {
			return n
		}
		t()
		n++
	}
}

// RunOnce drains the queue, first waiting for work if there is none.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.RunPending() > 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.wake:
	}
	s.RunPending()
	return nil
}

// Run drives the scheduler until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		s.RunPending()
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
	}
}

func (s *Scheduler) next() Task {
	s.cs.Lock()
	defer s.cs.Unlock()
	if s.head == len(s.tasks) {
		return nil
	}
	t := s.tasks[s.head]
	s.tasks[s.head] = nil
	s.head++
	if s.head == len(s.tasks) {
		// Fully drained: reuse the backing array.
		s.tasks = s.tasks[:0]
		s.head = 0
	}
	return t
}
