package app

import (
	"context"
	"sort"
	"time"
)

// Step is one stage of a timed sequence: wait Delay, then Run.
type Step struct {
	Delay time.Duration
	Run   func(ctx context.Context)
}

type scheduledStep struct {
	at  time.Duration
	seq uint64
	run func(ctx context.Context)
}

// Scheduler runs staged steps against a virtual clock. It is not safe for
// concurrent use; the host advances it from a single loop.
type Scheduler struct {
	now     time.Duration
	nextSeq uint64
	queue   []scheduledStep
}

// NewScheduler returns a scheduler at virtual time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of steps waiting to run.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Stage chains steps so that each one is scheduled Delay after the previous one ran.
func (s *Scheduler) Stage(steps ...Step) {
	if len(steps) == 0 {
		return
	}
	head, rest := steps[0], steps[1:]
	s.after(head.Delay, func(ctx context.Context) {
		if head.Run != nil {
			head.Run(ctx)
		}
		s.Stage(rest...)
	})
}

// Clear drops every pending step.
func (s *Scheduler) Clear() {
	s.queue = nil
}

// Advance moves the clock forward by d, running due steps in time order.
// Steps scheduled while advancing run in the same call when they fall due.
func (s *Scheduler) Advance(ctx context.Context, d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := s.now + d
	for len(s.queue) > 0 && s.queue[0].at <= target {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.now = next.at
		next.run(ctx)
	}
	s.now = target
}

// Flush runs every pending step, and the steps they stage, as if their time had come.
func (s *Scheduler) Flush(ctx context.Context) {
	for len(s.queue) > 0 {
		s.Advance(ctx, s.queue[len(s.queue)-1].at-s.now)
	}
}

func (s *Scheduler) after(delay time.Duration, run func(ctx context.Context)) {
	if delay < 0 {
		delay = 0
	}
	s.nextSeq++
	s.queue = append(s.queue, scheduledStep{at: s.now + delay, seq: s.nextSeq, run: run})
	sort.SliceStable(s.queue, func(i, j int) bool {
		if s.queue[i].at == s.queue[j].at {
			return s.queue[i].seq < s.queue[j].seq
		}
		return s.queue[i].at < s.queue[j].at
	})
}
