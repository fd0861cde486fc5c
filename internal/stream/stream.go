// Package stream implements the in-order asynchronous execution queue of the
// accelerator backend.
//
// Kernels enqueued on a Stream run one at a time on a dedicated goroutine in
// enqueue order. Enqueue returns immediately with a sequence number; Wait and
// Synchronize block the host until the given work has completed.
package stream

import (
	"fmt"
	"sync"

	"github.com/born-ml/gnn/internal/contract"
	"github.com/pkg/errors"
)

// DefaultDepth is the default number of kernels that may be queued before
// Enqueue blocks.
const DefaultDepth = 1024

type kernel struct {
	seq uint64
	fn  func()
}

// Stream executes kernels in program order.
type Stream struct {
	tasks chan kernel
	enqMu sync.Mutex // serializes sequence assignment with the channel send

	mu     sync.Mutex
	cond   *sync.Cond
	issued uint64
	done   uint64
	fault  error
	closed bool

	exited chan struct{}
}

// New starts a stream that queues up to depth kernels.
func New(depth int) *Stream {
	if depth <= 0 {
		depth = DefaultDepth
	}
	s := &Stream{
		tasks:  make(chan kernel, depth),
		exited: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Enqueue schedules fn after all previously enqueued kernels and returns its
// sequence number.
func (s *Stream) Enqueue(fn func()) uint64 {
	s.enqMu.Lock()
	defer s.enqMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		contract.Fail("stream: enqueue on closed stream")
	}
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	s.tasks <- kernel{seq: seq, fn: fn}
	return seq
}

// Record returns the sequence number of the most recently enqueued kernel.
func (s *Stream) Record() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Wait blocks until the kernel with sequence number seq (and every kernel
// before it) has completed. A kernel failure is re-raised here.
func (s *Stream) Wait(seq uint64) {
	s.mu.Lock()
	for s.done < seq {
		s.cond.Wait()
	}
	fault := s.fault
	s.mu.Unlock()

	if fault != nil {
		panic(fault)
	}
}

// Synchronize blocks until every enqueued kernel has completed.
func (s *Stream) Synchronize() {
	s.Wait(s.Record())
}

// Close drains the queue, stops the stream goroutine and returns the first
// kernel fault, if any. The fault is consumed: later waits on the closed
// stream return without panicking. Closing twice is a no-op.
func (s *Stream) Close() error {
	s.enqMu.Lock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.enqMu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	close(s.tasks)
	s.enqMu.Unlock()

	<-s.exited

	s.mu.Lock()
	defer s.mu.Unlock()
	fault := s.fault
	s.fault = nil
	return fault
}

func (s *Stream) run() {
	defer close(s.exited)
	for k := range s.tasks {
		s.mu.Lock()
		poisoned := s.fault != nil
		s.mu.Unlock()

		var fault error
		if !poisoned {
			fault = execute(k)
		}

		s.mu.Lock()
		if fault != nil && s.fault == nil {
			s.fault = fault
		}
		s.done = k.seq
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

// execute runs one kernel and converts a panic into an error.
func execute(k kernel) (fault error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); ok {
			fault = errors.WithMessagef(err, "stream: kernel %d failed", k.seq)
			return
		}
		fault = errors.Errorf("stream: kernel %d failed: %s", k.seq, fmt.Sprint(r))
	}()
	k.fn()
	return nil
}
