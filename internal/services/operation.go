package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Operation is a cancellation capability tied to exactly one in-flight
// upload or export. It is never shared between operation kinds, and a
// superseded handle keeps cancelling only its own context, so a stray late
// cancel cannot leak onto a newer operation.
type Operation struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

func newOperation(parent context.Context) *Operation {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Operation{
		id:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID identifies the operation in logs.
func (o *Operation) ID() string {
	return o.id
}

// Context carries the operation's cancellation signal into network calls.
func (o *Operation) Context() context.Context {
	return o.ctx
}

// Cancel aborts this operation. Safe to call more than once.
func (o *Operation) Cancel() {
	o.cancel()
}

// Cancelled reports whether Cancel has been called.
func (o *Operation) Cancelled() bool {
	select {
	case <-o.ctx.Done():
		return true
	default:
		return false
	}
}

// operationSlot owns at most one live Operation of a given kind.
type operationSlot struct {
	mu      sync.Mutex
	current *Operation
}

// begin invalidates any previous operation and installs a fresh one.
func (s *operationSlot) begin(parent context.Context) *Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Cancel()
	}
	op := newOperation(parent)
	s.current = op
	return op
}

// finish releases the slot if op is still the live operation.
func (s *operationSlot) finish(op *Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == op {
		s.current = nil
	}
	op.cancel()
}

// cancelCurrent cancels the live operation, if any.
func (s *operationSlot) cancelCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Cancel()
	}
}

// active reports whether an operation is in flight.
func (s *operationSlot) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}
