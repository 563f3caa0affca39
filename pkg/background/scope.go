package background

import (
	"context"
	"sync"
)

// Scope - a group of goroutines sharing one cancellable context.
type Scope struct {
	ctx       context.Context
	ctxCancel context.CancelFunc
	scope     sync.WaitGroup
}

// NewScope - builds scope derived from parent context.
// The returned cancel func cancels the scope context and waits for all members.
func NewScope(parent context.Context) (scope *Scope, cancel func()) {
	ctx, cancelFunc := context.WithCancel(parent)
	b := &Scope{
		ctx:       ctx,
		ctxCancel: cancelFunc,
	}
	return b,
		func() {
			b.ctxCancel()
			b.scope.Wait()
		}
}

// Context - return scope context
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go - runs f as a scope member.
func (s *Scope) Go(f func(ctx context.Context)) {
	s.scope.Add(1)
	go func() {
		defer s.scope.Done()
		f(s.ctx)
	}()
}

// Add - notifies scope to register processes/workers/layers.
// Based on sync.WaitGroup.
func (s *Scope) Add(delta int) {
	s.scope.Add(delta)
}

// Done - notifies scope when process/worker/layer is done.
// Based on sync.WaitGroup.
func (s *Scope) Done() {
	s.scope.Done()
}

// Wait - blocks until all members are done, without cancelling the scope.
func (s *Scope) Wait() {
	s.scope.Wait()
}
