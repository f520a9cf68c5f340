// Package view ties pending fetches to the lifetime of the request that
// started them. A fetch that settles after its scope closed is dropped.
package view

import (
	"context"
	"errors"
	"sync"
)

var ErrDiscarded = errors.New("view: scope closed before the fetch settled")

type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context {
	return s.ctx
}

func (s *Scope) Alive() bool {
	return s.ctx.Err() == nil
}

// Close cancels pending fetches and waits for their goroutines to return.
// It is safe to call more than once.
func (s *Scope) Close() {
	s.cancel()
	s.wg.Wait()
}

type result[T any] struct {
	value T
	err   error
}

// Await runs fetch under the scope. If the scope closes first, Await returns
// ErrDiscarded and whatever fetch later produces is thrown away.
func Await[T any](s *Scope, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if !s.Alive() {
		return zero, ErrDiscarded
	}

	done := make(chan result[T], 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		value, err := fetch(s.ctx)
		done <- result[T]{value: value, err: err}
	}()

	select {
	case r := <-done:
		if !s.Alive() {
			return zero, ErrDiscarded
		}
		return r.value, r.err
	case <-s.ctx.Done():
		return zero, ErrDiscarded
	}
}
