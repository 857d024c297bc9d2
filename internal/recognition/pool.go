package recognition

import (
	"context"
	"runtime"
)

// Pool bounds how many embedding computations run at once.
type Pool struct {
	sem chan struct{}
}

// NewPool creates a pool with size slots; size <= 0 means one per CPU.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Do runs fn once a slot is free. It gives up with ctx.Err() if ctx ends first.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()

	return fn()
}
