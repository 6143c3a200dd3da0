package service

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
)

// Dispatcher runs detached background tasks. Errors and panics stop at the
// task boundary and are only logged.
type Dispatcher struct {
	wg sync.WaitGroup
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Go starts fn in its own goroutine with a context that is not tied to any
// request.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[Dispatcher] task %s panicked: %v\n%s", name, rec, debug.Stack())
			}
		}()
		if err := fn(context.Background()); err != nil {
			log.Printf("[Dispatcher] task %s failed: %v", name, err)
		}
	}()
}

// Wait blocks until every started task finishes or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
