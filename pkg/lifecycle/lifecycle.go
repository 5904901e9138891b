// Package lifecycle coordinates startup and shutdown hooks across the
// subsystems of a courier process.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator owns the process context and the startup/shutdown hook groups.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      bool
	readyMu    sync.RWMutex

	errMu sync.Mutex
	errs  []error
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
// Long-running consumers use it as their root context.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently as part of startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown runs fn concurrently; hooks block on <-c.Context().Done()
// before releasing their resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Go runs a long-lived worker bound to the coordinator context. Shutdown
// waits for fn to return; a non-nil error other than context cancellation
// is retained and reported by Err.
func (c *Coordinator) Go(name string, fn func(ctx context.Context) error) {
	c.shutdownWg.Go(func() {
		if err := fn(c.ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.errMu.Lock()
			c.errs = append(c.errs, fmt.Errorf("%s: %w", name, err))
			c.errMu.Unlock()
		}
	})
}

// Err joins the errors returned by workers started with Go.
func (c *Coordinator) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return errors.Join(c.errs...)
}

// Ready reports whether every startup hook has returned.
func (c *Coordinator) Ready() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	return c.ready
}

// WaitForStartup blocks until all startup hooks finish, then marks the
// coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.readyMu.Lock()
	c.ready = true
	c.readyMu.Unlock()
}

// Shutdown cancels the process context and waits up to timeout for the
// shutdown hooks to drain.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
