package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handle controls one repeating task started by Every.
type Handle struct {
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

// Every runs fn every interval on its own goroutine. The first run happens
// one interval after the call, not immediately. Runs never overlap; a tick
// that arrives while fn is still running is dropped.
func Every(interval time.Duration, fn func()) *Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	h := &Handle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go h.loop(interval, fn)
	return h
}

func (h *Handle) loop(interval time.Duration, fn func()) {
	defer close(h.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			if h.stopped.Load() {
				return
			}
			fn()
		}
	}
}

// Cancel stops future runs. It may be called any number of times, on a
// handle that never fired, or on a nil handle. A run already in progress is
// allowed to finish; no new run starts after Cancel returns.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.stopped.Store(true)
		close(h.stop)
	})
}

// Wait blocks until the task goroutine has exited. Call Cancel first.
func (h *Handle) Wait() {
	if h == nil {
		return
	}
	<-h.done
}

// Done is closed once the task goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
