// Package pool provides the bounded worker pool that runs prefetch
// loads off the cache's lock.
package pool

import "sync"

// queueFactor sizes the shared task queue relative to the worker count.
const queueFactor = 32

// Pool is a fixed-size pool of goroutines draining a shared task queue.
//
// Submit never blocks: when the queue is full the task is rejected and
// the caller decides what to do. A slow task occupies only its own
// worker; the queue keeps absorbing submissions for the other workers.
//
// Every accepted task runs: Close waits for in-flight submissions
// before signaling the workers, and the workers drain the queue on the
// way out.
//
// Pool is safe for concurrent use.
type Pool struct {
	tasks   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	workers int

	// mu serializes Submit's enqueue against Close: once Close holds the
	// write lock, no Submit can slip a task past the workers' final
	// drain.
	mu     sync.RWMutex
	closed bool
}

// New creates a pool with the given number of workers and starts them.
// Non-positive counts fall back to a single worker.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		tasks:   make(chan func(), workers*queueFactor),
		done:    make(chan struct{}),
		workers: workers,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case task := <-p.tasks:
					task()
				default:
					return
				}
			}
		case task := <-p.tasks:
			task()
		}
	}
}

// Submit queues a task for execution. Returns false when the pool is
// closed or the queue is full; the task is not run in that case.
func (p *Pool) Submit(task func()) bool {
	if task == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.workers }

// Queued returns the number of tasks waiting for a worker.
func (p *Pool) Queued() int { return len(p.tasks) }

// Close stops accepting tasks, lets queued tasks finish, and waits for
// the workers to exit. Safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
}
