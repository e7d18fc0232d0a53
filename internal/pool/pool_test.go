package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsTasks(t *testing.T) {
	p := New(2)
	defer p.Close()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		ok := p.Submit(func() {
			defer wg.Done()
			count.Add(1)
		})
		if !ok {
			wg.Done()
		}
	}
	wg.Wait()

	if count.Load() == 0 {
		t.Error("expected tasks to run")
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(1)
	p.Close()

	if p.Submit(func() {}) {
		t.Error("Submit should fail after Close")
	}
}

func TestCloseWaitsForRunningTask(t *testing.T) {
	p := New(1)

	started := make(chan struct{})
	var finished atomic.Bool
	p.Submit(func() {
		close(started)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})

	<-started
	p.Close()

	if !finished.Load() {
		t.Error("Close returned before the running task finished")
	}
}

func TestAcceptedTasksRunDespiteConcurrentClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		p := New(2)

		var accepted, executed atomic.Int32
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if p.Submit(func() { executed.Add(1) }) {
					accepted.Add(1)
				}
			}
		}()

		p.Close() // races with the submitter
		wg.Wait()

		if a, e := accepted.Load(), executed.Load(); a != e {
			t.Fatalf("%d tasks accepted but %d executed", a, e)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close() // must not panic
}

func TestSlowTaskBlocksOnlyItsWorker(t *testing.T) {
	p := New(2)
	defer p.Close()

	block := make(chan struct{})
	p.Submit(func() { <-block })

	ran := make(chan struct{})
	p.Submit(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Error("second worker should have run the task")
	}
	close(block)
}
