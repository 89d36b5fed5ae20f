package pool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsAllTasks(t *testing.T) {
	p := New(4, nil)
	defer p.Close()

	const n = 200
	var count atomic.Int64
	done := make(chan struct{})
	var remaining atomic.Int64
	remaining.Store(n)

	for i := 0; i < n; i++ {
		if err := p.Submit(func() {
			count.Add(1)
			if remaining.Add(-1) == 0 {
				close(done)
			}
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all tasks ran")
	}

	if got := count.Load(); got != n {
		t.Fatalf("expected %d executions, got %d", n, got)
	}
}

func TestSubmitAfterCloseFails(t *testing.T) {
	p := New(2, nil)
	p.Close()

	if err := p.Submit(func() {}); err != ErrPoolStopped {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
}

func TestCloseDiscardsQueuedTasks(t *testing.T) {
	p := New(1, nil)

	block := make(chan struct{})
	started := make(chan struct{})
	_ = p.Submit(func() {
		close(started)
		<-block
	})
	<-started

	var ran atomic.Bool
	_ = p.Submit(func() { ran.Store(true) })

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()
	time.Sleep(20 * time.Millisecond) // let Close discard the queued task while task1 still blocks
	close(block)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	if ran.Load() {
		t.Fatal("queued task should have been discarded at shutdown")
	}
}

func TestSubmitWaitBlocksUntilDone(t *testing.T) {
	p := New(2, nil)
	defer p.Close()

	var ran atomic.Bool
	done, err := p.SubmitWait(func() { ran.Store(true) })
	if err != nil {
		t.Fatal(err)
	}
	<-done
	if !ran.Load() {
		t.Fatal("task did not run before done was closed")
	}
}
