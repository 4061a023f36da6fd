package queue

import (
	"testing"
	"time"
)

func TestFIFOOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	for i := 0; i < 5; i++ {
		got := q.Pop()
		if got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := New[string]()
	done := make(chan string)
	go func() {
		done <- q.Pop()
	}()

	select {
	case <-done:
		t.Fatal("Pop returned before any Push")
	case <-time.After(50 * time.Millisecond):
	}

	q.Push("hello")
	select {
	case v := <-done:
		if v != "hello" {
			t.Fatalf("expected hello, got %s", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Push")
	}
}

func TestTryPopEmpty(t *testing.T) {
	q := New[int]()
	if _, ok := q.TryPop(); ok {
		t.Fatal("expected TryPop to fail on empty queue")
	}
}

func TestDrainAll(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)
	drained := q.DrainAll()
	if len(drained) != 3 {
		t.Fatalf("expected 3 items, got %d", len(drained))
	}
	if !q.Empty() {
		t.Fatal("expected queue to be empty after DrainAll")
	}
}

func TestWaitNonEmptyTimeout(t *testing.T) {
	q := New[int]()
	if q.WaitNonEmpty(30 * time.Millisecond) {
		t.Fatal("expected WaitNonEmpty to time out on empty queue")
	}
}

func TestWaitNonEmptySucceeds(t *testing.T) {
	q := New[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(42)
	}()
	if !q.WaitNonEmpty(time.Second) {
		t.Fatal("expected WaitNonEmpty to observe the push")
	}
	if got := q.Count(); got != 1 {
		t.Fatalf("expected 1 item, got %d", got)
	}
}
