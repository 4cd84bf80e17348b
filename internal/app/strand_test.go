package app

import (
	"sync"
	"testing"
)

// TestStrandDoSerializesAccess hammers one unsynchronized counter from
// many goroutines; the strand is the only thing keeping it consistent.
func TestStrandDoSerializesAccess(t *testing.T) {
	s := NewStrand(64)
	defer s.Close()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.Do(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var got int
	s.Do(func() { got = counter })
	if got != 1000 {
		t.Errorf("counter = %d, want 1000", got)
	}
}

// TestStrandDoWaitsForCompletion verifies Do is synchronous.
func TestStrandDoWaitsForCompletion(t *testing.T) {
	s := NewStrand(4)
	defer s.Close()

	ran := false
	s.Do(func() { ran = true })
	if !ran {
		t.Error("Do returned before the function ran")
	}
}

// TestStrandPostKeepsOrder posts a sequence and reads it back after a
// barrier: execution order must match post order.
func TestStrandPostKeepsOrder(t *testing.T) {
	s := NewStrand(16)
	defer s.Close()

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		s.Post(func() { got = append(got, i) })
	}
	s.Do(func() {}) // barrier: everything posted above has run

	if len(got) != 10 {
		t.Fatalf("ran %d tasks, want 10", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v, want 0..9", got)
		}
	}
}

// TestStrandCloseDrainsPending checks tasks posted before Close still
// run.
func TestStrandCloseDrainsPending(t *testing.T) {
	s := NewStrand(100)
	n := 0
	for i := 0; i < 100; i++ {
		s.Post(func() { n++ })
	}
	s.Close()
	if n != 100 {
		t.Errorf("ran %d of 100 posted tasks", n)
	}

	// Close is idempotent.
	s.Close()
}
