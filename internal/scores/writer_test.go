package scores

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubInserter struct {
	mu      sync.Mutex
	recs    []Record
	failFor string // record name whose insert fails
}

func (s *stubInserter) Insert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Name == s.failFor {
		return errors.New("connection refused")
	}
	s.recs = append(s.recs, rec)
	return nil
}

func (s *stubInserter) records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.recs...)
}

// TestWriterDeliversRecords checks the queue drains into the sink and
// Close flushes what is left.
func TestWriterDeliversRecords(t *testing.T) {
	sink := &stubInserter{}
	w := NewWriter(sink, 16)
	w.Start(2)

	want := []Record{
		{Name: "Ann", Score: 42, PlayTime: 120.5},
		{Name: "Bob", Score: 30, PlayTime: 60},
		{Name: "Cid", Score: 0, PlayTime: 75},
	}
	for _, rec := range want {
		if !w.Offer(rec) {
			t.Fatalf("Offer(%+v) = false with room in the queue", rec)
		}
	}
	w.Close()

	got := sink.records()
	if len(got) != len(want) {
		t.Fatalf("delivered %d records, want %d", len(got), len(want))
	}
	seen := make(map[string]Record, len(got))
	for _, rec := range got {
		seen[rec.Name] = rec
	}
	for _, rec := range want {
		if seen[rec.Name] != rec {
			t.Errorf("record %q = %+v, want %+v", rec.Name, seen[rec.Name], rec)
		}
	}
}

// TestWriterDropsWhenFull verifies Offer never blocks: without workers
// the queue fills and further records are refused.
func TestWriterDropsWhenFull(t *testing.T) {
	w := NewWriter(&stubInserter{}, 2)

	if !w.Offer(Record{Name: "first"}) || !w.Offer(Record{Name: "second"}) {
		t.Fatalf("offers inside the queue capacity failed")
	}
	if w.Offer(Record{Name: "third"}) {
		t.Errorf("Offer succeeded on a full queue")
	}
}

// TestWriterSurvivesInsertFailures checks a failing insert costs one
// record, not the worker.
func TestWriterSurvivesInsertFailures(t *testing.T) {
	sink := &stubInserter{failFor: "lost"}
	w := NewWriter(sink, 4)
	w.Start(1)

	w.Offer(Record{Name: "lost"})
	w.Offer(Record{Name: "kept", Score: 7, PlayTime: 30})
	w.Close()

	got := sink.records()
	if len(got) != 1 || got[0].Name != "kept" {
		t.Errorf("records = %+v, want just the record after the failure", got)
	}
}

// TestWriterQueueSizeFloor verifies a silly queue size still yields a
// working writer.
func TestWriterQueueSizeFloor(t *testing.T) {
	w := NewWriter(&stubInserter{}, 0)
	if !w.Offer(Record{Name: "only"}) {
		t.Errorf("minimum queue refused its first record")
	}
	if w.Offer(Record{Name: "extra"}) {
		t.Errorf("minimum queue accepted a second record without a worker")
	}
}
