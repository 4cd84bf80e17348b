package scores

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Inserter is the single-record sink the writer drains into.
type Inserter interface {
	Insert(ctx context.Context, rec Record) error
}

const insertTimeout = 5 * time.Second

// Writer decouples the simulation from database latency: retirement
// records go into a buffered queue and background workers write them
// out. The queue never blocks the caller; a failed or overflowing
// write costs one record, never a tick.
type Writer struct {
	sink  Inserter
	queue chan Record
	wg    sync.WaitGroup
}

// NewWriter sizes the queue. Call Start to launch the workers.
func NewWriter(sink Inserter, queueSize int) *Writer {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Writer{
		sink:  sink,
		queue: make(chan Record, queueSize),
	}
}

// Start launches the background workers.
func (w *Writer) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go w.worker()
	}
}

func (w *Writer) worker() {
	defer w.wg.Done()
	for rec := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		if err := w.sink.Insert(ctx, rec); err != nil {
			log.WithFields(log.Fields{
				"name":  rec.Name,
				"score": rec.Score,
				"error": err.Error(),
			}).Warn("scoreboard write failed, record dropped")
		}
		cancel()
	}
}

// Offer queues a record without blocking. False means the queue was
// full and the record was dropped.
func (w *Writer) Offer(rec Record) bool {
	select {
	case w.queue <- rec:
		return true
	default:
		return false
	}
}

// Close flushes the queue and stops the workers. No Offer may run
// concurrently with or after Close.
func (w *Writer) Close() {
	close(w.queue)
	w.wg.Wait()
}
