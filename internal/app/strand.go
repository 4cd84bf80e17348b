package app

import "sync"

// Strand runs posted functions strictly one at a time, in post order.
// It is the sole synchronization around the in-memory game state:
// joins, actions, ticks, state reads and snapshots all go through it,
// so none of them can observe a half-applied tick.
type Strand struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewStrand starts the worker goroutine behind the strand.
func NewStrand(queueSize int) *Strand {
	s := &Strand{
		tasks: make(chan func(), queueSize),
		quit:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Strand) run() {
	defer s.wg.Done()
	for {
		select {
		case fn := <-s.tasks:
			fn()
		case <-s.quit:
			// Drain what was posted before Close, then stop.
			for {
				select {
				case fn := <-s.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Do posts fn and waits for it to finish. Calling Do from inside a
// posted function deadlocks; nothing in the server does that.
func (s *Strand) Do(fn func()) {
	done := make(chan struct{})
	s.tasks <- func() {
		fn()
		close(done)
	}
	<-done
}

// Post queues fn without waiting for it.
func (s *Strand) Post(fn func()) {
	s.tasks <- fn
}

// Close drains the queue and stops the worker. Posting after Close is
// a bug; the shutdown sequence stops all posters first.
func (s *Strand) Close() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
}
