package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor is the unit of work the worker drives. Each tick gets
// one ProcessJobs call; the processor decides whether anything is due.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker runs a JobProcessor on a fixed interval until the context is
// cancelled or Stop is called.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop. It blocks until the worker is stopped,
// so callers run it in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("worker started, polling every %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("worker exiting: context cancelled")
			return
		case <-w.stopChan:
			log.Println("worker exiting: stop requested")
			return
		case <-ticker.C:
			// A failed tick is logged and the schedule keeps going.
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Printf("worker run failed: %v", err)
			}
		}
	}
}

// Stop signals the loop and waits for it to drain.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("worker stopped")
}
