package storage

import (
	"runtime"
	"sync"
)

// UploadQueue runs archive uploads on a fixed set of background workers so
// the request path never blocks on blob storage.
type UploadQueue struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once
	mu       sync.Mutex
	closed   bool
}

// NewUploadQueue creates a queue with the specified number of workers.
func NewUploadQueue(workers int) *UploadQueue {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &UploadQueue{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers. Safe to call more than once.
func (q *UploadQueue) Start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			go q.worker()
		}
	})
}

func (q *UploadQueue) worker() {
	for job := range q.jobQueue {
		job()
		q.wg.Done()
	}
}

// Submit enqueues a job and reports whether it was accepted. A job arriving
// after Close is dropped; a late analysis goroutine outliving its request
// budget can still reach Submit during shutdown, and dropping a best-effort
// upload beats a send on a closed channel. Blocks only when the queue buffer
// is full.
func (q *UploadQueue) Submit(job func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.wg.Add(1)
	q.jobQueue <- job
	return true
}

// Wait blocks until every accepted job has finished.
func (q *UploadQueue) Wait() {
	q.wg.Wait()
}

// Close stops the workers after the queued jobs drain. Safe to call more
// than once.
func (q *UploadQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.jobQueue)
}
