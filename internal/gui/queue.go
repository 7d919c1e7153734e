package gui

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueStopped is the error of jobs added after Stop
var ErrQueueStopped = errors.New("task queue is shutting down")

// Job is one background task such as a delayed generation or an export
type Job struct {
	ID          int
	Name        string
	Status      JobStatus
	Error       error
	StartedAt   time.Time
	CompletedAt time.Time

	run func(ctx context.Context) error
}

// JobStatus represents the current state of a job
type JobStatus int

const (
	StatusQueued JobStatus = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
)

func (s JobStatus) String() string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusProcessing:
		return "Processing"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// TaskQueue runs jobs one at a time on a worker goroutine, off the UI
// thread. Callbacks run on the worker goroutine and receive a copy of the job.
type TaskQueue struct {
	jobs    chan *Job
	results map[int]*Job

	nextID int
	mu     sync.RWMutex

	// Callbacks for UI updates
	onStatusUpdate func(job *Job)
	onJobComplete  func(job *Job)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTaskQueue creates a queue and starts its worker
func NewTaskQueue(ctx context.Context) *TaskQueue {
	queueCtx, cancel := context.WithCancel(ctx)

	q := &TaskQueue{
		jobs:    make(chan *Job, 100),
		results: make(map[int]*Job),
		nextID:  1,
		ctx:     queueCtx,
		cancel:  cancel,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// SetCallbacks sets the callback functions for UI updates
func (q *TaskQueue) SetCallbacks(onStatusUpdate func(*Job), onJobComplete func(*Job)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onStatusUpdate = onStatusUpdate
	q.onJobComplete = onJobComplete
}

// Add queues fn under a display name and returns the job ID
func (q *TaskQueue) Add(name string, fn func(ctx context.Context) error) int {
	q.mu.Lock()
	job := &Job{
		ID:     q.nextID,
		Name:   name,
		Status: StatusQueued,
		run:    fn,
	}
	q.nextID++
	q.results[job.ID] = job
	q.mu.Unlock()

	if q.ctx.Err() != nil {
		q.finish(job, ErrQueueStopped)
		return job.ID
	}

	select {
	case q.jobs <- job:
		q.notifyStatus(job)
	case <-q.ctx.Done():
		q.finish(job, ErrQueueStopped)
	}
	return job.ID
}

// GetJob returns a copy of a job by ID
func (q *TaskQueue) GetJob(id int) (Job, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.results[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// GetQueueStatus returns the current queue statistics
func (q *TaskQueue) GetQueueStatus() (queued, processing, completed, failed int) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, job := range q.results {
		switch job.Status {
		case StatusQueued:
			queued++
		case StatusProcessing:
			processing++
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}

	return
}

// Busy reports whether a job is queued or running
func (q *TaskQueue) Busy() bool {
	queued, processing, _, _ := q.GetQueueStatus()
	return queued+processing > 0
}

// Stop cancels the running job, drops queued ones and waits for the worker
func (q *TaskQueue) Stop() {
	q.cancel()
	q.wg.Wait()

	// Fail whatever is still waiting in the channel
	for {
		select {
		case job := <-q.jobs:
			q.finish(job, ErrQueueStopped)
		default:
			return
		}
	}
}

func (q *TaskQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.process(job)
		}
	}
}

func (q *TaskQueue) process(job *Job) {
	q.mu.Lock()
	job.Status = StatusProcessing
	job.StartedAt = time.Now()
	q.mu.Unlock()
	q.notifyStatus(job)

	q.finish(job, job.run(q.ctx))
}

// finish records the outcome of a job and calls the completion callback
func (q *TaskQueue) finish(job *Job, err error) {
	q.mu.Lock()
	job.Error = err
	job.Status = StatusCompleted
	if err != nil {
		job.Status = StatusFailed
	}
	job.CompletedAt = time.Now()
	snapshot := *job
	onComplete := q.onJobComplete
	q.mu.Unlock()

	if onComplete != nil {
		onComplete(&snapshot)
	}
}

func (q *TaskQueue) notifyStatus(job *Job) {
	q.mu.RLock()
	snapshot := *job
	onStatus := q.onStatusUpdate
	q.mu.RUnlock()

	if onStatus != nil {
		onStatus(&snapshot)
	}
}
