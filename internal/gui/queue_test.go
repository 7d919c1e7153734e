package gui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// waitJobs collects completed jobs until n arrived or the timeout hits
func waitJobs(t *testing.T, done <-chan Job, n int) []Job {
	t.Helper()
	var jobs []Job
	timeout := time.After(5 * time.Second)
	for len(jobs) < n {
		select {
		case job := <-done:
			jobs = append(jobs, job)
		case <-timeout:
			t.Fatalf("Timed out after %d of %d jobs", len(jobs), n)
		}
	}
	return jobs
}

func newTestQueue(t *testing.T) (*TaskQueue, <-chan Job) {
	t.Helper()
	q := NewTaskQueue(context.Background())
	t.Cleanup(q.Stop)

	done := make(chan Job, 10)
	q.SetCallbacks(nil, func(job *Job) { done <- *job })
	return q, done
}

func TestTaskQueueRunsJobsInOrder(t *testing.T) {
	q, done := newTestQueue(t)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		q.Add(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	jobs := waitJobs(t, done, 3)
	for _, job := range jobs {
		if job.Status != StatusCompleted {
			t.Errorf("Job %s: expected Completed, got %s", job.Name, job.Status)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"first", "second", "third"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, order)
		}
	}
}

func TestTaskQueueRecordsFailure(t *testing.T) {
	q, done := newTestQueue(t)
	errBoom := errors.New("boom")

	id := q.Add("export", func(context.Context) error { return errBoom })
	waitJobs(t, done, 1)

	job, ok := q.GetJob(id)
	if !ok {
		t.Fatalf("Job %d not found", id)
	}
	if job.Status != StatusFailed {
		t.Errorf("Expected Failed, got %s", job.Status)
	}
	if !errors.Is(job.Error, errBoom) {
		t.Errorf("Expected boom error, got %v", job.Error)
	}
	if job.CompletedAt.IsZero() {
		t.Error("CompletedAt should be set")
	}

	_, _, completed, failed := q.GetQueueStatus()
	if completed != 0 || failed != 1 {
		t.Errorf("Expected 0 completed and 1 failed, got %d and %d", completed, failed)
	}
	if q.Busy() {
		t.Error("Queue should not be busy after the job finished")
	}
}

func TestTaskQueueStopCancelsRunningJob(t *testing.T) {
	q := NewTaskQueue(context.Background())
	started := make(chan struct{})

	id := q.Add("generate", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("Job did not start")
	}
	if !q.Busy() {
		t.Error("Queue should be busy while the job runs")
	}

	q.Stop()

	job, _ := q.GetJob(id)
	if job.Status != StatusFailed || !errors.Is(job.Error, context.Canceled) {
		t.Errorf("Expected a canceled job, got %s with %v", job.Status, job.Error)
	}
}

func TestTaskQueueAddAfterStop(t *testing.T) {
	q := NewTaskQueue(context.Background())
	q.Stop()

	ran := false
	id := q.Add("late", func(context.Context) error {
		ran = true
		return nil
	})

	job, ok := q.GetJob(id)
	if !ok {
		t.Fatal("Job should be recorded")
	}
	if !errors.Is(job.Error, ErrQueueStopped) {
		t.Errorf("Expected ErrQueueStopped, got %v", job.Error)
	}
	if ran {
		t.Error("Job must not run after Stop")
	}
}

func TestJobStatusString(t *testing.T) {
	tests := map[JobStatus]string{
		StatusQueued:     "Queued",
		StatusProcessing: "Processing",
		StatusCompleted:  "Completed",
		StatusFailed:     "Failed",
		JobStatus(42):    "Unknown",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("JobStatus(%d).String() = %q, want %q", int(status), got, want)
		}
	}
}
