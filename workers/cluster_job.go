package workers

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/torvik/lumengallery/facecluster"
	"github.com/torvik/lumengallery/services"
)

var (
	// ErrJobNotFound is returned when a job identifier is unknown.
	ErrJobNotFound = errors.New("clustering job not found")
	// ErrJobAlreadyRunning is returned when a second continuous job is
	// requested while one is active. The check is advisory, not a lock.
	ErrJobAlreadyRunning = errors.New("a clustering job is already running")
)

// BatchRunner is the slice of the cluster service the job runner drives.
type BatchRunner interface {
	RunBatch(opts facecluster.RunOptions) (services.RunResult, error)
	CountUnassigned() (int64, error)
}

// ClusterJobRunner supervises continuous clustering jobs: repeated batches
// with a fixed delay in between, driving the unassigned-face count down to
// a target, cancellable between batches.
type ClusterJobRunner struct {
	Runner     BatchRunner
	Store      JobStore
	BatchDelay time.Duration

	mu          sync.Mutex
	activeJobID string
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewClusterJobRunner creates a job runner. delay <= 0 selects one second,
// the pause that keeps batches from starving other database work.
func NewClusterJobRunner(runner BatchRunner, store JobStore, delay time.Duration) *ClusterJobRunner {
	if delay <= 0 {
		delay = time.Second
	}
	return &ClusterJobRunner{
		Runner:     runner,
		Store:      store,
		BatchDelay: delay,
		stopChan:   make(chan struct{}),
	}
}

// StartContinuous launches a detached continuous job and returns its
// initial progress (including the job identifier) immediately. At most one
// continuous job runs at a time; a second request is refused while the
// first is still active.
func (r *ClusterJobRunner) StartContinuous(opts facecluster.RunOptions) (JobProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeJobID != "" {
		if current, ok := r.Store.Get(r.activeJobID); ok && !current.Status.Terminal() {
			return JobProgress{}, ErrJobAlreadyRunning
		}
	}

	initial, err := r.Runner.CountUnassigned()
	if err != nil {
		return JobProgress{}, err
	}

	progress := JobProgress{
		JobID:           uuid.New().String(),
		IsActive:        true,
		TotalFaces:      int(initial),
		TargetFaceCount: opts.TargetFaceCount,
		Status:          JobPending,
		StartTime:       time.Now(),
	}
	r.Store.Set(progress)
	r.activeJobID = progress.JobID

	r.wg.Add(1)
	go r.runLoop(progress.JobID, opts)

	log.Printf("Started continuous clustering job %s (unassigned: %d, target: %d)",
		progress.JobID, initial, opts.TargetFaceCount)
	return progress, nil
}

// Progress returns the current state of a job.
func (r *ClusterJobRunner) Progress(jobID string) (JobProgress, error) {
	progress, ok := r.Store.Get(jobID)
	if !ok {
		return JobProgress{}, ErrJobNotFound
	}
	return progress, nil
}

// Cancel marks a job inactive. Cancellation is cooperative: an in-flight
// batch finishes before the job observes the flag at its next batch-start
// check. Cancelling an unknown or finished job is acknowledged silently.
func (r *ClusterJobRunner) Cancel(jobID string) {
	r.Store.Update(jobID, func(p *JobProgress) {
		p.IsActive = false
	})
}

// Stop shuts the runner down and waits for the active job to notice.
func (r *ClusterJobRunner) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

func (r *ClusterJobRunner) runLoop(jobID string, opts facecluster.RunOptions) {
	defer r.wg.Done()

	finish := func(status JobStatus, errMsg string) {
		var batches, processed int
		ok := r.Store.Update(jobID, func(p *JobProgress) {
			p.IsActive = false
			p.Status = status
			p.Error = errMsg
			batches = p.TotalBatches
			processed = p.FacesProcessed
		})
		if !ok {
			return
		}
		log.Printf("Clustering job %s finished with status %s (batches: %d, faces processed: %d)",
			jobID, status, batches, processed)
	}

	for batch := 1; ; batch++ {
		progress, ok := r.Store.Get(jobID)
		if !ok {
			log.Printf("Clustering job %s vanished from the store, stopping", jobID)
			return
		}
		if !progress.IsActive {
			finish(JobCancelled, "")
			return
		}
		select {
		case <-r.stopChan:
			finish(JobCancelled, "runner shutting down")
			return
		default:
		}

		remaining, err := r.Runner.CountUnassigned()
		if err != nil {
			finish(JobFailed, err.Error())
			return
		}
		if remaining <= int64(opts.TargetFaceCount) {
			finish(JobCompleted, "")
			return
		}

		// field-scoped update only; a Cancel landing while the count above
		// was in flight must not be overwritten by a stale whole record
		r.Store.Update(jobID, func(p *JobProgress) {
			p.Status = JobRunning
			p.CurrentBatch = batch
		})

		result, err := r.Runner.RunBatch(opts)
		if err != nil {
			finish(JobFailed, err.Error())
			return
		}

		if !r.Store.Update(jobID, func(p *JobProgress) {
			p.TotalBatches = batch
			p.FacesProcessed += result.Processed
		}) {
			return
		}

		if result.Processed == 0 {
			// the batch made no headway; looping further cannot reach the
			// target, so stop instead of spinning against the same faces
			finish(JobCompleted, "")
			return
		}

		select {
		case <-r.stopChan:
			finish(JobCancelled, "runner shutting down")
			return
		case <-time.After(r.BatchDelay):
		}
	}
}
