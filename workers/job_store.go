package workers

import (
	"sync"
	"time"
)

// JobStatus is the lifecycle state of a continuous clustering job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status can no longer change.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// JobProgress is the queryable state of one continuous clustering job.
type JobProgress struct {
	JobID           string    `json:"jobId"`
	IsActive        bool      `json:"isActive"`
	CurrentBatch    int       `json:"currentBatch"`
	TotalBatches    int       `json:"totalBatches"`
	FacesProcessed  int       `json:"facesProcessed"`
	TotalFaces      int       `json:"totalFaces"`
	TargetFaceCount int       `json:"targetFaceCount"`
	Status          JobStatus `json:"status"`
	Error           string    `json:"error,omitempty"`
	StartTime       time.Time `json:"startTime"`
}

// JobStore holds continuous-job progress behind a small interface so the
// backing can be an in-process map, a key-value store or a database table
// interchangeably; the job runner assumes nothing about it. Mutations of an
// existing record go through Update, which applies the change atomically so
// concurrent writers (the runner's counters, a cancellation's flag flip)
// cannot overwrite each other with stale copies.
type JobStore interface {
	Get(jobID string) (JobProgress, bool)
	Set(progress JobProgress)
	Update(jobID string, fn func(*JobProgress)) bool
	Delete(jobID string)
}

// MemoryJobStore is the default in-process JobStore.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]JobProgress
}

// NewMemoryJobStore creates an empty in-process job store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]JobProgress)}
}

func (s *MemoryJobStore) Get(jobID string) (JobProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.jobs[jobID]
	return progress, ok
}

func (s *MemoryJobStore) Set(progress JobProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[progress.JobID] = progress
}

// Update applies fn to the stored record under the store's lock and
// reports whether the job exists.
func (s *MemoryJobStore) Update(jobID string, fn func(*JobProgress)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress, ok := s.jobs[jobID]
	if !ok {
		return false
	}
	fn(&progress)
	s.jobs[jobID] = progress
	return true
}

func (s *MemoryJobStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}
