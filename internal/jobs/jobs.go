// Package jobs tracks asynchronous collection-analysis runs: an in-memory
// registry with TTL eviction plus the worker pool that drains the queue.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/Satya7781/pdfintel/internal/docmodel"
)

// Status represents the state of a collection job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job tracks one collection analysis from submission to report.
type Job struct {
	mu sync.Mutex

	ID      string
	Persona string
	Task    string

	// Documents holds the original upload names; Paths the staged copies on
	// disk. Same order, same length.
	Documents []string
	Paths     []string
	WorkDir   string

	status    Status
	report    *docmodel.CollectionReport
	errMsg    string
	createdAt time.Time
	updatedAt time.Time
}

func NewJob(persona, task string, documents, paths []string, workDir string) *Job {
	now := time.Now()
	return &Job{
		ID:        newID(),
		Persona:   persona,
		Task:      task,
		Documents: documents,
		Paths:     paths,
		WorkDir:   workDir,
		status:    StatusQueued,
		createdAt: now,
		updatedAt: now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status Status) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
	j.updatedAt = time.Now()
}

// Complete records the finished report and marks the job completed.
func (j *Job) Complete(report *docmodel.CollectionReport) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusCompleted
	j.report = report
	j.updatedAt = time.Now()
}

// Fail records the terminal error and marks the job failed.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusFailed
	j.errMsg = err.Error()
	j.updatedAt = time.Now()
}

// Snapshot is a read-only, JSON-safe copy of job state.
type Snapshot struct {
	ID        string                     `json:"job_id"`
	Status    Status                     `json:"status"`
	Persona   string                     `json:"persona"`
	Task      string                     `json:"task"`
	Documents []string                   `json:"documents"`
	Error     string                     `json:"error,omitempty"`
	Report    *docmodel.CollectionReport `json:"report,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	docs := j.Documents
	if docs == nil {
		docs = []string{}
	}
	return Snapshot{
		ID:        j.ID,
		Status:    j.status,
		Persona:   j.Persona,
		Task:      j.Task,
		Documents: docs,
		Error:     j.errMsg,
		Report:    j.report,
		CreatedAt: j.createdAt,
		UpdatedAt: j.updatedAt,
	}
}

func (j *Job) expired(now time.Time, ttl time.Duration) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return now.Sub(j.updatedAt) > ttl
}

// Store is a thread-safe in-memory job registry with TTL eviction.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *Store) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *Store) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if job.expired(now, s.ttl) {
			delete(s.jobs, id)
		}
	}
}

// newID returns a sortable job identifier: millisecond timestamp prefix
// followed by 8 random bytes, hex-encoded.
func newID() string {
	var b [8]byte
	rand.Read(b[:])
	return fmt.Sprintf("%012x%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}
