package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Satya7781/pdfintel/internal/docmodel"
)

// Analyzer runs one collection analysis; satisfied by collection.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, paths []string, persona, task string) (*docmodel.CollectionReport, error)
}

// Orchestrator owns the job queue and the worker goroutines that drain it.
type Orchestrator struct {
	jobs     *Store
	queue    chan *Job
	analyzer Analyzer
	log      *slog.Logger
	workers  int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(analyzer Analyzer, log *slog.Logger, workers, maxQueue int, jobTTL time.Duration) *Orchestrator {
	if workers <= 0 {
		workers = 2
	}
	if maxQueue <= 0 {
		maxQueue = 32
	}
	return &Orchestrator{
		jobs:     NewStore(jobTTL),
		queue:    make(chan *Job, maxQueue),
		analyzer: analyzer,
		log:      log,
		workers:  workers,
	}
}

// Start launches worker goroutines and the store cleanup ticker.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.run(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit registers a job and queues it for processing. A full queue fails the
// job immediately rather than blocking the caller.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.Fail(fmt.Errorf("job queue is full (%d)", cap(o.queue)))
		return fmt.Errorf("job queue is full (%d)", cap(o.queue))
	}
}

// Get returns a job by ID, or nil when unknown or evicted.
func (o *Orchestrator) Get(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

func (o *Orchestrator) run(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID)
	job.SetStatus(StatusProcessing)
	log.Info("collection job started", "documents", len(job.Paths))

	report, err := o.analyzer.Analyze(ctx, job.Paths, job.Persona, job.Task)

	// Staged uploads are only needed during the run.
	if job.WorkDir != "" {
		if rmErr := os.RemoveAll(job.WorkDir); rmErr != nil {
			log.Warn("failed to remove job work dir", "dir", job.WorkDir, "error", rmErr)
		}
	}

	if err != nil {
		job.Fail(err)
		log.Error("collection job failed", "error", err)
		return
	}
	job.Complete(report)
	log.Info("collection job completed",
		"ranked_sections", len(report.ExtractedSections),
		"excluded", len(report.Metadata.ExcludedDocuments),
	)
}
