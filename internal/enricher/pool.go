package enricher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/models"
)

// DefaultWorkers is the number of detail fetches allowed in flight at once
const DefaultWorkers = 10

// DetailSource fetches the detail fields of one catalog entry
type DetailSource interface {
	FetchDetail(ctx context.Context, locator string) (models.DetailRecord, error)
}

// Job is one detail fetch
type Job struct {
	Candidate models.CandidateRecord
}

// Locator returns the identity key of the job's candidate
func (j Job) Locator() string {
	return j.Candidate.URL
}

// Result is the outcome of one detail fetch. Detail is never nil; it is
// empty when Err is set.
type Result struct {
	Job      Job
	Detail   models.DetailRecord
	Err      error
	Duration time.Duration
	WorkerID int
}

// Batch maps each locator of an enrichment batch to its result
type Batch map[string]Result

// Detail returns the detail fields for locator, or an empty record when the
// fetch failed or the locator was not part of the batch
func (b Batch) Detail(locator string) models.DetailRecord {
	if r, ok := b[locator]; ok && r.Detail != nil {
		return r.Detail
	}
	return models.DetailRecord{}
}

// Failed reports whether the fetch for locator failed
func (b Batch) Failed(locator string) bool {
	r, ok := b[locator]
	return ok && r.Err != nil
}

// Failures returns the number of failed fetches in the batch
func (b Batch) Failures() int {
	n := 0
	for _, r := range b {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Stats are cumulative counters across all batches of a pool
type Stats struct {
	Batches int64
	Fetched int64
	Failed  int64
}

// Pool runs detail fetches for a batch of candidates with at most numWorkers
// fetches in flight
type Pool struct {
	numWorkers int
	source     DetailSource
	logger     logger.Logger

	batches int64
	fetched int64
	failed  int64
}

// NewPool creates a detail enrichment pool
func NewPool(numWorkers int, source DetailSource, log logger.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pool{
		numWorkers: numWorkers,
		source:     source,
		logger:     log.WithField("component", "enricher"),
	}
}

// Workers returns the concurrency limit
func (p *Pool) Workers() int {
	return p.numWorkers
}

// EnrichBatch fetches the detail page of every candidate and blocks until all
// fetches have finished. Failures never escape: each one becomes an empty
// detail record in the returned batch. Candidates sharing a locator are
// fetched once.
func (p *Pool) EnrichBatch(ctx context.Context, candidates []models.CandidateRecord) Batch {
	jobs := make([]Job, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.URL]; dup {
			continue
		}
		seen[c.URL] = struct{}{}
		jobs = append(jobs, Job{Candidate: c})
	}

	batch := make(Batch, len(jobs))
	if len(jobs) == 0 {
		return batch
	}
	atomic.AddInt64(&p.batches, 1)

	workers := p.numWorkers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobQueue := make(chan Job, len(jobs))
	resultQueue := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(ctx, i, jobQueue, resultQueue, &wg)
	}

	for _, job := range jobs {
		jobQueue <- job
	}
	close(jobQueue)

	wg.Wait()
	close(resultQueue)

	for result := range resultQueue {
		batch[result.Job.Locator()] = result
	}

	p.logger.DebugWithFields("Batch enriched", map[string]interface{}{
		"jobs":     len(jobs),
		"workers":  workers,
		"failures": batch.Failures(),
	})
	return batch
}

func (p *Pool) worker(ctx context.Context, id int, jobs <-chan Job, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()
	for job := range jobs {
		results <- p.processJob(ctx, job, id)
	}
}

// processJob runs one fetch and converts any failure, including a panic in
// the source, into an empty detail record
func (p *Pool) processJob(ctx context.Context, job Job, workerID int) (result Result) {
	start := time.Now()
	result = Result{Job: job, WorkerID: workerID}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("detail source panicked: %v", r)
		}
		if result.Err != nil {
			result.Detail = models.DetailRecord{}
			atomic.AddInt64(&p.failed, 1)
		} else {
			atomic.AddInt64(&p.fetched, 1)
		}
		if result.Detail == nil {
			result.Detail = models.DetailRecord{}
		}
		result.Duration = time.Since(start)
		logger.LogEnrichment(p.logger, job.Locator(), result.Duration, result.Err)
	}()

	result.Detail, result.Err = p.source.FetchDetail(ctx, job.Locator())
	return result
}

// Stats returns cumulative counters
func (p *Pool) Stats() Stats {
	return Stats{
		Batches: atomic.LoadInt64(&p.batches),
		Fetched: atomic.LoadInt64(&p.fetched),
		Failed:  atomic.LoadInt64(&p.failed),
	}
}
