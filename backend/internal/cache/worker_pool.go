package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// WarmupJob fills one cache key. When Loader is set it is called on the worker
// to produce the value; otherwise Data is stored as-is. Store, when set,
// replaces the pool's cache write for this job.
type WarmupJob struct {
	Key      string
	Data     interface{}
	Loader   func(ctx context.Context) (interface{}, error)
	Store    func(key string, value interface{}, ttl time.Duration) error
	TTL      time.Duration
	Priority int
}

type JobResult struct {
	Job      WarmupJob
	Error    error
	Duration time.Duration
}

type WorkerPool struct {
	workers  int
	jobCh    chan WarmupJob
	resultCh chan JobResult
	cache    Cache
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.RWMutex

	statsMu       sync.Mutex
	jobsProcessed int64
	totalDuration time.Duration
	errors        int64
	dropped       int64
}

func NewWorkerPool(workers int, cache Cache) *WorkerPool {
	if workers <= 0 {
		workers = 3
	}

	return &WorkerPool{
		workers: workers,
		cache:   cache,
	}
}

func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return
	}

	wp.ctx, wp.cancel = context.WithCancel(context.Background())
	wp.jobCh = make(chan WarmupJob, wp.workers*16)
	wp.resultCh = make(chan JobResult, wp.workers)
	wp.running = true

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	go wp.resultCollector(wp.resultCh)

	log.Printf("🏃 Worker pool started with %d workers", wp.workers)
}

// Stop drains queued jobs, waits for the workers and stops the collector.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		return
	}

	wp.running = false

	close(wp.jobCh)
	wp.wg.Wait()

	wp.cancel()
	close(wp.resultCh)

	log.Printf("🛑 Worker pool stopped")
}

func (wp *WorkerPool) SubmitJob(job WarmupJob) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if !wp.running {
		return false
	}

	select {
	case wp.jobCh <- job:
		return true
	default:
		wp.statsMu.Lock()
		wp.dropped++
		wp.statsMu.Unlock()
		log.Printf("⚠️ Worker pool queue full, dropping job: %s", job.Key)
		return false
	}
}

func (wp *WorkerPool) SubmitJobs(jobs []WarmupJob) int {
	submitted := 0
	for _, job := range jobs {
		if wp.SubmitJob(job) {
			submitted++
		}
	}
	return submitted
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobCh {
		result := wp.processJob(job)

		select {
		case wp.resultCh <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job WarmupJob) JobResult {
	start := time.Now()

	data := job.Data
	var err error
	if job.Loader != nil {
		data, err = job.Loader(wp.ctx)
		if err != nil {
			err = fmt.Errorf("loader failed: %w", err)
		}
	}
	if err == nil {
		store := wp.cache.Set
		if job.Store != nil {
			store = job.Store
		}
		err = store(job.Key, data, job.TTL)
	}
	duration := time.Since(start)

	if err != nil {
		log.Printf("❌ Failed to warm cache key %s: %v", job.Key, err)
	}

	return JobResult{
		Job:      job,
		Error:    err,
		Duration: duration,
	}
}

func (wp *WorkerPool) resultCollector(results <-chan JobResult) {
	for result := range results {
		wp.statsMu.Lock()
		wp.jobsProcessed++
		wp.totalDuration += result.Duration
		if result.Error != nil {
			wp.errors++
		}
		wp.statsMu.Unlock()
	}
}

func (wp *WorkerPool) GetStats() map[string]interface{} {
	wp.mu.RLock()
	running := wp.running
	queueLen, queueCap := 0, 0
	if wp.jobCh != nil {
		queueLen, queueCap = len(wp.jobCh), cap(wp.jobCh)
	}
	wp.mu.RUnlock()

	wp.statsMu.Lock()
	defer wp.statsMu.Unlock()

	avgDuration := time.Duration(0)
	if wp.jobsProcessed > 0 {
		avgDuration = wp.totalDuration / time.Duration(wp.jobsProcessed)
	}

	return map[string]interface{}{
		"workers":        wp.workers,
		"running":        running,
		"jobs_processed": wp.jobsProcessed,
		"total_errors":   wp.errors,
		"dropped":        wp.dropped,
		"avg_duration":   avgDuration.String(),
		"total_duration": wp.totalDuration.String(),
		"queue_length":   queueLen,
		"queue_capacity": queueCap,
	}
}

func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}
