package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"walletscout/pkg/logger"
	"walletscout/pkg/models"
	"walletscout/pkg/ratelimit"
	"walletscout/pkg/retry"
)

// Lookup is the external search boundary the pool drives.
type Lookup interface {
	SearchWallet(ctx context.Context, wallet string) (models.WalletRecord, error)
}

// Result is the outcome of one lookup job.
type Result struct {
	Record   models.WalletRecord
	Attempts int
	Duration time.Duration
}

// Pool manages concurrent wallet lookup workers. Jobs are wallet
// addresses; each is retried with backoff on retryable failures up to
// the configured ceiling, after which a degraded record is emitted so
// the batch keeps moving. A cancelled run abandons in-flight jobs
// without emitting a record, so an interrupt never marks an address as
// failed.
type Pool struct {
	numWorkers       int
	maxRetries       int
	jobQueue         chan string
	resultQueue      chan Result
	wg               sync.WaitGroup
	ctx              context.Context
	cancel           context.CancelFunc
	lookup           Lookup
	limiter          ratelimit.Limiter
	defaultBackoff   retry.BackoffStrategy
	rateLimitBackoff retry.BackoffStrategy
	logger           logger.Logger
}

// NewPool creates a lookup worker pool. A nil limiter disables dispatch
// rate limiting.
func NewPool(ctx context.Context, numWorkers, maxRetries int, lookup Lookup, limiter ratelimit.Limiter, log logger.Logger) *Pool {
	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		numWorkers:       numWorkers,
		maxRetries:       maxRetries,
		jobQueue:         make(chan string, numWorkers*2),
		resultQueue:      make(chan Result, numWorkers),
		ctx:              ctx,
		cancel:           cancel,
		lookup:           lookup,
		limiter:          limiter,
		defaultBackoff:   retry.DefaultExponentialBackoff(),
		rateLimitBackoff: retry.RateLimitBackoff(),
		logger:           log,
	}
}

// SetBackoff overrides the backoff strategies. The runner uses it to
// apply configured retry delays; tests use it to avoid real waits.
func (p *Pool) SetBackoff(defaultBackoff, rateLimitBackoff retry.BackoffStrategy) {
	p.defaultBackoff = defaultBackoff
	p.rateLimitBackoff = rateLimitBackoff
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.InfoWithFields("starting lookup worker pool", map[string]interface{}{
		"num_workers": p.numWorkers,
		"max_retries": p.maxRetries,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop closes the job queue, waits for in-flight jobs, and closes the
// result queue.
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()
}

// Submit adds a wallet address to the queue.
func (p *Pool) Submit(wallet string) error {
	select {
	case p.jobQueue <- wallet:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", p.ctx.Err())
	}
}

// Results returns the channel of completed lookups.
func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

// worker is the main worker routine.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for wallet := range p.jobQueue {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result, ok := p.processJob(wallet, id)
		if !ok {
			// Shutdown mid-lookup: the job is abandoned, not failed, so
			// it stays pending for the next run.
			return
		}

		select {
		case p.resultQueue <- result:
		case <-p.ctx.Done():
			return
		}
	}
}

// processJob performs one lookup with an explicit bounded-retry loop.
// Rate-limit errors use the long backoff curve, other retryable errors
// the default curve. When the ceiling is hit the job resolves to a
// degraded record flagged with the failure diagnostic, distinct from a
// genuine "no posts found" result. The second return is false when the
// run was cancelled mid-lookup; the job then produces no record at all.
func (p *Pool) processJob(wallet string, workerID int) (Result, bool) {
	start := time.Now()

	var lastErr error
	attempt := 0

	for attempt < p.maxRetries+1 {
		attempt++

		if p.limiter != nil {
			if err := p.limiter.Wait(p.ctx); err != nil {
				return Result{}, false
			}
		}

		record, err := p.lookup.SearchWallet(p.ctx, wallet)
		if err == nil {
			logger.LogLookup(wallet, record.PostExists, record.TwitterHandle, nil)
			return Result{Record: record, Attempts: attempt, Duration: time.Since(start)}, true
		}
		lastErr = err

		if p.ctx.Err() != nil || !retry.DefaultRetryIf(err) {
			break
		}
		if attempt >= p.maxRetries+1 {
			break
		}

		backoff := p.defaultBackoff
		if retry.IsRateLimit(err) {
			backoff = p.rateLimitBackoff
			logger.LogRateLimit("grok", int(backoff.NextDelay(attempt)/time.Second))
		}

		delay := backoff.NextDelay(attempt)
		p.logger.WarnWithFields("lookup failed, retrying", map[string]interface{}{
			"worker_id": workerID,
			"wallet":    wallet,
			"attempt":   attempt,
			"delay_ms":  delay.Milliseconds(),
			"error":     err.Error(),
		})

		if waitErr := retry.Wait(p.ctx, delay); waitErr != nil {
			break
		}
	}

	if p.ctx.Err() != nil {
		return Result{}, false
	}

	logger.LogLookup(wallet, false, "", lastErr)

	return Result{
		Record: models.WalletRecord{
			Wallet:     wallet,
			PostExists: false,
			Confidence: models.ConfidenceNone,
			Error:      fmt.Sprintf("lookup failed after %d attempts: %v", attempt, lastErr),
		},
		Attempts: attempt,
		Duration: time.Since(start),
	}, true
}
