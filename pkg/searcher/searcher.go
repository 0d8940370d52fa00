package searcher

import (
	"context"
	"fmt"
	"time"

	"walletscout/internal/worker"
	"walletscout/pkg/checkpoint"
	"walletscout/pkg/config"
	errs "walletscout/pkg/errors"
	"walletscout/pkg/grok"
	"walletscout/pkg/input"
	"walletscout/pkg/logger"
	"walletscout/pkg/models"
	"walletscout/pkg/ratelimit"
	"walletscout/pkg/retry"
	"walletscout/pkg/sink"
)

// ResultSink receives finalized records as they are produced.
type ResultSink interface {
	Append(record models.WalletRecord) error
	Path() string
	Close() error
}

// ProgressReporter receives live progress while a batch window runs.
// Calls arrive on the single result-collection goroutine.
type ProgressReporter interface {
	Begin(total int)
	Update(record models.WalletRecord)
	End()
}

// Runner drives the batch lookup workflow: load input, resume from a
// valid checkpoint, dispatch pending addresses to the worker pool, and
// persist results and progress as they arrive.
type Runner struct {
	cfg           *config.Config
	lookup        worker.Lookup
	checkpointMgr *checkpoint.Manager
	sink          ResultSink
	loader        *input.Loader
	progress      ProgressReporter
	logger        logger.Logger
}

// Summary reports the outcome of one run invocation.
type Summary struct {
	Fingerprint      string
	RunID            string
	ProcessedThisRun int
	TotalProcessed   int
	TotalAddresses   int
	Remaining        int
	Stats            models.RunStats
	DatasetPath      string
	Completed        bool
}

// New creates a fully wired runner from configuration.
func New(cfg *config.Config) (*Runner, error) {
	if cfg.Grok.APIKey == "" {
		return nil, errs.New(errs.ErrorTypeConfiguration,
			"missing xAI API key: set XAI_API_KEY or run 'walletscout auth login'")
	}

	log := logger.GetLogger()

	client := grok.NewClient(cfg.Grok.APIKey, cfg.Grok.BaseURL, cfg.Grok.Model, cfg.Grok.RequestTimeout.Std(), log)
	lookup := grok.NewSearcher(client, cfg.RateLimit.RequestsPerMinute, log)

	checkpointMgr, err := checkpoint.NewManager(cfg.Checkpoint.Directory, cfg.Checkpoint.SaveRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}

	resultSink, err := sink.New(cfg.Output.Directory, cfg.Output.DatasetFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create result sink: %w", err)
	}

	return &Runner{
		cfg:           cfg,
		lookup:        lookup,
		checkpointMgr: checkpointMgr,
		sink:          resultSink,
		loader:        input.NewLoader(nil),
		logger:        log,
	}, nil
}

// NewWithComponents creates a runner with injected collaborators.
func NewWithComponents(cfg *config.Config, lookup worker.Lookup, checkpointMgr *checkpoint.Manager, resultSink ResultSink, loader *input.Loader) *Runner {
	if loader == nil {
		loader = input.NewLoader(nil)
	}
	return &Runner{
		cfg:           cfg,
		lookup:        lookup,
		checkpointMgr: checkpointMgr,
		sink:          resultSink,
		loader:        loader,
		logger:        logger.GetLogger(),
	}
}

// SetProgress attaches a live progress reporter.
func (r *Runner) SetProgress(p ProgressReporter) {
	r.progress = p
}

// Run executes one batch invocation. ForceRestart discards any stored
// checkpoint first. The run processes at most cfg.Batch.Limit pending
// addresses (zero means all) and leaves the rest for the next
// invocation.
func (r *Runner) Run(ctx context.Context, sources input.Sources, forceRestart bool) (*Summary, error) {
	defer r.sink.Close()

	wallets, err := r.loader.Load(sources)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, errs.New(errs.ErrorTypeConfiguration,
			"no valid wallet addresses found in input")
	}

	fingerprint := input.Fingerprint(wallets)
	r.logger.InfoWithFields("input loaded", map[string]interface{}{
		"total_addresses": len(wallets),
		"fingerprint":     fingerprint,
	})

	if forceRestart && r.checkpointMgr.Exists() {
		if err := r.checkpointMgr.Delete(); err != nil {
			r.logger.WithError(err).Warn("failed to delete existing checkpoint")
		} else {
			r.logger.Info("previous checkpoint cleared as requested")
		}
	}

	cp := r.resolveCheckpoint(fingerprint, len(wallets))

	pending := make([]string, 0, len(wallets))
	for _, wallet := range wallets {
		if !cp.IsProcessed(wallet) {
			pending = append(pending, wallet)
		}
	}
	cp.Stats.Skipped = cp.ProcessedCount

	r.logger.InfoWithFields("resume state resolved", map[string]interface{}{
		"run_id":            cp.RunID,
		"already_processed": cp.ProcessedCount,
		"pending":           len(pending),
	})

	if len(pending) == 0 {
		r.logger.Info("all addresses already processed")
		return r.finish(cp)
	}

	// Batch window: bounded by the configured limit, remainder left for
	// a subsequent invocation.
	if r.cfg.Batch.Limit > 0 && len(pending) > r.cfg.Batch.Limit {
		pending = pending[:r.cfg.Batch.Limit]
		r.logger.InfoWithFields("batch limit applied", map[string]interface{}{
			"batch_limit": r.cfg.Batch.Limit,
		})
	}

	if r.progress != nil {
		r.progress.Begin(len(pending))
	}

	processedThisRun, runErr := r.processBatch(ctx, cp, pending)

	if r.progress != nil {
		r.progress.End()
	}

	// Persist whatever completed, even on a failed or cancelled run.
	if err := r.checkpointMgr.Save(cp); err != nil {
		r.logger.WithError(err).Warn("final checkpoint save failed")
	}

	if runErr != nil {
		return nil, runErr
	}

	summary, err := r.finish(cp)
	if err != nil {
		return nil, err
	}
	summary.ProcessedThisRun = processedThisRun
	return summary, nil
}

// resolveCheckpoint loads a resumable checkpoint or starts a fresh one.
// Load problems are never fatal: the run falls back to a fresh
// checkpoint with a warning.
func (r *Runner) resolveCheckpoint(fingerprint string, total int) *checkpoint.Checkpoint {
	if r.cfg.Checkpoint.Resume {
		cp, err := r.checkpointMgr.Load(fingerprint)
		if err != nil {
			r.logger.WithError(err).Warn("failed to load checkpoint, starting fresh")
		}
		if cp != nil {
			return cp
		}
	}
	return r.checkpointMgr.Create(fingerprint, total)
}

// processBatch drives the worker pool over the pending window and owns
// all checkpoint and sink mutation: results are folded in on this
// goroutine only, so concurrent workers never race on shared state.
func (r *Runner) processBatch(ctx context.Context, cp *checkpoint.Checkpoint, pending []string) (int, error) {
	// Dispatch limiter smooths worker bursts; the per-minute API window
	// inside the lookup client stays the hard budget.
	dispatchLimiter := ratelimit.NewTokenBucket(r.cfg.Batch.Concurrency, time.Second)
	pool := worker.NewPool(ctx, r.cfg.Batch.Concurrency, r.cfg.RateLimit.MaxRetries, r.lookup, dispatchLimiter, r.logger)
	if r.cfg.RateLimit.RetryBaseDelay > 0 {
		pool.SetBackoff(&retry.ExponentialBackoff{
			BaseDelay:    r.cfg.RateLimit.RetryBaseDelay.Std(),
			MaxDelay:     r.cfg.RateLimit.RetryMaxDelay.Std(),
			Multiplier:   2.0,
			JitterFactor: 0.1,
		}, retry.RateLimitBackoff())
	}
	pool.Start()

	go func() {
		for _, wallet := range pending {
			if err := pool.Submit(wallet); err != nil {
				break
			}
		}
		pool.Stop()
	}()

	processed := 0
	sinceLastSave := 0

	for result := range pool.Results() {
		cp.AppendResult(result.Record)

		if err := r.sink.Append(result.Record); err != nil {
			r.logger.WithError(err).WithField("wallet", result.Record.Wallet).
				Error("failed to append record to dataset")
		}

		if r.progress != nil {
			r.progress.Update(result.Record)
		}

		processed++
		sinceLastSave++

		if sinceLastSave >= r.cfg.Batch.CheckpointInterval {
			if err := r.checkpointMgr.Save(cp); err != nil {
				r.logger.WithError(err).Warn("periodic checkpoint save failed")
			}
			sinceLastSave = 0
		}

		logger.LogBatchProgress(cp.ProcessedCount, cp.TotalAddresses)
	}

	if err := ctx.Err(); err != nil {
		r.logger.WarnWithFields("run interrupted", map[string]interface{}{
			"processed_this_run": processed,
		})
		return processed, fmt.Errorf("run interrupted: %w", err)
	}

	return processed, nil
}

// finish produces the run summary and clears the checkpoint when the
// whole input set is done.
func (r *Runner) finish(cp *checkpoint.Checkpoint) (*Summary, error) {
	summary := &Summary{
		Fingerprint:    cp.Fingerprint,
		RunID:          cp.RunID,
		TotalProcessed: cp.ProcessedCount,
		TotalAddresses: cp.TotalAddresses,
		Remaining:      cp.TotalAddresses - cp.ProcessedCount,
		Stats:          cp.Stats,
		DatasetPath:    r.sink.Path(),
		Completed:      cp.Complete(),
	}

	if cp.Complete() {
		r.logger.Info("all addresses processed, clearing checkpoint")
		if err := r.checkpointMgr.Delete(); err != nil {
			r.logger.WithError(err).Warn("failed to clear completed checkpoint")
		}
	} else {
		r.logger.InfoWithFields("run finished with addresses remaining", map[string]interface{}{
			"remaining": summary.Remaining,
		})
	}

	r.logger.InfoWithFields("run statistics", map[string]interface{}{
		"processed":          cp.Stats.Processed,
		"posts_found":        cp.Stats.PostsFound,
		"handles_identified": cp.Stats.HandlesIdentified,
		"errors":             cp.Stats.Errors,
		"skipped":            cp.Stats.Skipped,
		"hit_rate":           cp.Stats.HitRate(),
	})

	return summary, nil
}
