package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/linkguard/internal/model"
)

// ResolveFunc resolves a single reference.
type ResolveFunc func(ctx context.Context, ref model.Reference) model.ResolutionResult

// BatchProcessor resolves many references concurrently with a bounded
// number of goroutines.
type BatchProcessor struct {
	// concurrency is the maximum number of concurrent resolutions.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent resolutions.
// Default is 8 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		concurrency: 8,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Concurrency returns the configured pool size.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// ProcessBatch resolves every reference and returns the results in
// reference order. Every reference is visited; the only error is the
// context's.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, refs []model.Reference, resolve ResolveFunc) ([]model.ResolutionResult, error) {
	results := make([]model.ResolutionResult, len(refs))
	err := bp.ProcessBatchWithCallback(ctx, refs, resolve, func(res model.ResolutionResult, index int) {
		// Each index is written by exactly one goroutine.
		results[index] = res
	})
	return results, err
}

// ProcessBatchWithCallback resolves every reference and calls callback with
// each result and its reference index. The callback is called from worker
// goroutines and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	refs []model.Reference,
	resolve ResolveFunc,
	callback func(res model.ResolutionResult, index int),
) error {
	bp.logger.Debug("starting batch resolution",
		"references", len(refs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			callback(resolve(ctx, ref), i)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bp.logger.Debug("batch resolution complete",
		"references", len(refs),
		"elapsed", time.Since(startTime),
	)
	return err
}
