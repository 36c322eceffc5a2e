package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/linkguard/internal/extract"
	"github.com/nao1215/linkguard/internal/model"
	"github.com/nao1215/linkguard/internal/report"
	"github.com/nao1215/linkguard/internal/rules"
)

// Collector finds the documents of a run. *collect.Collector implements it.
type Collector interface {
	Root() string
	Collect(ctx context.Context, roots []string) ([]*model.Document, error)
}

// Resolver resolves one reference. *resolver.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context, ref model.Reference) model.ResolutionResult
}

// CollectStep enumerates documents.
type CollectStep struct {
	collector Collector
	roots     []string
	store     *DocumentStore
	logger    *slog.Logger
}

// NewCollectStep creates a CollectStep. A non-nil store receives the
// collected documents.
func NewCollectStep(c Collector, roots []string, store *DocumentStore, logger *slog.Logger) *CollectStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectStep{collector: c, roots: roots, store: store, logger: logger}
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return "collect"
}

// Do executes the collect step.
func (s *CollectStep) Do(ctx context.Context, run *Run) error {
	docs, err := s.collector.Collect(ctx, s.roots)
	if err != nil {
		return err
	}
	run.Root = s.collector.Root()
	run.Documents = docs
	if s.store != nil {
		s.store.Put(docs...)
	}
	s.logger.Debug("documents collected", "count", len(docs))
	return nil
}

// ExtractStep extracts references from every document, in document order.
type ExtractStep struct{}

// NewExtractStep creates an ExtractStep.
func NewExtractStep() *ExtractStep {
	return &ExtractStep{}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extract step.
func (s *ExtractStep) Do(_ context.Context, run *Run) error {
	run.References = run.References[:0]
	for _, doc := range run.Documents {
		run.References = append(run.References, extract.Extract(doc)...)
	}
	return nil
}

// ResolveStep resolves every reference on the batch processor.
type ResolveStep struct {
	resolver Resolver
	batch    *BatchProcessor
}

// NewResolveStep creates a ResolveStep.
func NewResolveStep(r Resolver, batch *BatchProcessor) *ResolveStep {
	if batch == nil {
		batch = NewBatchProcessor()
	}
	return &ResolveStep{resolver: r, batch: batch}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do executes the resolve step.
func (s *ResolveStep) Do(ctx context.Context, run *Run) error {
	results, err := s.batch.ProcessBatch(ctx, run.References, s.resolver.Resolve)
	if err != nil {
		return err
	}
	run.Results = results
	return nil
}

// DriftStep applies drift rules to every document.
type DriftStep struct {
	rules *rules.Set
}

// NewDriftStep creates a DriftStep.
func NewDriftStep(set *rules.Set) *DriftStep {
	return &DriftStep{rules: set}
}

// Name returns the step name.
func (s *DriftStep) Name() string {
	return "drift"
}

// Do executes the drift step.
func (s *DriftStep) Do(_ context.Context, run *Run) error {
	run.Drift = nil
	for _, doc := range run.Documents {
		run.Drift = append(run.Drift, s.rules.Scan(doc)...)
	}
	return nil
}

// AggregateStep builds the report.
type AggregateStep struct{}

// NewAggregateStep creates an AggregateStep.
func NewAggregateStep() *AggregateStep {
	return &AggregateStep{}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do executes the aggregate step.
func (s *AggregateStep) Do(_ context.Context, run *Run) error {
	run.Report = report.Aggregate(report.Input{
		Root:       run.Root,
		Documents:  len(run.Documents),
		References: len(run.References),
		Results:    run.Results,
		Extra:      run.Drift,
	})
	return nil
}

// Components are the collaborators of a standard check.
type Components struct {
	Collector Collector
	Roots     []string
	Store     *DocumentStore
	Resolver  Resolver
	Rules     *rules.Set
	Batch     *BatchProcessor
}

// NewCheck assembles the standard check pipeline:
// collect, extract, resolve, drift (when rules exist) and aggregate.
func NewCheck(c Components, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewCollectStep(c.Collector, c.Roots, c.Store, p.logger),
		NewExtractStep(),
		NewResolveStep(c.Resolver, c.Batch),
	)
	if c.Rules.Len() > 0 {
		p.AddStep(NewDriftStep(c.Rules))
	}
	p.AddStep(NewAggregateStep())
	return p
}
