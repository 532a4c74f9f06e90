package engine

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vk/usdcheck/internal/ctxlog"
	"github.com/vk/usdcheck/internal/usd"
)

// Driver runs the full validation pipeline over a batch of files. Each file
// is opened, traversed and checked in isolation: a failure in one file
// degrades that file's report and never aborts the batch.
type Driver struct {
	registry *Registry
	checker  Checker
	verbose  bool
	workers  int
	diagW    *syncWriter
}

// NewDriver wires a batch driver. workers is the number of files validated
// concurrently; 1 gives strictly sequential behavior. diagW receives
// checker diagnostics and may be nil to discard them.
func NewDriver(registry *Registry, checker Checker, verbose bool, workers int, diagW io.Writer) *Driver {
	if workers < 1 {
		workers = 1
	}
	return &Driver{
		registry: registry,
		checker:  checker,
		verbose:  verbose,
		workers:  workers,
		diagW:    newSyncWriter(diagW),
	}
}

// Run validates every file and returns the batch report plus the process
// exit code: 0 iff every file passed, 1 otherwise. The report preserves
// input order regardless of completion order.
func (d *Driver) Run(ctx context.Context, files []string) (BatchReport, int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Batch validation started.", "files", len(files), "workers", d.workers)

	reports := make([]FileReport, len(files))
	g := new(errgroup.Group)
	g.SetLimit(d.workers)
	for i, file := range files {
		g.Go(func() error {
			reports[i] = d.checkFile(ctx, file)
			return nil
		})
	}
	// Workers collect failures into their own report and never error.
	_ = g.Wait()

	batch := BatchReport{Files: reports}
	code := 0
	if !batch.Success() {
		code = 1
	}
	logger.Debug("Batch validation finished.", "exit_code", code)
	return batch, code
}

// checkFile runs both validation sources over one file and merges them.
func (d *Driver) checkFile(ctx context.Context, file string) FileReport {
	logger := ctxlog.FromContext(ctx).With("file", file)

	stage, err := usd.Open(file)
	if err != nil {
		logger.Debug("Stage open failed.", "error", err)
		return FileReport{File: file, Errors: []Record{{Code: CodeOpenError, Detail: err.Error()}}}
	}

	structuralOK := true
	var structural []Record
	visited := 0
	for prim := range stage.Traverse(ValidationPredicate) {
		visited++
		validator, ok := d.registry.Lookup(prim.Kind())
		if !ok {
			continue
		}
		primOK, records := validator(prim, d.verbose)
		structuralOK = structuralOK && primOK
		structural = append(structural, records...)
	}
	logger.Debug("Structural traversal complete.", "visited", visited, "violations", len(structural))

	res, err := d.checker.CheckCompliance(ctx, file)
	if err != nil {
		logger.Debug("Compliance checker failed.", "error", err)
		report := aggregate(file, structuralOK, structural, ComplianceResult{}, d.verbose, d.diagW)
		report.Errors = append(report.Errors, Record{Code: CodeCheckerError, Detail: err.Error()})
		return report
	}

	return aggregate(file, structuralOK, structural, res, d.verbose, d.diagW)
}

// syncWriter serializes writes so concurrent per-file diagnostics cannot
// tear each other.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	if w == nil {
		return nil
	}
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	if s == nil {
		return len(p), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
