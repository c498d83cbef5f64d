package review

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"rulekit/internal/errors"
	"rulekit/internal/logging"
)

// Runner executes category analyzers concurrently over one immutable scope.
// Aggregation is the synchronization barrier: RunAll returns only after every
// analyzer has finished or failed.
type Runner struct {
	analyzers   []Analyzer
	parallelism int
	logger      *logging.Logger
}

// NewRunner creates a runner. Parallelism <= 0 means one goroutine per
// analyzer.
func NewRunner(analyzers []Analyzer, parallelism int, logger *logging.Logger) (*Runner, error) {
	seen := map[string]bool{}
	for _, a := range analyzers {
		if seen[a.Category()] {
			return nil, errors.Newf(errors.ConfigurationError,
				"two analyzers claim category %q", a.Category())
		}
		seen[a.Category()] = true
	}
	return &Runner{analyzers: analyzers, parallelism: parallelism, logger: logger}, nil
}

// DefaultAnalyzers returns the builtin analyzer set.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		NewStructureAnalyzer(),
		NewManifestAnalyzer(),
		NewDocsAnalyzer(),
		NewHygieneAnalyzer(),
		NewSecretsAnalyzer(),
	}
}

// RunAll runs every analyzer and returns one result per category, sorted by
// category id. An analyzer failure does not abort the run: its category is
// returned with Err set and no findings, so the gap is visible instead of
// silent. The per-category accounting invariant is re-verified here for every
// successful result.
func (r *Runner) RunAll(ctx context.Context, scope *Scope) ([]CategoryResult, error) {
	results := make([]CategoryResult, len(r.analyzers))

	g, gctx := errgroup.WithContext(ctx)
	if r.parallelism > 0 {
		g.SetLimit(r.parallelism)
	}

	for i, analyzer := range r.analyzers {
		g.Go(func() error {
			res, err := r.runOne(gctx, analyzer, scope)
			results[i] = res
			// Analyzer errors are recorded in the result, not returned:
			// one failed category must not cancel the others.
			_ = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Category < results[j].Category
	})
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, analyzer Analyzer, scope *Scope) (CategoryResult, error) {
	category := analyzer.Category()

	res, err := func() (res *CategoryResult, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = errors.Newf(errors.AnalyzerError, "analyzer %s panicked: %v", category, p)
			}
		}()
		return analyzer.Analyze(ctx, scope)
	}()

	if err != nil {
		r.logger.Error("Category analyzer failed", map[string]interface{}{
			"category": category,
			"error":    err.Error(),
		})
		return CategoryResult{
			Category: category,
			Err:      fmt.Sprintf("analyzer failed to run: %v", err),
		}, err
	}

	if res.Passed+res.Failed != analyzer.TotalChecks() {
		verr := errors.Newf(errors.InvariantViolation,
			"category %s accounting: passed %d + failed %d != declared total %d",
			category, res.Passed, res.Failed, analyzer.TotalChecks())
		r.logger.Error("Accounting invariant violated", map[string]interface{}{
			"category": category,
			"error":    verr.Error(),
		})
		return CategoryResult{Category: category, Err: verr.Error()}, verr
	}

	r.logger.Debug("Category analyzed", map[string]interface{}{
		"category": category,
		"passed":   res.Passed,
		"failed":   res.Failed,
	})
	return *res, nil
}
