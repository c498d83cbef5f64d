package fix

import (
	"context"
	"io/fs"
	"sort"
	"sync"

	stderrors "errors"

	"rulekit/internal/errors"
	"rulekit/internal/logging"
)

// Orchestrator drives approved findings through the remediation state
// machine. Workers process disjoint items concurrently; items whose fixers
// touch the same artifact are serialized through a per-target mutex.
type Orchestrator struct {
	registry *Registry
	writer   ArtifactWriter
	logger   *logging.Logger

	workerCount int
	dryRun      bool

	mu      sync.Mutex
	targets map[string]*sync.Mutex
}

// Config contains orchestrator settings.
type Config struct {
	WorkerCount int
	DryRun      bool
}

// DefaultConfig returns the default orchestrator settings.
func DefaultConfig() Config {
	return Config{WorkerCount: 4}
}

// NewOrchestrator creates an orchestrator. A nil writer gets the atomic
// default, or the dry-run recorder when DryRun is set.
func NewOrchestrator(registry *Registry, writer ArtifactWriter, logger *logging.Logger, config Config) *Orchestrator {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if writer == nil {
		if config.DryRun {
			writer = NewDryRunWriter()
		} else {
			writer = NewAtomicWriter()
		}
	}
	return &Orchestrator{
		registry:    registry,
		writer:      writer,
		logger:      logger,
		workerCount: config.WorkerCount,
		dryRun:      config.DryRun,
		targets:     make(map[string]*sync.Mutex),
	}
}

// Run attempts every item in the batch and returns the accounting summary.
// After cancellation the batch truncates to the items actually processed and
// the invariant is checked against that reduced count. The returned error is
// non-nil only for defects: the accounting check failing, or a fixer erroring
// outside the allowed failure reasons.
func (o *Orchestrator) Run(ctx context.Context, root string, batch []Item) (*BatchResult, error) {
	if err := o.validateBatch(batch); err != nil {
		return nil, err
	}

	o.logger.Info("Starting fix batch", map[string]interface{}{
		"items":   len(batch),
		"workers": o.workerCount,
		"dryRun":  o.dryRun,
	})

	items := make(chan Item, len(batch))
	for _, item := range batch {
		items <- item
	}
	close(items)

	outcomes := make(chan Outcome, len(batch))
	abort := make(chan struct{})
	var abortOnce sync.Once
	var defect error

	var wg sync.WaitGroup
	for i := 0; i < o.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range items {
				// Drain without processing once cancelled or defective;
				// unprocessed items truncate the batch.
				select {
				case <-ctx.Done():
					continue
				case <-abort:
					continue
				default:
				}
				outcome, err := o.process(root, item)
				if err != nil {
					abortOnce.Do(func() {
						defect = err
						close(abort)
					})
					continue
				}
				outcomes <- outcome
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	if defect != nil {
		return nil, defect
	}

	result := &BatchResult{Outcomes: make([]Outcome, 0, len(batch))}
	for outcome := range outcomes {
		result.Outcomes = append(result.Outcomes, outcome)
		switch outcome.State {
		case StateApplied:
			result.Applied++
		case StateFailed:
			result.Failed++
		case StateDeferred:
			result.Deferred++
		}
	}
	result.Attempted = len(result.Outcomes)
	result.Truncated = result.Attempted < len(batch)
	sort.Slice(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].Finding.Key() < result.Outcomes[j].Finding.Key()
	})

	if result.Applied+result.Failed+result.Deferred != result.Attempted {
		return nil, errors.Newf(errors.InvariantViolation,
			"batch accounting: applied %d + failed %d + deferred %d != attempted %d",
			result.Applied, result.Failed, result.Deferred, result.Attempted)
	}

	o.logger.Info("Fix batch complete", map[string]interface{}{
		"applied":   result.Applied,
		"failed":    result.Failed,
		"deferred":  result.Deferred,
		"truncated": result.Truncated,
	})
	return result, nil
}

// validateBatch rejects batches before any state transition: every
// non-deferred item needs a registered fixer and must be marked fixable.
func (o *Orchestrator) validateBatch(batch []Item) error {
	for _, item := range batch {
		if item.Deferred {
			continue
		}
		if !item.Finding.AutoFixable {
			return errors.Newf(errors.ConfigurationError,
				"finding %s is not auto-fixable and cannot enter a fix batch", item.Finding.Key())
		}
		if _, ok := o.registry.For(item.Finding.ID); !ok {
			return errors.Newf(errors.ConfigurationError,
				"no fixer registered for finding %s", item.Finding.Key())
		}
	}
	return nil
}

// process runs one item to a terminal state. The returned error is reserved
// for defects; legitimate failures become a Failed outcome.
func (o *Orchestrator) process(root string, item Item) (Outcome, error) {
	if item.Deferred {
		reason := item.DeferReason
		if reason == "" {
			reason = "excluded at approval"
		}
		return Outcome{Finding: item.Finding, State: StateDeferred, Reason: reason}, nil
	}

	fixer, _ := o.registry.For(item.Finding.ID)
	unlock := o.lockTarget(fixer.Target(item.Finding))
	defer unlock()

	done, err := fixer.Verify(root, item.Finding)
	if err != nil {
		return o.failOrDefect(item, err)
	}
	if done {
		// Already in the desired state, possibly from an earlier run.
		return Outcome{Finding: item.Finding, State: StateApplied}, nil
	}

	if err := fixer.Apply(root, item.Finding, o.writer); err != nil {
		return o.failOrDefect(item, err)
	}

	if o.dryRun {
		return Outcome{Finding: item.Finding, State: StateApplied, Changed: true}, nil
	}

	done, err = fixer.Verify(root, item.Finding)
	if err != nil {
		return o.failOrDefect(item, err)
	}
	if !done {
		return Outcome{}, errors.Newf(errors.InvariantViolation,
			"fixer for %s applied but verification still fails", item.Finding.Key())
	}
	return Outcome{Finding: item.Finding, State: StateApplied, Changed: true}, nil
}

// failOrDefect converts a fixer error into a Failed outcome when the cause is
// in the allowed set, and into a loud defect otherwise. Complexity or
// judgment calls are never valid failure reasons.
func (o *Orchestrator) failOrDefect(item Item, err error) (Outcome, error) {
	reason, ok := classify(err)
	if !ok {
		return Outcome{}, errors.Newf(errors.InvariantViolation,
			"fixer for %s errored outside the allowed failure reasons: %v", item.Finding.Key(), err)
	}
	o.logger.Warn("Fix failed", map[string]interface{}{
		"finding": item.Finding.Key(),
		"reason":  string(reason),
		"error":   err.Error(),
	})
	return Outcome{Finding: item.Finding, State: StateFailed, Reason: string(reason)}, nil
}

// classify maps an error to the restricted failure taxonomy.
func classify(err error) (FailReason, bool) {
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return ReasonNotFound, true
	case stderrors.Is(err, fs.ErrPermission):
		return ReasonPermissionDenied, true
	}
	switch errors.CodeOf(err) {
	case errors.ResourceNotFound:
		return ReasonNotFound, true
	case errors.ParseError:
		return ReasonParseError, true
	case errors.PermissionDenied:
		return ReasonPermissionDenied, true
	}
	return "", false
}

// lockTarget serializes fixers writing the same artifact.
func (o *Orchestrator) lockTarget(target string) func() {
	o.mu.Lock()
	m, ok := o.targets[target]
	if !ok {
		m = &sync.Mutex{}
		o.targets[target] = m
	}
	o.mu.Unlock()
	m.Lock()
	return m.Unlock
}
