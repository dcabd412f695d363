package lint

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/sofmeright/bandbox/src/config"
	bberrors "github.com/sofmeright/bandbox/src/errors"
	"github.com/sofmeright/bandbox/src/logging"
	"github.com/sofmeright/bandbox/src/tree"
)

// Engine runs rules concurrently against a frozen tree.
type Engine struct {
	rules       []Rule
	concurrency int
}

// NewEngine selects rules minus skip. Unknown skip IDs are a configuration
// error. concurrency <= 0 means twice the number of CPUs.
func NewEngine(rules []Rule, skip []string, concurrency int) (*Engine, error) {
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		known[r.ID] = true
	}
	skipSet := make(map[string]bool, len(skip))
	for _, id := range skip {
		if !known[id] {
			return nil, bberrors.Newf(bberrors.ErrConfigInvalid, "unknown rule %q", id).
				WithDetail("rule", id)
		}
		skipSet[id] = true
	}

	var selected []Rule
	for _, r := range rules {
		if !skipSet[r.ID] {
			selected = append(selected, r)
		}
	}

	if concurrency <= 0 {
		concurrency = runtime.NumCPU() * 2
	}
	return &Engine{rules: selected, concurrency: concurrency}, nil
}

// Rules returns the rules the engine will run, in order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Run executes every rule. A rule that errors or panics is reported as
// errored without affecting the others. If ctx is cancelled Run returns
// ctx.Err() and no results.
func (e *Engine) Run(ctx context.Context, t *tree.Tree, cfg *config.Rules) (Results, error) {
	logger := logging.GetLogger("lint")
	started := time.Now()
	runID := uuid.NewString()
	logger.Debug().Str("run", runID).Int("rules", len(e.rules)).Msg("starting analysis")

	var (
		wg      sync.WaitGroup
		results = make([]Result, len(e.rules))
		sem     = semaphore.NewWeighted(int64(e.concurrency))
	)

	for i, r := range e.rules {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(idx int, r Rule) {
			defer wg.Done()
			defer sem.Release(1)
			results[idx] = e.runRule(ctx, r, t, cfg)
		}(i, r)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Results{}, err
	}

	rs := Results{
		RunID:   runID,
		Started: started,
		Elapsed: time.Since(started),
		Rules:   results,
	}
	ok, fail, errored := rs.Counts()
	logger.Info().
		Str("run", runID).
		Int("ok", ok).
		Int("fail", fail).
		Int("errored", errored).
		Dur("duration", rs.Elapsed).
		Msg("analysis complete")
	return rs, nil
}

func (e *Engine) runRule(ctx context.Context, r Rule, t *tree.Tree, cfg *config.Rules) (res Result) {
	logger := logging.GetLogger("lint").With().Str("rule", r.ID).Logger()
	start := time.Now()
	res = Result{RuleID: r.ID, Description: r.Description}

	defer func() {
		if p := recover(); p != nil {
			logger.Debug().Str("stack", string(debug.Stack())).Msg("rule panicked")
			res.Status = StatusErrored
			res.Findings = nil
			res.Err = bberrors.Wrap(fmt.Errorf("panic: %v", p), bberrors.ErrRuleExecution, r.ID)
		}
		res.Elapsed = time.Since(start)
		logger.Debug().
			Str("status", res.Status.String()).
			Int("findings", len(res.Findings)).
			Dur("duration", res.Elapsed).
			Msg("rule finished")
	}()

	logger.Debug().Msg("rule started")
	paths, err := r.Check(ctx, t, cfg)
	if err != nil {
		res.Status = StatusErrored
		res.Err = bberrors.Wrap(err, bberrors.ErrRuleExecution, r.ID)
		return res
	}

	res.Findings = make([]Finding, len(paths))
	for i, p := range paths {
		res.Findings[i] = Finding{RuleID: r.ID, Path: p}
	}
	if len(paths) > 0 {
		res.Status = StatusFail
	}
	return res
}
