package lint

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/bandbox/src/config"
	bberrors "github.com/sofmeright/bandbox/src/errors"
	"github.com/sofmeright/bandbox/src/scan"
	"github.com/sofmeright/bandbox/src/tree"
)

func testTree(t *testing.T) *tree.Tree {
	t.Helper()
	b := tree.NewBuilder("", tree.Options{})
	require.NoError(t, b.Insert(scan.Entry{Path: "/d", IsDir: true}))
	require.NoError(t, b.Insert(scan.Entry{Path: "/d/x.tif"}))
	return b.Tree()
}

func testRules(t *testing.T) *config.Rules {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	r, err := config.Compile(cfg)
	require.NoError(t, err)
	return r
}

func static(id string, delay time.Duration, paths ...string) Rule {
	return Rule{ID: id, Description: id, Check: func(ctx context.Context, _ *tree.Tree, _ *config.Rules) ([]string, error) {
		time.Sleep(delay)
		return paths, nil
	}}
}

func TestRunPreservesRegistrationOrder(t *testing.T) {
	rules := []Rule{
		static("slow", 30*time.Millisecond, "a/"),
		static("fast", 0),
		static("medium", 10*time.Millisecond, "b", "c"),
	}
	e, err := NewEngine(rules, nil, 0)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), testTree(t), testRules(t))
	require.NoError(t, err)

	require.Len(t, rs.Rules, 3)
	assert.Equal(t, "slow", rs.Rules[0].RuleID)
	assert.Equal(t, "fast", rs.Rules[1].RuleID)
	assert.Equal(t, "medium", rs.Rules[2].RuleID)

	assert.Equal(t, StatusFail, rs.Rules[0].Status)
	assert.Equal(t, StatusOK, rs.Rules[1].Status)
	assert.Equal(t, []string{"b", "c"}, rs.Rules[2].Paths())
	assert.Equal(t, "medium", rs.Rules[2].Findings[0].RuleID)
	assert.NotEmpty(t, rs.RunID)

	ok, fail, errored := rs.Counts()
	assert.Equal(t, []int{1, 2, 0}, []int{ok, fail, errored})
	assert.False(t, rs.Clean())
}

func TestRuleFailureIsIsolated(t *testing.T) {
	rules := []Rule{
		static("before", 0, "x"),
		{ID: "panics", Check: func(context.Context, *tree.Tree, *config.Rules) ([]string, error) {
			var m map[string]int
			m["boom"]++
			return nil, nil
		}},
		{ID: "errors", Check: func(context.Context, *tree.Tree, *config.Rules) ([]string, error) {
			return nil, errors.New("broken")
		}},
		static("after", 0),
	}
	e, err := NewEngine(rules, nil, 2)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), testTree(t), testRules(t))
	require.NoError(t, err)

	panicked, ok := rs.Get("panics")
	require.True(t, ok)
	assert.Equal(t, StatusErrored, panicked.Status)
	assert.True(t, bberrors.IsErrorCode(panicked.Err, bberrors.ErrRuleExecution))
	assert.Contains(t, panicked.Err.Error(), "panic")

	failed, _ := rs.Get("errors")
	assert.Equal(t, StatusErrored, failed.Status)
	assert.ErrorContains(t, failed.Err, "broken")

	before, _ := rs.Get("before")
	assert.Equal(t, StatusFail, before.Status)
	after, _ := rs.Get("after")
	assert.Equal(t, StatusOK, after.Status)
}

func TestSkip(t *testing.T) {
	rules := []Rule{static("a", 0), static("b", 0), static("c", 0)}

	e, err := NewEngine(rules, []string{"b"}, 1)
	require.NoError(t, err)
	rs, err := e.Run(context.Background(), testTree(t), testRules(t))
	require.NoError(t, err)
	require.Len(t, rs.Rules, 2)
	assert.Equal(t, "a", rs.Rules[0].RuleID)
	assert.Equal(t, "c", rs.Rules[1].RuleID)
	_, ok := rs.Get("b")
	assert.False(t, ok)

	_, err = NewEngine(rules, []string{"nope"}, 1)
	assert.True(t, bberrors.IsErrorCode(err, bberrors.ErrConfigInvalid))
}

func TestConcurrencyBound(t *testing.T) {
	var running, peak atomic.Int32
	var rules []Rule
	for i := range 8 {
		rules = append(rules, Rule{ID: fmt.Sprintf("r%d", i), Check: func(context.Context, *tree.Tree, *config.Rules) ([]string, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil, nil
		}})
	}
	e, err := NewEngine(rules, nil, 2)
	require.NoError(t, err)
	_, err = e.Run(context.Background(), testTree(t), testRules(t))
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rules := []Rule{{ID: "cancels", Check: func(context.Context, *tree.Tree, *config.Rules) ([]string, error) {
		cancel()
		return []string{"x"}, nil
	}}, static("other", 0)}

	e, err := NewEngine(rules, nil, 1)
	require.NoError(t, err)
	rs, err := e.Run(ctx, testTree(t), testRules(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rs.Rules)
}

func TestDeterministicAcrossRuns(t *testing.T) {
	rules := []Rule{static("a", 2*time.Millisecond, "z", "y"), static("b", 0, "q")}
	e, err := NewEngine(rules, nil, 0)
	require.NoError(t, err)

	first, err := e.Run(context.Background(), testTree(t), testRules(t))
	require.NoError(t, err)
	second, err := e.Run(context.Background(), testTree(t), testRules(t))
	require.NoError(t, err)

	for i := range first.Rules {
		assert.Equal(t, first.Rules[i].Paths(), second.Rules[i].Paths())
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(static("one", 0))
	reg.Register(static("two", 0))

	assert.Equal(t, []string{"one", "two"}, reg.IDs())
	r, ok := reg.Get("two")
	require.True(t, ok)
	assert.Equal(t, "two", r.ID)
	_, ok = reg.Get("three")
	assert.False(t, ok)
	assert.Len(t, reg.All(), 2)

	assert.Panics(t, func() { reg.Register(static("one", 0)) })
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "fail", StatusFail.String())
	assert.Equal(t, "errored", StatusErrored.String())
	text, err := StatusErrored.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "errored", string(text))
}
