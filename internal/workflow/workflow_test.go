package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowkit/internal/contract"
	"flowkit/internal/hookbus"
	"flowkit/internal/runctx"
	"flowkit/internal/task"
)

func newTestContext() *runctx.Context {
	return runctx.NewContext().WithHooks(hookbus.New())
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("threads accumulated state through steps", func(t *testing.T) {
		rc := newTestContext()

		fetch := task.New("fetch", func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
			return map[string]any{"data": []any{1, 2, 3}}, nil
		})
		transform := task.New("transform", func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
			data := input.(map[string]any)["data"].([]any)
			sum := 0
			for _, n := range data {
				sum += n.(int)
			}
			return map[string]any{"sum": sum}, nil
		})

		wf := New("pipeline",
			Step{ID: "fetch", Task: fetch},
			Step{
				ID:     "transform",
				Task:   transform,
				Select: func(state State) any { return state["fetch"] },
				As:     "result",
			},
		).WithSeed(map[string]any{"initialized": true})

		state, err := wf.Run(ctx, rc)
		require.NoError(t, err)

		assert.Equal(t, State{
			"initialized": true,
			"fetch":       map[string]any{"data": []any{1, 2, 3}},
			"result":      map[string]any{"sum": 6},
		}, state)
	})

	t.Run("default projection passes the whole state", func(t *testing.T) {
		rc := newTestContext()
		var seen any

		wf := New("wf",
			Step{ID: "a", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return 1, nil
			}},
			Step{ID: "b", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				seen = input
				return 2, nil
			}},
		)

		_, err := wf.Run(ctx, rc)
		require.NoError(t, err)
		assert.Equal(t, State{"a": 1}, seen)
	})

	t.Run("select path projects with JSONPath", func(t *testing.T) {
		rc := newTestContext()
		var seen any

		wf := New("wf",
			Step{ID: "fetch", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return map[string]any{"items": []any{"x", "y"}}, nil
			}},
			Step{
				ID:         "pick",
				SelectPath: "$.fetch.items",
				Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
					seen = input
					return nil, nil
				},
			},
		)

		_, err := wf.Run(ctx, rc)
		require.NoError(t, err)
		assert.Equal(t, []any{"x", "y"}, seen)
	})

	t.Run("invalid select path fails the workflow", func(t *testing.T) {
		rc := newTestContext()
		wf := New("wf",
			Step{ID: "s", SelectPath: "$[", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return nil, nil
			}},
		)
		_, err := wf.Run(ctx, rc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "select path")
	})

	t.Run("a failing step aborts the rest and discards partial state", func(t *testing.T) {
		rc := newTestContext()
		boom := errors.New("boom")
		thirdRan := false

		wf := New("wf",
			Step{ID: "one", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return 1, nil
			}},
			Step{ID: "two", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return nil, boom
			}},
			Step{ID: "three", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				thirdRan = true
				return 3, nil
			}},
		)

		state, err := wf.Run(ctx, rc)
		assert.Same(t, boom, err)
		assert.Nil(t, state)
		assert.False(t, thirdRan)
	})

	t.Run("task validation failures abort the workflow", func(t *testing.T) {
		rc := newTestContext()
		tk := task.New("strict", func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
			return "wrong", nil
		}).WithOutput(contract.Int())

		wf := New("wf", Step{ID: "strict", Task: tk})
		_, err := wf.Run(ctx, rc)
		assert.True(t, contract.IsValidationError(err))
	})

	t.Run("duplicate keys overwrite earlier entries", func(t *testing.T) {
		rc := newTestContext()

		wf := New("refine",
			Step{ID: "value", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return "draft", nil
			}},
			Step{ID: "refine", As: "value", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return "final", nil
			}},
		)

		state, err := wf.Run(ctx, rc)
		require.NoError(t, err)
		assert.Equal(t, State{"value": "final"}, state)
	})

	t.Run("seed function receives the run context", func(t *testing.T) {
		rc := newTestContext()
		rc.Memo.Set("tenant", "acme")

		wf := New("wf").WithSeed(func(rc *runctx.Context) State {
			return State{"tenant": rc.Memo.GetString("tenant")}
		})

		state, err := wf.Run(ctx, rc)
		require.NoError(t, err)
		assert.Equal(t, State{"tenant": "acme"}, state)
	})

	t.Run("unsupported seed type errors", func(t *testing.T) {
		rc := newTestContext()
		wf := New("wf").WithSeed(42)
		_, err := wf.Run(ctx, rc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seed")
	})

	t.Run("step with neither task nor fn errors", func(t *testing.T) {
		rc := newTestContext()
		wf := New("wf", Step{ID: "empty"})
		_, err := wf.Run(ctx, rc)
		require.Error(t, err)
	})
}

// fakeTelemetry records span names and counter adds.
type fakeTelemetry struct {
	spans  []string
	counts map[string]int64
}

func newFakeTelemetry() *fakeTelemetry {
	return &fakeTelemetry{counts: make(map[string]int64)}
}

func (f *fakeTelemetry) Span(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	f.spans = append(f.spans, name)
	return fn(ctx)
}

func (f *fakeTelemetry) Counter(name string) runctx.Counter {
	return fakeCounter{name: name, owner: f}
}

type fakeCounter struct {
	name  string
	owner *fakeTelemetry
}

func (c fakeCounter) Add(n int64) {
	c.owner.counts[c.name] += n
}

func TestRunTelemetry(t *testing.T) {
	ctx := context.Background()

	t.Run("wraps each step in a span when attached", func(t *testing.T) {
		tel := newFakeTelemetry()
		rc := newTestContext().WithTelemetry(tel)

		wf := New("wf",
			Step{ID: "a", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return 1, nil
			}},
			Step{ID: "b", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
				return 2, nil
			}},
		)

		_, err := wf.Run(ctx, rc)
		require.NoError(t, err)
		assert.Equal(t, []string{"workflow.step.a", "workflow.step.b"}, tel.spans)
		assert.Equal(t, int64(2), tel.counts["workflow.steps"])
	})

	t.Run("span errors stay transparent", func(t *testing.T) {
		tel := newFakeTelemetry()
		rc := newTestContext().WithTelemetry(tel)
		boom := errors.New("boom")

		wf := New("wf", Step{ID: "a", Fn: func(ctx context.Context, input any, rc *runctx.Context) (any, error) {
			return nil, boom
		}})

		_, err := wf.Run(ctx, rc)
		assert.Same(t, boom, err)
	})
}
