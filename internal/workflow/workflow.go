// Package workflow chains tasks and step functions into an ordered pipeline
// threading an accumulating state record.
package workflow

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg/jp"

	"flowkit/internal/runctx"
	"flowkit/internal/task"
)

// State is the accumulating key-value record a workflow threads through its
// steps. Keys are only ever added or overwritten, never deleted.
type State map[string]any

// SeedFunc computes the initial state from the run context.
type SeedFunc func(rc *runctx.Context) State

// StepFunc is a plain step body, used when a step does not wrap a Task.
type StepFunc func(ctx context.Context, input any, rc *runctx.Context) (any, error)

// SelectFunc projects the accumulated state into a step's input.
type SelectFunc func(state State) any

// Step is one workflow stage. Exactly one of Task or Fn must be set. Its
// output is merged into the state under As, falling back to ID.
type Step struct {
	ID   string
	Task *task.Task
	Fn   StepFunc

	// Select projects the state into the step input. When nil and SelectPath
	// is empty, the step receives the entire accumulated state.
	Select SelectFunc

	// SelectPath is a JSONPath expression applied to the state, an
	// alternative to Select for declarative projections. Select wins when
	// both are set.
	SelectPath string

	// As overrides the state key the output is stored under.
	As string
}

// Workflow is an ordered, immutable list of steps plus an optional seed.
type Workflow struct {
	ID string

	// Seed is the initial state. SeedFunc values are invoked with the run
	// context; nil seeds an empty state.
	Seed any

	Steps []Step
}

// New creates a Workflow.
func New(id string, steps ...Step) *Workflow {
	return &Workflow{ID: id, Steps: steps}
}

// WithSeed sets the seed value or SeedFunc.
func (w *Workflow) WithSeed(seed any) *Workflow {
	w.Seed = seed
	return w
}

// Run executes the steps strictly in declaration order, threading the
// accumulating state. The first failing step aborts the workflow: partial
// state is discarded and the error propagates. Duplicate output keys across
// steps overwrite earlier entries; refinement passes depend on this.
func (w *Workflow) Run(ctx context.Context, rc *runctx.Context) (State, error) {
	state, err := w.seed(rc)
	if err != nil {
		return nil, err
	}

	for _, step := range w.Steps {
		input, err := step.project(state)
		if err != nil {
			return nil, fmt.Errorf("workflow %q step %q: %w", w.ID, step.ID, err)
		}

		output, err := w.invoke(ctx, step, input, rc)
		if err != nil {
			return nil, err
		}

		key := step.As
		if key == "" {
			key = step.ID
		}

		next := make(State, len(state)+1)
		for k, v := range state {
			next[k] = v
		}
		next[key] = output
		state = next
	}

	return state, nil
}

func (w *Workflow) seed(rc *runctx.Context) (State, error) {
	switch seed := w.Seed.(type) {
	case nil:
		return State{}, nil
	case SeedFunc:
		return copyState(seed(rc)), nil
	case func(rc *runctx.Context) State:
		return copyState(seed(rc)), nil
	case State:
		return copyState(seed), nil
	case map[string]any:
		return copyState(seed), nil
	default:
		return nil, fmt.Errorf("workflow %q: unsupported seed type %T", w.ID, w.Seed)
	}
}

// invoke runs one step, wrapped in a telemetry span when the capability is
// attached. The span is error-transparent.
func (w *Workflow) invoke(ctx context.Context, step Step, input any, rc *runctx.Context) (any, error) {
	run := func(ctx context.Context) (any, error) {
		if step.Task != nil {
			return step.Task.Call(ctx, input, rc)
		}
		if step.Fn != nil {
			return step.Fn(ctx, input, rc)
		}
		return nil, fmt.Errorf("workflow %q step %q: neither task nor step function set", w.ID, step.ID)
	}

	if rc.Telemetry == nil {
		return run(ctx)
	}

	var output any
	err := rc.Telemetry.Span(ctx, "workflow.step."+step.ID, func(ctx context.Context) error {
		var stepErr error
		output, stepErr = run(ctx)
		return stepErr
	})
	if err != nil {
		return nil, err
	}
	rc.Telemetry.Counter("workflow.steps").Add(1)
	return output, nil
}

// project computes the step input from the state: Select func first,
// SelectPath second, whole state otherwise.
func (s Step) project(state State) (any, error) {
	if s.Select != nil {
		return s.Select(state), nil
	}
	if s.SelectPath != "" {
		path, err := jp.ParseString(s.SelectPath)
		if err != nil {
			return nil, fmt.Errorf("invalid select path %q: %w", s.SelectPath, err)
		}
		results := path.Get(map[string]any(state))
		switch len(results) {
		case 0:
			return nil, nil
		case 1:
			return results[0], nil
		default:
			return results, nil
		}
	}
	return state, nil
}

func copyState(s State) State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
