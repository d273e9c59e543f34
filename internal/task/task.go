// Package task provides the atomic unit of work: a named run function with
// optional input/output contracts and hook-bus lifecycle announcements.
package task

import (
	"context"

	"flowkit/internal/contract"
	"flowkit/internal/runctx"
)

// Hook names announced around every call.
const (
	HookWillCall = "task:will:call"
	HookDidCall  = "task:did:call"
)

// RunFunc is the body of a task.
type RunFunc func(ctx context.Context, input any, rc *runctx.Context) (any, error)

// Task is a validated, hook-announcing unit of work. Immutable once defined
// and safe to share across invocations; it holds no per-call state.
type Task struct {
	// ID names the task in announcements and validation errors.
	ID string

	// Input, when set, validates the call input before Run is invoked.
	Input contract.Validator

	// Output, when set, validates Run's result before it is returned.
	Output contract.Validator

	// Run is the work itself.
	Run RunFunc
}

// New creates a Task with no contracts.
func New(id string, run RunFunc) *Task {
	return &Task{ID: id, Run: run}
}

// WithInput sets the input contract.
func (t *Task) WithInput(v contract.Validator) *Task {
	t.Input = v
	return t
}

// WithOutput sets the output contract.
func (t *Task) WithOutput(v contract.Validator) *Task {
	t.Output = v
	return t
}

// Call validates, announces, runs, and announces again:
//
//  1. Input contract; on failure no hook fires and Run is never invoked.
//  2. task:will:call with {id, input}.
//  3. Run; its error passes through unchanged and task:did:call never fires.
//  4. Output contract; on failure task:did:call never fires.
//  5. task:did:call with {id, res}.
//
// Validation failures carry every violation, not just the first.
func (t *Task) Call(ctx context.Context, input any, rc *runctx.Context) (any, error) {
	if t.Input != nil {
		if violations := t.Input.Validate(input); len(violations) > 0 {
			return nil, contract.NewValidationError(t.ID, contract.CategoryInput, violations)
		}
	}

	if err := rc.Hooks.Call(ctx, HookWillCall, map[string]any{"id": t.ID, "input": input}); err != nil {
		return nil, err
	}

	res, err := t.Run(ctx, input, rc)
	if err != nil {
		return nil, err
	}

	if t.Output != nil {
		if violations := t.Output.Validate(res); len(violations) > 0 {
			return nil, contract.NewValidationError(t.ID, contract.CategoryOutput, violations)
		}
	}

	if err := rc.Hooks.Call(ctx, HookDidCall, map[string]any{"id": t.ID, "res": res}); err != nil {
		return nil, err
	}

	return res, nil
}
