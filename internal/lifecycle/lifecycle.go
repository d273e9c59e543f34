// Package lifecycle drives the fixed hook sequence around a single command
// execution step.
//
// The sequence is the engine's de facto state machine: states are the named
// hook points, transitions are strictly linear, and the only branch is
// success versus failure after the execution step. Both paths are terminal.
package lifecycle

import (
	"context"

	"flowkit/internal/runctx"
	"flowkit/pkg/types"
)

// Hook names, in announcement order.
const (
	HookCLIBoot         = "cli:boot"
	HookConfigLoad      = "config:load"
	HookCtxReady        = "ctx:ready"
	HookArgsParsed      = "args:parsed"
	HookCommandResolved = "command:resolved"
	HookWorkflowCompile = "workflow:compile"
	HookOutputWillEmit  = "output:will:emit"
	HookOutputDidEmit   = "output:did:emit"
	HookPersistWill     = "persist:will"
	HookPersistDid      = "persist:did"
	HookReportWill      = "report:will"
	HookReportDid       = "report:did"
	HookCLIDone         = "cli:done"
)

// PreHooks is the sequence announced before the execution step runs.
var PreHooks = []string{
	HookCLIBoot,
	HookConfigLoad,
	HookCtxReady,
	HookArgsParsed,
	HookCommandResolved,
	HookWorkflowCompile,
}

// PostHooks is the sequence announced after a successful execution step,
// following output:will:emit.
var PostHooks = []string{
	HookOutputDidEmit,
	HookPersistWill,
	HookPersistDid,
	HookReportWill,
	HookReportDid,
	HookCLIDone,
}

// StepFunc is the single user-supplied execution step the runner drives.
type StepFunc func(ctx context.Context, rc *runctx.Context) (*types.Output, error)

// Invocation describes one command invocation.
type Invocation struct {
	// Cmd is the resolved command name.
	Cmd string

	// Args are the parsed command arguments, opaque to the runner.
	Args map[string]any

	// Ctx is the run context for this invocation.
	Ctx *runctx.Context

	// RunStep is the execution step.
	RunStep StepFunc
}

// Run announces the fixed pre-sequence, invokes the execution step, then
// either completes the post-sequence around the output or, on failure,
// announces a single best-effort diagnostic output:will:emit and re-raises
// the original error unchanged. Terminal error handling is the caller's job.
func Run(ctx context.Context, inv Invocation) (*types.Output, error) {
	rc := inv.Ctx
	base := map[string]any{"cmd": inv.Cmd, "args": inv.Args}

	for _, name := range PreHooks {
		if err := rc.Hooks.Call(ctx, name, base); err != nil {
			return nil, err
		}
	}

	out, err := inv.RunStep(ctx, rc)
	if err != nil {
		// Best-effort diagnostic announcement so any registered logger or
		// telemetry listener can record the failure before it propagates.
		diagnostic := &types.Output{Text: "Error: " + err.Error()}
		_ = rc.Hooks.Call(ctx, HookOutputWillEmit, map[string]any{"out": diagnostic})
		return nil, err
	}

	if err := rc.Hooks.Call(ctx, HookOutputWillEmit, map[string]any{"out": out}); err != nil {
		return nil, err
	}
	for _, name := range PostHooks {
		if err := rc.Hooks.Call(ctx, name, base); err != nil {
			return nil, err
		}
	}

	return out, nil
}
