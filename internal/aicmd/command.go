package aicmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowkit/internal/contract"
	"flowkit/internal/runctx"
	"flowkit/pkg/types"
)

// Memo keys the planning/tool phase populates for Run to consult.
const (
	// MemoTextKey holds the model's generated text.
	MemoTextKey = "ai:text"
	// MemoToolPrefix prefixes per-tool output keys ("ai:tool:<name>").
	MemoToolPrefix = "ai:tool:"
)

// Meta describes a command for hosts that render usage.
type Meta struct {
	Name        string
	Description string
}

// PlanFunc computes the model prompt from the command arguments.
type PlanFunc func(args map[string]any, rc *runctx.Context) (string, error)

// RunFunc produces the command's final output. It is the sole source of the
// result; the planning/tool phase only populates the run context memo.
type RunFunc func(ctx context.Context, args map[string]any, rc *runctx.Context) (*types.Output, error)

// ObserverFunc observes a completed tool call. Its return value is discarded.
type ObserverFunc func(name string, args map[string]any, output any)

// AISpec declares a command's model configuration and callable tools.
type AISpec struct {
	Model  string
	System string
	Tools  *Tools
}

// Command composes prompt planning, model invocation, tool dispatch, and a
// final result function.
type Command struct {
	Meta       Meta
	ArgSpec    contract.Validator
	AI         AISpec
	Plan       PlanFunc
	OnToolCall ObserverFunc
	Run        RunFunc
}

// Execute runs the command: plan a prompt, invoke the context's AI
// capability, dispatch every requested tool call, stash the generated text
// and tool outputs in the memo, then hand control to Run for the final
// output. Any failure in planning, generation, or tool dispatch aborts the
// command with the original error; there is no partial result.
func (c *Command) Execute(ctx context.Context, args map[string]any, rc *runctx.Context) (*types.Output, error) {
	if rc.AI == nil {
		return nil, fmt.Errorf("command %q requires an AI capability on the run context", c.Meta.Name)
	}

	if c.ArgSpec != nil {
		if violations := c.ArgSpec.Validate(args); len(violations) > 0 {
			return nil, contract.NewValidationError(c.Meta.Name, contract.CategoryInput, violations)
		}
	}

	prompt, err := c.Plan(args, rc)
	if err != nil {
		return nil, err
	}

	req := &types.GenerateRequest{
		Prompt: prompt,
		System: c.AI.System,
	}
	if c.AI.Tools != nil {
		req.Tools = c.AI.Tools.Definitions()
	}

	resp, err := rc.AI.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	rc.Memo.Set(MemoTextKey, resp.Text)

	for _, call := range resp.ToolCalls {
		output, err := c.dispatch(ctx, call, rc)
		if err != nil {
			return nil, err
		}
		rc.Memo.Set(MemoToolPrefix+call.Name, output)
		if c.OnToolCall != nil {
			c.OnToolCall(call.Name, call.Args, output)
		}
	}

	return c.Run(ctx, args, rc)
}

// dispatch resolves, validates, and executes one model-requested tool call.
func (c *Command) dispatch(ctx context.Context, call *types.ToolCall, rc *runctx.Context) (any, error) {
	if c.AI.Tools == nil {
		return nil, NewToolNotFoundError(call.Name)
	}
	tool, ok := c.AI.Tools.Get(call.Name)
	if !ok {
		return nil, NewToolNotFoundError(call.Name)
	}

	if tool.Input != nil {
		if violations := tool.Input.Validate(map[string]any(call.Args)); len(violations) > 0 {
			return nil, contract.NewValidationError(call.Name, contract.CategoryTool, violations)
		}
	}

	rc.Logger.Debug("dispatching tool call",
		zap.String("command", c.Meta.Name),
		zap.String("tool", call.Name))

	return tool.Execute(ctx, call.Args, rc)
}
