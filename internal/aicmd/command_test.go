package aicmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowkit/internal/contract"
	"flowkit/internal/hookbus"
	"flowkit/internal/runctx"
	"flowkit/pkg/types"
)

// fakeAI is a scripted AI capability.
type fakeAI struct {
	response *types.GenerateResponse
	err      error
	lastReq  *types.GenerateRequest
}

func (f *fakeAI) Model() string {
	return "fake-model"
}

func (f *fakeAI) Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newTestContext(ai runctx.AI) *runctx.Context {
	return runctx.NewContext().WithHooks(hookbus.New()).WithAI(ai)
}

func lookupCommand() *Command {
	tools := NewTools()
	tools.MustRegister("lookup", &Tool{
		Description: "Look up a record by key",
		Input: contract.Object(map[string]contract.Validator{
			"key": contract.String(),
		}).Require("key"),
		Execute: func(ctx context.Context, args map[string]any, rc *runctx.Context) (any, error) {
			return "record:" + args["key"].(string), nil
		},
	})

	return &Command{
		Meta: Meta{Name: "lookup-cmd"},
		AI: AISpec{
			System: "be terse",
			Tools:  tools,
		},
		Plan: func(args map[string]any, rc *runctx.Context) (string, error) {
			return fmt.Sprintf("find %v", args["q"]), nil
		},
		Run: func(ctx context.Context, args map[string]any, rc *runctx.Context) (*types.Output, error) {
			return &types.Output{Text: rc.Memo.GetString(MemoTextKey)}, nil
		},
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("plans, generates, dispatches, then runs", func(t *testing.T) {
		ai := &fakeAI{response: &types.GenerateResponse{
			Text: "found it",
			ToolCalls: []*types.ToolCall{
				{Name: "lookup", Args: map[string]any{"key": "alpha"}},
			},
		}}
		rc := newTestContext(ai)

		var observed []string
		cmd := lookupCommand()
		cmd.OnToolCall = func(name string, args map[string]any, output any) {
			observed = append(observed, fmt.Sprintf("%s=%v", name, output))
		}

		out, err := cmd.Execute(ctx, map[string]any{"q": "alpha"}, rc)
		require.NoError(t, err)
		assert.Equal(t, "found it", out.Text)

		// The plan phase fed the provider.
		assert.Equal(t, "find alpha", ai.lastReq.Prompt)
		assert.Equal(t, "be terse", ai.lastReq.System)
		require.Len(t, ai.lastReq.Tools, 1)
		assert.Equal(t, "lookup", ai.lastReq.Tools[0].Name)

		// The tool phase populated the memo for Run.
		assert.Equal(t, "found it", rc.Memo.GetString(MemoTextKey))
		toolOut, ok := rc.Memo.Get(MemoToolPrefix + "lookup")
		require.True(t, ok)
		assert.Equal(t, "record:alpha", toolOut)

		assert.Equal(t, []string{"lookup=record:alpha"}, observed)
	})

	t.Run("unknown tool fails with ToolNotFoundError", func(t *testing.T) {
		ai := &fakeAI{response: &types.GenerateResponse{
			ToolCalls: []*types.ToolCall{{Name: "missing", Args: map[string]any{}}},
		}}
		cmd := lookupCommand()

		_, err := cmd.Execute(ctx, nil, newTestContext(ai))
		require.Error(t, err)
		assert.True(t, IsToolNotFoundError(err))
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("invalid tool arguments fail with ValidationError", func(t *testing.T) {
		ai := &fakeAI{response: &types.GenerateResponse{
			ToolCalls: []*types.ToolCall{{Name: "lookup", Args: map[string]any{"key": 42}}},
		}}
		cmd := lookupCommand()

		_, err := cmd.Execute(ctx, nil, newTestContext(ai))
		ve, ok := contract.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "lookup", ve.Subject)
		assert.Equal(t, contract.CategoryTool, ve.Category)
	})

	t.Run("tool execution failure aborts the command", func(t *testing.T) {
		boom := errors.New("backend down")
		tools := NewTools()
		tools.MustRegister("flaky", &Tool{
			Execute: func(ctx context.Context, args map[string]any, rc *runctx.Context) (any, error) {
				return nil, boom
			},
		})
		ranFinal := false
		cmd := &Command{
			Meta: Meta{Name: "flaky-cmd"},
			AI:   AISpec{Tools: tools},
			Plan: func(args map[string]any, rc *runctx.Context) (string, error) { return "p", nil },
			Run: func(ctx context.Context, args map[string]any, rc *runctx.Context) (*types.Output, error) {
				ranFinal = true
				return &types.Output{}, nil
			},
		}
		ai := &fakeAI{response: &types.GenerateResponse{
			ToolCalls: []*types.ToolCall{{Name: "flaky", Args: map[string]any{}}},
		}}

		_, err := cmd.Execute(ctx, nil, newTestContext(ai))
		assert.Same(t, boom, err)
		assert.False(t, ranFinal)
	})

	t.Run("generate failure propagates unchanged", func(t *testing.T) {
		boom := errors.New("provider unavailable")
		cmd := lookupCommand()

		_, err := cmd.Execute(ctx, nil, newTestContext(&fakeAI{err: boom}))
		assert.Same(t, boom, err)
	})

	t.Run("argument contract is checked before planning", func(t *testing.T) {
		cmd := lookupCommand()
		cmd.ArgSpec = contract.Object(map[string]contract.Validator{
			"q": contract.String(),
		}).Require("q")
		ai := &fakeAI{response: &types.GenerateResponse{Text: "x"}}

		_, err := cmd.Execute(ctx, map[string]any{}, newTestContext(ai))
		assert.True(t, contract.IsValidationError(err))
		assert.Nil(t, ai.lastReq)
	})

	t.Run("missing AI capability is an error", func(t *testing.T) {
		cmd := lookupCommand()
		rc := runctx.NewContext().WithHooks(hookbus.New())

		_, err := cmd.Execute(ctx, nil, rc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AI capability")
	})
}

func TestTools(t *testing.T) {
	noop := func(ctx context.Context, args map[string]any, rc *runctx.Context) (any, error) {
		return nil, nil
	}

	t.Run("register enforces unique non-empty names", func(t *testing.T) {
		tools := NewTools()
		require.NoError(t, tools.Register("a", &Tool{Execute: noop}))
		assert.Error(t, tools.Register("a", &Tool{Execute: noop}))
		assert.Error(t, tools.Register("", &Tool{Execute: noop}))
		assert.Error(t, tools.Register("b", nil))
		assert.Error(t, tools.Register("c", &Tool{}))
	})

	t.Run("definitions render contracts as schemas in name order", func(t *testing.T) {
		tools := NewTools()
		tools.MustRegister("zeta", &Tool{Description: "z", Execute: noop})
		tools.MustRegister("alpha", &Tool{
			Description: "a",
			Input:       contract.Object(map[string]contract.Validator{"k": contract.String()}),
			Execute:     noop,
		})

		defs := tools.Definitions()
		require.Len(t, defs, 2)
		assert.Equal(t, "alpha", defs[0].Name)
		assert.NotEmpty(t, defs[0].Parameters)
		assert.Equal(t, "zeta", defs[1].Name)
		assert.Empty(t, defs[1].Parameters)
	})
}
