package aicmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowkit/internal/hookbus"
	"flowkit/internal/runctx"
)

func TestNewBuiltinTools(t *testing.T) {
	tools := NewBuiltinTools()
	assert.Equal(t, []string{"eval_script", "http_request"}, tools.Names())
}

func TestEvalScriptTool(t *testing.T) {
	ctx := context.Background()
	rc := runctx.NewContext().WithHooks(hookbus.New())
	tool := EvalScriptTool()

	t.Run("evaluates an expression with bound variables", func(t *testing.T) {
		out, err := tool.Execute(ctx, map[string]any{
			"expression": "a + b * 2",
			"variables":  map[string]any{"a": int64(1), "b": int64(3)},
		}, rc)
		require.NoError(t, err)
		assert.EqualValues(t, 7, out)
	})

	t.Run("script errors surface", func(t *testing.T) {
		_, err := tool.Execute(ctx, map[string]any{
			"expression": "not valid js ((",
		}, rc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "eval_script")
	})

	t.Run("contract rejects a missing expression", func(t *testing.T) {
		violations := tool.Input.Validate(map[string]any{})
		require.Len(t, violations, 1)
		assert.Equal(t, "expression", violations[0].Path)
	})
}

func TestHTTPRequestToolContract(t *testing.T) {
	tool := HTTPRequestTool()

	t.Run("accepts a minimal request", func(t *testing.T) {
		assert.Empty(t, tool.Input.Validate(map[string]any{
			"method": "GET",
			"url":    "https://example.com",
		}))
	})

	t.Run("rejects unknown methods and missing fields", func(t *testing.T) {
		violations := tool.Input.Validate(map[string]any{"method": "TRACE"})
		assert.Len(t, violations, 2)
	})
}
