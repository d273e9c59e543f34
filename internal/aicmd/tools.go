// Package aicmd implements AI-assisted commands: a prompt-planning phase, a
// model turn, typed dispatch of model-requested tool calls, and a final
// result-producing run function.
package aicmd

import (
	"context"
	"fmt"
	"sort"

	"flowkit/internal/contract"
	"flowkit/internal/runctx"
	"flowkit/pkg/types"
)

// ToolExecFunc executes a tool call with its validated arguments.
type ToolExecFunc func(ctx context.Context, args map[string]any, rc *runctx.Context) (any, error)

// Tool is a callable the model may request by name.
type Tool struct {
	Description string
	Input       contract.Validator
	Execute     ToolExecFunc
}

// Tools is a typed name-to-tool map. Name uniqueness is enforced at
// registration time, not at dispatch time.
type Tools struct {
	tools map[string]*Tool
}

// NewTools creates an empty registry.
func NewTools() *Tools {
	return &Tools{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool under a unique name.
func (t *Tools) Register(name string, tool *Tool) error {
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if tool == nil || tool.Execute == nil {
		return fmt.Errorf("tool %q has no executor", name)
	}
	if _, exists := t.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	t.tools[name] = tool
	return nil
}

// MustRegister registers a tool and panics on error.
func (t *Tools) MustRegister(name string, tool *Tool) {
	if err := t.Register(name, tool); err != nil {
		panic(err)
	}
}

// Get looks up a tool by name.
func (t *Tools) Get(name string) (*Tool, bool) {
	tool, ok := t.tools[name]
	return tool, ok
}

// Names returns the registered tool names, sorted.
func (t *Tools) Names() []string {
	names := make([]string, 0, len(t.tools))
	for name := range t.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions renders every registered tool in the provider wire shape, with
// input contracts emitted as JSON Schema.
func (t *Tools) Definitions() []*types.ToolDefinition {
	defs := make([]*types.ToolDefinition, 0, len(t.tools))
	for _, name := range t.Names() {
		tool := t.tools[name]
		def := &types.ToolDefinition{
			Name:        name,
			Description: tool.Description,
		}
		if tool.Input != nil {
			def.Parameters = contract.Schema(tool.Input)
		}
		defs = append(defs, def)
	}
	return defs
}
