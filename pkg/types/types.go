// Package types defines the core data structures shared across the
// orchestration engine.
package types

import "encoding/json"

// Output is the structured result of a command invocation.
type Output struct {
	Text string          `json:"text"`
	JSON json.RawMessage `json:"json,omitempty"`
}

// ToolDefinition describes a callable tool advertised to the model.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"` // JSON Schema
}

// ToolCall is a tool invocation requested by the AI model.
type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// GenerateRequest is the request shape the engine hands to an AI provider.
type GenerateRequest struct {
	Prompt string            `json:"prompt"`
	System string            `json:"system,omitempty"`
	Tools  []*ToolDefinition `json:"tools,omitempty"`
}

// GenerateResponse is the provider's answer: generated text plus any tool
// calls the model requested.
type GenerateResponse struct {
	Text      string      `json:"text"`
	ToolCalls []*ToolCall `json:"tool_calls,omitempty"`
}
