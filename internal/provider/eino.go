// Package provider adapts LLM backends to the engine's AI capability.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"flowkit/pkg/types"
)

// Config configures the eino-backed provider.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
}

// EinoAI implements the AI capability over a cloudwego/eino chat model.
type EinoAI struct {
	model     string
	chatModel model.ChatModel
}

// New builds an EinoAI against the OpenAI-compatible endpoint in cfg.
func New(ctx context.Context, cfg Config) (*EinoAI, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider: model is required")
	}

	chatConfig := &openai.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		chatConfig.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, chatConfig)
	if err != nil {
		return nil, fmt.Errorf("provider: creating chat model: %w", err)
	}

	return &EinoAI{model: cfg.Model, chatModel: chatModel}, nil
}

// Model returns the configured model identifier.
func (a *EinoAI) Model() string {
	return a.model
}

// Generate runs one model turn, advertising the request's tool definitions,
// and maps the response back to the engine's wire shape. Tool call arguments
// arrive as JSON strings and are decoded into maps.
func (a *EinoAI) Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResponse, error) {
	var messages []*schema.Message
	if req.System != "" {
		messages = append(messages, schema.SystemMessage(req.System))
	}
	messages = append(messages, schema.UserMessage(req.Prompt))

	var opts []model.Option
	if len(req.Tools) > 0 {
		opts = append(opts, model.WithTools(toSchemaTools(req.Tools)))
	}

	resp, err := a.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}

	out := &types.GenerateResponse{Text: resp.Content}
	for _, tc := range resp.ToolCalls {
		call := &types.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: make(map[string]any),
		}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &call.Args); err != nil {
				return nil, fmt.Errorf("provider: decoding arguments for tool %s: %w", tc.Function.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, call)
	}
	return out, nil
}

// toSchemaTools converts tool definitions to the eino schema format.
func toSchemaTools(defs []*types.ToolDefinition) []*schema.ToolInfo {
	tools := make([]*schema.ToolInfo, 0, len(defs))
	for _, td := range defs {
		toolInfo := &schema.ToolInfo{
			Name: td.Name,
			Desc: td.Description,
		}
		if len(td.Parameters) > 0 {
			var schemaMap map[string]any
			if err := json.Unmarshal(td.Parameters, &schemaMap); err == nil {
				if params := jsonSchemaMapToParams(schemaMap); params != nil {
					toolInfo.ParamsOneOf = schema.NewParamsOneOfByParams(params)
				}
			}
		}
		tools = append(tools, toolInfo)
	}
	return tools
}

// jsonSchemaMapToParams converts a JSON Schema object to eino parameter info.
func jsonSchemaMapToParams(schemaMap map[string]any) map[string]*schema.ParameterInfo {
	props, ok := schemaMap["properties"].(map[string]any)
	if !ok {
		return nil
	}

	requiredSet := make(map[string]bool)
	if required, ok := schemaMap["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				requiredSet[s] = true
			}
		}
	}
	if required, ok := schemaMap["required"].([]string); ok {
		for _, s := range required {
			requiredSet[s] = true
		}
	}

	params := make(map[string]*schema.ParameterInfo, len(props))
	for name, propRaw := range props {
		prop, ok := propRaw.(map[string]any)
		if !ok {
			continue
		}
		paramInfo := &schema.ParameterInfo{
			Required: requiredSet[name],
		}
		if t, ok := prop["type"].(string); ok {
			paramInfo.Type = schema.DataType(t)
		}
		if desc, ok := prop["description"].(string); ok {
			paramInfo.Desc = desc
		}
		if enumVals, ok := prop["enum"].([]any); ok {
			for _, ev := range enumVals {
				if s, ok := ev.(string); ok {
					paramInfo.Enum = append(paramInfo.Enum, s)
				}
			}
		}
		if enumVals, ok := prop["enum"].([]string); ok {
			paramInfo.Enum = append(paramInfo.Enum, enumVals...)
		}
		if paramInfo.Type == schema.Object {
			if subParams := jsonSchemaMapToParams(prop); subParams != nil {
				paramInfo.SubParams = subParams
			}
		}
		params[name] = paramInfo
	}
	return params
}
