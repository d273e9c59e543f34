package command

import (
	"context"
	"fmt"

	"flowkit/internal/aicmd"
	"flowkit/internal/contract"
	"flowkit/internal/runctx"
	"flowkit/pkg/types"
)

// AskCommand answers a free-form prompt with the builtin tools available to
// the model.
type AskCommand struct {
	cmd *aicmd.Command
}

// NewAskCommand creates the ask command.
func NewAskCommand() *AskCommand {
	return &AskCommand{
		cmd: &aicmd.Command{
			Meta: aicmd.Meta{
				Name:        "ask",
				Description: "Answer a prompt, with http_request and eval_script available as tools",
			},
			ArgSpec: contract.Object(map[string]contract.Validator{
				"prompt": contract.String(),
			}).Require("prompt"),
			AI: aicmd.AISpec{
				System: "You are a precise assistant embedded in a workflow engine. Use the available tools when they help.",
				Tools:  aicmd.NewBuiltinTools(),
			},
			Plan: func(args map[string]any, rc *runctx.Context) (string, error) {
				prompt, _ := args["prompt"].(string)
				return prompt, nil
			},
			Run: func(ctx context.Context, args map[string]any, rc *runctx.Context) (*types.Output, error) {
				text := rc.Memo.GetString(aicmd.MemoTextKey)
				if text == "" {
					return nil, fmt.Errorf("model produced no text")
				}
				return &types.Output{Text: text}, nil
			},
		},
	}
}

// Name implements Command.
func (c *AskCommand) Name() string {
	return c.cmd.Meta.Name
}

// Description implements Command.
func (c *AskCommand) Description() string {
	return c.cmd.Meta.Description
}

// Run implements Command.
func (c *AskCommand) Run(ctx context.Context, args map[string]any, rc *runctx.Context) (*types.Output, error) {
	return c.cmd.Execute(ctx, args, rc)
}

func init() {
	DefaultRegistry.MustRegister(NewAskCommand())
}
