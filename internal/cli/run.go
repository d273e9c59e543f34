package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowkit/internal/command"
	"flowkit/internal/config"
	"flowkit/internal/hookbus"
	"flowkit/internal/lifecycle"
	"flowkit/internal/provider"
	"flowkit/internal/runctx"
	"flowkit/internal/telemetry"
	"flowkit/pkg/logger"
	"flowkit/pkg/types"
)

var (
	runArgs       []string
	runTraceHooks bool
)

var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Run a registered command through the lifecycle runner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, cmdArgs []string) error {
		return runCommand(cmd.Context(), cmdArgs[0])
	},
}

func runCommand(ctx context.Context, name string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level); err != nil {
		return err
	}

	resolved, err := command.DefaultRegistry.Get(name)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(command.DefaultRegistry.Names(), ", "))
	}

	args, err := parseArgs(runArgs)
	if err != nil {
		return err
	}

	rc, err := buildContext(ctx, cfg)
	if err != nil {
		return err
	}

	if runTraceHooks {
		traceHooks(rc.Hooks, rc.Logger)
	}

	out, err := lifecycle.Run(ctx, lifecycle.Invocation{
		Cmd:  name,
		Args: args,
		Ctx:  rc,
		RunStep: func(ctx context.Context, rc *runctx.Context) (*types.Output, error) {
			return resolved.Run(ctx, args, rc)
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(out.Text)
	return nil
}

// buildContext assembles the run context with exactly the capabilities the
// configuration supports.
func buildContext(ctx context.Context, cfg *config.Config) (*runctx.Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, entry := range os.Environ() {
		if k, v, ok := strings.Cut(entry, "="); ok {
			env[k] = v
		}
	}

	rc := runctx.NewContext().
		WithCwd(cwd).
		WithEnv(env).
		WithHooks(hookbus.New()).
		WithLogger(logger.L()).
		WithFS(runctx.NewOSFS())

	if cfg.AI.Model != "" {
		ai, err := provider.New(ctx, provider.Config{
			Model:   cfg.AI.Model,
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		rc = rc.WithAI(ai)
	}

	if telemetry.Enabled() {
		if err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, Version); err != nil {
			return nil, err
		}
		rc = rc.WithTelemetry(telemetry.NewOTel())
	}

	return rc, nil
}

// traceHooks registers a debug logging handler on every lifecycle hook.
func traceHooks(bus *hookbus.Bus, log *zap.Logger) {
	names := append([]string{}, lifecycle.PreHooks...)
	names = append(names, lifecycle.HookOutputWillEmit)
	names = append(names, lifecycle.PostHooks...)
	for _, name := range names {
		name := name
		bus.Hook(name, func(ctx context.Context, payload map[string]any) error {
			log.Debug("hook", zap.String("name", name), zap.Any("payload", payload))
			return nil
		})
	}
}

// parseArgs turns key=value pairs into the invocation argument map.
func parseArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", pair)
		}
		args[k] = v
	}
	return args, nil
}

func init() {
	runCmd.Flags().StringArrayVar(&runArgs, "arg", nil, "command argument as key=value (repeatable)")
	runCmd.Flags().BoolVar(&runTraceHooks, "trace-hooks", false, "log every lifecycle hook announcement")

	rootCmd.AddCommand(runCmd)
}
