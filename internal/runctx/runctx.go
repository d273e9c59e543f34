// Package runctx defines the capability bag handed to every task, step, and
// command in an invocation.
//
// A Context is created fresh per top-level invocation and never shared across
// unrelated invocations. Capabilities (AI, telemetry, filesystem) are optional
// slots: callers attach exactly what they support, and the engine checks for
// presence before use. There are no process-wide singletons behind it.
package runctx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowkit/internal/hookbus"
	"flowkit/pkg/types"
)

// AI is the model-generation capability.
type AI interface {
	// Model returns the configured model identifier.
	Model() string

	// Generate runs one model turn for the request.
	Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResponse, error)
}

// Counter accumulates a named count.
type Counter interface {
	Add(n int64)
}

// Telemetry is the tracing/metrics capability. Span executes fn and returns
// its error unchanged, purely wrapping it for timing.
type Telemetry interface {
	Span(ctx context.Context, name string, fn func(ctx context.Context) error) error
	Counter(name string) Counter
}

// FS is the filesystem capability. Failures surface as ordinary errors.
type FS interface {
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
	Exists(path string) bool
}

// Context carries everything an invocation may touch. Fields are set through
// the With* builders; capability fields left nil mean the capability is
// unavailable.
type Context struct {
	// ID uniquely identifies this invocation.
	ID string

	// Cwd is the working directory of the invocation.
	Cwd string

	// Env holds environment values visible to tasks.
	Env map[string]string

	// Now supplies the current time; substitutable in tests.
	Now func() time.Time

	// Hooks is the bus lifecycle announcements go to.
	Hooks *hookbus.Bus

	// Memo is the one sanctioned channel for side information passed between
	// tasks within this invocation.
	Memo *Memo

	// Logger is the invocation-scoped structured logger.
	Logger *zap.Logger

	AI        AI
	Telemetry Telemetry
	FS        FS
}

// NewContext creates a Context with a fresh ID and memo, the default hook
// bus, and a no-op logger. Everything else is attached via the With*
// builders.
func NewContext() *Context {
	return &Context{
		ID:     uuid.NewString(),
		Env:    make(map[string]string),
		Now:    time.Now,
		Hooks:  hookbus.Default,
		Memo:   NewMemo(),
		Logger: zap.NewNop(),
	}
}

// WithCwd sets the working directory.
func (c *Context) WithCwd(cwd string) *Context {
	c.Cwd = cwd
	return c
}

// WithEnv sets the environment map.
func (c *Context) WithEnv(env map[string]string) *Context {
	c.Env = env
	return c
}

// WithNow sets the time source.
func (c *Context) WithNow(now func() time.Time) *Context {
	c.Now = now
	return c
}

// WithHooks sets the hook bus.
func (c *Context) WithHooks(bus *hookbus.Bus) *Context {
	c.Hooks = bus
	return c
}

// WithLogger sets the logger.
func (c *Context) WithLogger(l *zap.Logger) *Context {
	c.Logger = l
	return c
}

// WithAI attaches the AI capability.
func (c *Context) WithAI(ai AI) *Context {
	c.AI = ai
	return c
}

// WithTelemetry attaches the telemetry capability.
func (c *Context) WithTelemetry(t Telemetry) *Context {
	c.Telemetry = t
	return c
}

// WithFS attaches the filesystem capability.
func (c *Context) WithFS(fs FS) *Context {
	c.FS = fs
	return c
}
