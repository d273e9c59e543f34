// Package hookbus provides the named-event registry every lifecycle
// announcement in the engine flows through.
//
// Handlers for one event run strictly in registration order and fully
// sequentially. The bus is fail-fast: a handler error aborts the remaining
// handlers for that call and propagates to the announcer. This is load-bearing
// for the lifecycle runner, whose failure path must observe its diagnostic
// announcement before the original error continues to propagate.
package hookbus

import (
	"context"
	"fmt"
	"sync"
)

// Handler receives a hook announcement. Returning an error aborts the
// remaining handlers for that call.
type Handler func(ctx context.Context, payload map[string]any) error

// UnhookFunc removes exactly one handler registration. Safe to call more than
// once; later calls are no-ops.
type UnhookFunc func()

type registration struct {
	seq     uint64
	handler Handler
}

// Bus is a named-event publish/subscribe registry. The zero value is not
// usable; construct with New.
type Bus struct {
	mu       sync.Mutex
	nextSeq  uint64
	handlers map[string][]registration
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[string][]registration),
	}
}

// Default is the process-wide convenience instance. Callers that need
// isolation construct their own Bus and carry it on the run context.
var Default = New()

// Hook registers a handler for the named event and returns its deregistration
// func. Registering the same handler twice registers it twice.
func (b *Bus) Hook(name string, handler Handler) UnhookFunc {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	seq := b.nextSeq
	b.handlers[name] = append(b.handlers[name], registration{seq: seq, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		regs := b.handlers[name]
		for i, reg := range regs {
			if reg.seq == seq {
				b.handlers[name] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// Call invokes every handler currently registered for name, in registration
// order, each fully completed before the next. An unknown name is a no-op.
// Deregistering during a call does not affect handlers already snapshotted
// for that call.
func (b *Bus) Call(ctx context.Context, name string, payload map[string]any) error {
	b.mu.Lock()
	regs := b.handlers[name]
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)
	b.mu.Unlock()

	for _, reg := range snapshot {
		if err := reg.handler(ctx, payload); err != nil {
			return fmt.Errorf("hook %q: %w", name, err)
		}
	}
	return nil
}

// Count returns the number of handlers registered for name.
func (b *Bus) Count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[name])
}
