package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownOperation is returned when dispatching an unregistered name.
var ErrUnknownOperation = errors.New("unknown operation")

// Handler is a pure operation: it decodes its request from JSON, computes,
// and returns a response value for serialization. Handlers hold no state
// between calls.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// Registry maps operation names to handlers. The transport layer dispatches
// into it; the engine itself performs no I/O.
type Registry struct {
	handlers map[string]Handler
	order    []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a named operation. Registering a duplicate name panics: the
// operation set is fixed at startup.
func (r *Registry) Register(name string, h Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("operation %q registered twice", name))
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
}

// Operations lists registered operation names in registration order.
func (r *Registry) Operations() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Dispatch invokes the named operation with the given JSON payload.
func (r *Registry) Dispatch(ctx context.Context, name string, payload json.RawMessage) (any, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return h(ctx, payload)
}
