package handler

import (
	"fmt"

	"github.com/vk/phasegridgo/internal/action"
	"github.com/vk/phasegridgo/internal/graph"
)

// Registry maps node type tags to their handlers for a single application
// instance.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a node type tag. Registering the same tag
// twice is a programmer error.
func (r *Registry) Register(nodeType string, h Handler) {
	if _, exists := r.handlers[nodeType]; exists {
		panic(fmt.Sprintf("handler for node type '%s' already registered", nodeType))
	}
	r.handlers[nodeType] = h
}

// Lookup returns the handler for a node type.
func (r *Registry) Lookup(nodeType string) (Handler, bool) {
	h, ok := r.handlers[nodeType]
	return h, ok
}

// Types returns the registered node type tags.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// NewDefaultRegistry wires the full acceptance-test handler set: one
// action-phase handler per browser-driven node type, plus the end handler.
func NewDefaultRegistry(exec action.Executor) *Registry {
	r := NewRegistry()
	phase := NewActionPhase(exec)
	for _, t := range []string{
		graph.TypeAuthentication,
		graph.TypeRequirements,
		graph.TypeDiscovery,
		graph.TypeWireframes,
		graph.TypeDesign,
		graph.TypeBuild,
		graph.TypeTest,
		graph.TypePreview,
		graph.TypeFinal,
	} {
		r.Register(t, phase)
	}
	r.Register(graph.TypeEnd, End{})
	return r
}
