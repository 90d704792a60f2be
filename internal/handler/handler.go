package handler

import (
	"context"

	"github.com/vk/phasegridgo/internal/graph"
	"github.com/vk/phasegridgo/internal/session"
)

// OutcomeType classifies a handler result. Exactly two values exist; a
// completion is reported as a success on the end node.
type OutcomeType string

const (
	OutcomeSuccess OutcomeType = "success"
	OutcomeError   OutcomeType = "error"
)

// Outcome is the structured result of executing one node.
type Outcome struct {
	Type    OutcomeType `json:"type"`
	Message string      `json:"message"`
	// Label selects the outgoing edges to follow ("SUCCESS"/"FAILURE").
	Label string `json:"label"`
	// Payload carries phase-specific result data stored into the
	// session's outputs map under the node id.
	Payload map[string]any `json:"payload,omitempty"`
}

// Success builds a success outcome with the SUCCESS edge label.
func Success(message string, payload map[string]any) Outcome {
	return Outcome{
		Type:    OutcomeSuccess,
		Message: message,
		Label:   graph.LabelSuccess,
		Payload: payload,
	}
}

// Failure builds an error outcome with the FAILURE edge label. The
// reference graph defines no FAILURE edges, so this halts traversal.
func Failure(message string, payload map[string]any) Outcome {
	return Outcome{
		Type:    OutcomeError,
		Message: message,
		Label:   graph.LabelFailure,
		Payload: payload,
	}
}

// Handler executes one node against the session it belongs to. Handlers
// may block for long external waits; they bound their own timeouts and
// report failure outcomes rather than hanging or panicking. A panic that
// does escape is converted by the engine into an error outcome.
type Handler interface {
	Execute(ctx context.Context, node *graph.Node, sess *session.Session) Outcome
}
