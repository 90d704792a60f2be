package action

import (
	"context"
	"fmt"
)

// Executor performs a named external action and reports whether it
// succeeded. Implementations may block for long real-world waits; they are
// responsible for bounding their own timeouts and reporting a false
// outcome rather than hanging.
type Executor interface {
	Invoke(ctx context.Context, name string) (success bool, message string)
}

// Result is a scripted outcome for one action name.
type Result struct {
	Success bool
	Message string
}

// Script is a canned executor for tests and dry runs. Actions not present
// in the script succeed with a generic message, so a dry run walks the
// whole graph unless a failure is scripted explicitly.
type Script struct {
	// Outcomes maps action name to its scripted result.
	Outcomes map[string]Result
	// Invoked records every action name in call order.
	Invoked []string
}

// NewScript returns a Script with the given canned outcomes.
func NewScript(outcomes map[string]Result) *Script {
	if outcomes == nil {
		outcomes = make(map[string]Result)
	}
	return &Script{Outcomes: outcomes}
}

// Invoke resolves the action against the script.
func (s *Script) Invoke(_ context.Context, name string) (bool, string) {
	s.Invoked = append(s.Invoked, name)
	if r, ok := s.Outcomes[name]; ok {
		return r.Success, r.Message
	}
	return true, fmt.Sprintf("action %q completed (scripted)", name)
}
