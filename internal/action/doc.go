// Package action defines the Action Executor contract: the external
// collaborator that performs named, real-world browser actions on behalf
// of a phase handler.
//
// Executors never return Go errors for action failures. Every invocation,
// including one naming an unknown action, resolves to a (success, message)
// pair; phase handlers turn a false outcome into a failed phase.
package action
