// Package graph holds the immutable workflow graph: the phase nodes, the
// labeled transitions between them, and the query operations the engine
// uses to walk them.
//
// A graph is built once (from the builtin definition or a JSON file),
// validated, and never mutated afterwards. The engine only reads it, so no
// locking is needed even when many sessions share one graph.
package graph
