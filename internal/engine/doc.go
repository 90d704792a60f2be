// Package engine walks the workflow graph for one session: it pops ready
// nodes in FIFO order, dispatches each to its phase handler, records the
// outcome into the session, and follows the edges matching the outcome
// label until an end node is reached or a failure halts the run.
//
// Nodes execute strictly one at a time, even when a branching graph would
// make several siblings ready together; later nodes may read earlier
// nodes' results through the session's outputs map, so sibling order is
// meaningful. Concurrency lives one level up: many engines may run at
// once, each bound to its own session.
package engine
