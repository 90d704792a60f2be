package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/phasegridgo/internal/ctxlog"
	"github.com/vk/phasegridgo/internal/graph"
	"github.com/vk/phasegridgo/internal/handler"
	"github.com/vk/phasegridgo/internal/session"
	"github.com/vk/phasegridgo/internal/sessionstore"
)

// Engine drives one session through the workflow graph. An engine is
// bound to exactly one session and must not be shared across runs.
type Engine struct {
	graph    *graph.Graph
	registry *handler.Registry
	store    *sessionstore.Store
	sess     *session.Session

	status Status
}

// New builds an engine and validates its configuration: every node type
// in the graph must resolve to a registered handler. Validation failures
// propagate to the caller; they are never tolerated at runtime.
func New(g *graph.Graph, reg *handler.Registry, store *sessionstore.Store, sess *session.Session) (*Engine, error) {
	if g == nil {
		return nil, errors.New("engine requires a graph")
	}
	if sess == nil {
		return nil, errors.New("engine requires a session")
	}
	for _, n := range g.Nodes() {
		if _, ok := reg.Lookup(n.Type); !ok {
			return nil, fmt.Errorf("node %q has type %q with no registered handler", n.ID, n.Type)
		}
	}
	return &Engine{
		graph:    g,
		registry: reg,
		store:    store,
		sess:     sess,
		status:   StatusIdle,
	}, nil
}

// Status returns the engine's current traversal state.
func (e *Engine) Status() Status {
	return e.status
}

// Run walks the graph breadth-first from startNodeID (empty means the
// graph's start node) and returns a structured result. Phase failures and
// handler panics are captured into the result and the session's error
// log; Run itself reports them, it does not raise them. The final
// persistence write always happens, whatever the outcome.
func (e *Engine) Run(ctx context.Context, startNodeID string) Result {
	logger := ctxlog.FromContext(ctx).With("sessionID", e.sess.ID)
	start := time.Now()
	e.status = StatusRunning

	defer func() {
		e.finalize(ctx)
	}()

	if startNodeID == "" {
		startNode, err := e.graph.StartNode()
		if err != nil {
			e.status = StatusFailed
			return e.result(start, fmt.Sprintf("cannot start run: %v", err))
		}
		startNodeID = startNode.ID
	}

	logger.Info("🚀 Starting workflow run.", "startNode", startNodeID, "totalNodes", e.graph.Len())

	queue := []string{startNodeID}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run aborted by context.", "error", err)
			e.sess.AddError(e.sess.CurrentPhase, fmt.Sprintf("run aborted: %v", err), "")
			e.status = StatusFailed
			return e.result(start, fmt.Sprintf("run aborted: %v", err))
		}

		nodeID := queue[0]
		queue = queue[1:]

		node, err := e.graph.NodeByID(nodeID)
		if err != nil {
			// A dangling reference skips the node but does not kill the
			// run; this leniency is distinct from handler failures.
			logger.Error("Node not found, skipping.", "nodeID", nodeID)
			continue
		}

		logger.Info("🔄 Executing node.", "nodeID", node.ID, "type", node.Type)
		outcome := e.dispatch(ctx, node)
		e.sess.SetOutput(node.ID, outcome)

		if node.Type == graph.TypeEnd {
			e.sess.RecordExecuted(node.ID)
			logger.Info("🏁 Reached end node, run completed.", "nodeID", node.ID)
			e.status = StatusCompleted
			return e.result(start, "workflow completed successfully")
		}

		if outcome.Type == handler.OutcomeError {
			e.sess.RecordFailed(node.ID)
			logger.Error("❌ Node failed, halting run.", "nodeID", node.ID, "message", outcome.Message)
			e.status = StatusFailed
			return e.result(start, fmt.Sprintf("node %s failed: %s", node.ID, outcome.Message))
		}

		e.sess.RecordExecuted(node.ID)

		next := e.graph.NextNodes(node.ID, outcome.Label)
		for _, n := range next {
			queue = append(queue, n.ID)
		}
		logger.Debug("Enqueued next nodes.", "from", node.ID, "label", outcome.Label, "count", len(next))
	}

	// Ready queue drained without an end node: structural defect, not a
	// phase failure.
	logger.Error("Run incomplete: queue exhausted before reaching an end node.")
	e.status = StatusIncomplete
	return e.result(start, "workflow execution incomplete: no end node reached")
}

// dispatch resolves the handler for the node and executes it, converting
// a panic into the same error outcome a reported failure produces.
func (e *Engine) dispatch(ctx context.Context, node *graph.Node) (out handler.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("handler for node %s panicked: %v", node.ID, r)
			ctxlog.FromContext(ctx).Error("Handler panicked.", "nodeID", node.ID, "panic", r)
			e.sess.AddError(node.Phase, msg, "")
			out = handler.Failure(msg, nil)
		}
	}()

	h, ok := e.registry.Lookup(node.Type)
	if !ok {
		// New() guarantees this cannot happen for nodes of the validated
		// graph; guard anyway so dispatch never panics on a stale graph.
		return handler.Failure(fmt.Sprintf("no handler registered for node type %q", node.Type), nil)
	}
	return h.Execute(ctx, node, e.sess)
}

// finalize stamps the session's terminal status, writes the result file,
// and archives the session. It runs in a deferred block so an abrupt
// abort still flushes state.
func (e *Engine) finalize(ctx context.Context) {
	logger := ctxlog.FromContext(ctx).With("sessionID", e.sess.ID)

	status := session.StatusFailed
	if e.status == StatusCompleted {
		status = session.StatusCompleted
	}
	if e.store != nil {
		if err := e.store.UpdateStatus(ctx, e.sess.ID, status); err != nil {
			logger.Warn("Failed to update session status during cleanup.", "error", err)
		}
	} else {
		e.sess.Status = status
		now := time.Now()
		e.sess.EndTime = &now
	}

	if path, err := e.sess.WriteResults(); err != nil {
		logger.Warn("Failed to write session results.", "error", err)
	} else if path != "" {
		logger.Info("💾 Session results written.", "path", path)
	}

	if e.store != nil {
		if err := e.store.Save(ctx, e.sess.ID); err != nil {
			logger.Warn("Failed to archive session during cleanup.", "error", err)
		}
	}
}

// result assembles the structured run result from the session state.
func (e *Engine) result(start time.Time, message string) Result {
	end := time.Now()
	return Result{
		Success:         e.status == StatusCompleted,
		Status:          e.status,
		Message:         message,
		SessionID:       e.sess.ID,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: end.Sub(start).Seconds(),
		ExecutedNodes:   e.sess.ExecutedNodes,
		FailedNodes:     e.sess.FailedNodes,
		TotalNodes:      e.graph.Len(),
		SuccessRate:     e.sess.SuccessRate(),
	}
}
