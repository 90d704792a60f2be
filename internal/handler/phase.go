package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/phasegridgo/internal/action"
	"github.com/vk/phasegridgo/internal/ctxlog"
	"github.com/vk/phasegridgo/internal/graph"
	"github.com/vk/phasegridgo/internal/session"
)

// ActionPhase executes a node by invoking its named browser actions in
// order through the action executor. The first failed action fails the
// whole phase; later actions do not run.
type ActionPhase struct {
	exec action.Executor
}

// NewActionPhase returns a phase handler backed by the given executor.
func NewActionPhase(exec action.Executor) *ActionPhase {
	return &ActionPhase{exec: exec}
}

// actionRecord is the per-action entry stored in the outcome payload.
type actionRecord struct {
	Action    string    `json:"action"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Execute runs the node's actions and stamps the session's phase timing.
func (h *ActionPhase) Execute(ctx context.Context, node *graph.Node, sess *session.Session) Outcome {
	logger := ctxlog.FromContext(ctx).With("node", node.ID, "phase", node.Phase)
	logger.Info("▶️ Starting phase")

	sess.StartPhase(node.Phase)

	if len(node.Actions) == 0 {
		sess.EndPhase(node.Phase, false)
		return Failure(fmt.Sprintf("node %q defines no actions", node.ID), nil)
	}

	executed := make([]actionRecord, 0, len(node.Actions))
	for _, name := range node.Actions {
		logger.Debug("Invoking action.", "action", name)
		ok, msg := h.exec.Invoke(ctx, name)
		executed = append(executed, actionRecord{
			Action:    name,
			Success:   ok,
			Message:   msg,
			Timestamp: time.Now(),
		})
		if !ok {
			logger.Error("Action failed.", "action", name, "message", msg)
			sess.AddError(node.Phase, msg, "")
			sess.EndPhase(node.Phase, false)
			return Failure(fmt.Sprintf("action %q failed: %s", name, msg), map[string]any{
				"actions_executed": executed,
			})
		}
	}

	sess.EndPhase(node.Phase, true)
	logger.Info("✅ Finished phase")

	return Success(fmt.Sprintf("%s phase completed successfully", node.Phase), map[string]any{
		"actions_executed": executed,
	})
}

// End handles the terminal node: it summarizes the run for the outputs
// map and reports completion. The engine stops when it sees the end type,
// so no edge label matters here.
type End struct{}

// Execute builds the completion summary from the session state.
func (End) Execute(ctx context.Context, node *graph.Node, sess *session.Session) Outcome {
	ctxlog.FromContext(ctx).Info("🏁 Reached end node, workflow completed.", "node", node.ID)

	return Success("acceptance workflow completed, all phases validated", map[string]any{
		"total_phases":    len(sess.PhaseTimings),
		"executed_nodes":  sess.ExecutedNodes,
		"completion_time": time.Now(),
	})
}
