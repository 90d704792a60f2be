package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/phasegridgo/internal/ctxlog"
	"github.com/vk/phasegridgo/internal/engine"
	"github.com/vk/phasegridgo/internal/session"
)

// Run executes one workflow session end to end. Phase failures come back
// as an error describing the run outcome; infrastructure failures come
// back as-is.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.entry.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.entry.HealthcheckPort)
	}

	summary := a.graph.Summarize()
	a.logger.Info("Workflow graph ready.",
		"workflow", a.cfg.Name,
		"nodes", summary.TotalNodes,
		"edges", summary.TotalEdges,
		"startNode", summary.StartNode,
	)

	if a.entry.DryRun {
		fmt.Fprintf(a.outW, "workflow %s: %d nodes, %d edges, start node %s\n",
			a.cfg.Name, summary.TotalNodes, summary.TotalEdges, summary.StartNode)
		for _, n := range a.graph.Nodes() {
			fmt.Fprintf(a.outW, "  %s (%s) actions=%d\n", n.ID, n.Type, len(n.Actions))
		}
		a.logger.Info("Dry run complete, no phases executed.")
		return nil
	}

	// Export the graph next to the results so a run can always be matched
	// to the exact workflow that produced it.
	graphExport := filepath.Join(a.cfg.ResultsDir, "workflow_graph.json")
	if err := a.graph.Save(graphExport); err != nil {
		a.logger.Warn("Failed to export workflow graph.", "path", graphExport, "error", err)
	} else {
		a.logger.Debug("Workflow graph exported.", "path", graphExport)
	}

	// Make room before admitting a new session so the live map never
	// exceeds its cap.
	if _, err := a.store.EvictOldest(ctx, a.cfg.MaxActiveSessions-1); err != nil {
		return fmt.Errorf("failed to evict old sessions: %w", err)
	}

	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	eng, err := engine.New(a.graph, a.registry, a.store, sess)
	if err != nil {
		return fmt.Errorf("failed to construct engine: %w", err)
	}

	a.logger.Info("🚀 Starting workflow execution...", "sessionID", sess.ID)
	res := eng.Run(ctx, "")

	a.logger.Info("🏁 Execution finished.",
		"status", string(res.Status),
		"durationSeconds", res.DurationSeconds,
		"executed", len(res.ExecutedNodes),
		"failed", len(res.FailedNodes),
		"successRate", res.SuccessRate,
	)

	fmt.Fprintf(a.outW, "session %s %s: %d/%d nodes executed, success rate %.1f%%\n",
		res.SessionID, res.Status, len(res.ExecutedNodes), res.TotalNodes, res.SuccessRate)

	// The engine already archived the final state; dropping the live entry
	// keeps the hot map to sessions that are actually running.
	if err := a.store.Evict(ctx, sess.ID, false); err != nil {
		a.logger.Warn("Failed to evict finished session.", "sessionID", sess.ID, "error", err)
	}

	if !res.Success {
		return fmt.Errorf("workflow run did not complete: %s", res.Message)
	}
	return nil
}

// openSession resumes the requested session or creates a fresh one.
func (a *App) openSession(ctx context.Context) (*session.Session, error) {
	if a.entry.SessionID != "" {
		sess, err := a.store.Get(ctx, a.entry.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to open session %s: %w", a.entry.SessionID, err)
		}
		return sess, nil
	}

	testName := a.entry.TestName
	sess, err := a.store.Create(ctx, testName, "", session.Owner{})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}
