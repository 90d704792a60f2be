package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// resultFile is the JSON document written into the session's results
// directory at cleanup time. All timestamps serialize as RFC 3339.
type resultFile struct {
	Summary      resultSummary           `json:"summary"`
	PhaseTimings map[string]*PhaseTiming `json:"phase_timings"`
	Screenshots  map[string][]Artifact   `json:"screenshots"`
	Errors       []ErrorEntry            `json:"errors"`
	Outputs      map[string]any          `json:"outputs"`
}

type resultSummary struct {
	SessionID       string     `json:"session_id"`
	TestName        string     `json:"test_name"`
	Status          Status     `json:"status"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	CurrentPhase    string     `json:"current_phase"`
	SuccessRate     float64    `json:"success_rate"`
	ExecutedNodes   []string   `json:"executed_nodes"`
	FailedNodes     []string   `json:"failed_nodes"`
	ErrorCount      int        `json:"error_count"`
	ScreenshotCount int        `json:"screenshot_count"`
	ResultsDir      string     `json:"results_dir"`
}

// WriteResults writes test_results.json into the session's results
// directory and returns its path. A session without a results directory
// (never provisioned by a store) writes nothing.
func (s *Session) WriteResults() (string, error) {
	if s.ResultsDir == "" {
		return "", nil
	}

	doc := resultFile{
		Summary: resultSummary{
			SessionID:       s.ID,
			TestName:        s.TestName,
			Status:          s.Status,
			StartTime:       s.StartTime,
			EndTime:         s.EndTime,
			DurationSeconds: s.Duration().Seconds(),
			CurrentPhase:    s.CurrentPhase,
			SuccessRate:     s.SuccessRate(),
			ExecutedNodes:   s.ExecutedNodes,
			FailedNodes:     s.FailedNodes,
			ErrorCount:      len(s.Errors),
			ScreenshotCount: s.ScreenshotCount(),
			ResultsDir:      s.ResultsDir,
		},
		PhaseTimings: s.PhaseTimings,
		Screenshots:  s.Screenshots,
		Errors:       s.Errors,
		Outputs:      s.Outputs,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode results for session %s: %w", s.ID, err)
	}

	path := filepath.Join(s.ResultsDir, "test_results.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write results file: %w", err)
	}
	return path, nil
}
