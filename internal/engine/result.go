package engine

import "time"

// Status is the traversal state of one engine run.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	// StatusCompleted means the run reached an end node.
	StatusCompleted Status = "completed"
	// StatusFailed means a phase handler reported or raised an error.
	StatusFailed Status = "failed"
	// StatusIncomplete means the ready queue drained without reaching an
	// end node: the graph is structurally broken, not a phase failure.
	StatusIncomplete Status = "incomplete"
)

// Result is the structured outcome of a run. Phase failures surface here,
// never as errors escaping Run.
type Result struct {
	Success bool   `json:"success"`
	Status  Status `json:"status"`
	Message string `json:"message"`

	SessionID string `json:"session_id"`

	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds float64   `json:"duration_seconds"`

	ExecutedNodes []string `json:"executed_nodes"`
	FailedNodes   []string `json:"failed_nodes"`
	TotalNodes    int      `json:"total_nodes"`
	SuccessRate   float64  `json:"success_rate"`
}
