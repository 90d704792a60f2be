package session

import "time"

// Snapshot is the flattened, serializable form of a session that the
// durable archive persists. Timestamps keep full precision across a
// JSON round trip (RFC 3339 with nanoseconds).
type Snapshot struct {
	ID       string `json:"id"`
	TestName string `json:"test_name"`
	Status   Status `json:"status"`
	Owner    Owner  `json:"owner,omitempty"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`

	CurrentPhase string `json:"current_phase,omitempty"`
	CurrentStep  int    `json:"current_step"`

	Outputs       map[string]any          `json:"outputs,omitempty"`
	ExecutedNodes []string                `json:"executed_nodes,omitempty"`
	FailedNodes   []string                `json:"failed_nodes,omitempty"`
	Errors        []ErrorEntry            `json:"errors,omitempty"`
	Screenshots   map[string][]Artifact   `json:"screenshots,omitempty"`
	PhaseTimings  map[string]*PhaseTiming `json:"phase_timings,omitempty"`
	PhaseOrder    []string                `json:"phase_order,omitempty"`

	SuccessRate float64 `json:"success_rate"`

	ResultsDir     string `json:"results_dir,omitempty"`
	ScreenshotsDir string `json:"screenshots_dir,omitempty"`
	LogsDir        string `json:"logs_dir,omitempty"`

	// Tags support archive search; derived from the phase and test name.
	Tags []string `json:"tags,omitempty"`
}

// Snapshot flattens the session's externally relevant state for archiving.
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		ID:             s.ID,
		TestName:       s.TestName,
		Status:         s.Status,
		Owner:          s.Owner,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		UpdatedAt:      time.Now(),
		CurrentPhase:   s.CurrentPhase,
		CurrentStep:    s.CurrentStep,
		Outputs:        s.Outputs,
		ExecutedNodes:  s.ExecutedNodes,
		FailedNodes:    s.FailedNodes,
		Errors:         s.Errors,
		Screenshots:    s.Screenshots,
		PhaseTimings:   s.PhaseTimings,
		PhaseOrder:     s.phaseOrder,
		SuccessRate:    s.SuccessRate(),
		ResultsDir:     s.ResultsDir,
		ScreenshotsDir: s.ScreenshotsDir,
		LogsDir:        s.LogsDir,
		Tags:           []string{s.CurrentPhase, s.TestName},
	}
}

// FromSnapshot rebuilds a live session from an archived snapshot. The
// returned session carries StatusRestored so callers can tell a resumed
// run from a fresh one.
func FromSnapshot(snap *Snapshot) *Session {
	s := &Session{
		ID:             snap.ID,
		TestName:       snap.TestName,
		Status:         StatusRestored,
		Owner:          snap.Owner,
		StartTime:      snap.StartTime,
		EndTime:        snap.EndTime,
		CurrentPhase:   snap.CurrentPhase,
		CurrentStep:    snap.CurrentStep,
		Outputs:        snap.Outputs,
		ExecutedNodes:  snap.ExecutedNodes,
		FailedNodes:    snap.FailedNodes,
		Errors:         snap.Errors,
		Screenshots:    snap.Screenshots,
		PhaseTimings:   snap.PhaseTimings,
		phaseOrder:     snap.PhaseOrder,
		ResultsDir:     snap.ResultsDir,
		ScreenshotsDir: snap.ScreenshotsDir,
		LogsDir:        snap.LogsDir,
	}
	if s.Outputs == nil {
		s.Outputs = make(map[string]any)
	}
	if s.Screenshots == nil {
		s.Screenshots = make(map[string][]Artifact)
	}
	if s.PhaseTimings == nil {
		s.PhaseTimings = make(map[string]*PhaseTiming)
	}
	return s
}

// Summary is the condensed listing form of a session used by the archive
// List operation and status reporting.
type Summary struct {
	ID              string     `json:"id"`
	TestName        string     `json:"test_name"`
	Status          Status     `json:"status"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	SuccessRate     float64    `json:"success_rate"`
	CurrentPhase    string     `json:"current_phase,omitempty"`
	ExecutedCount   int        `json:"executed_count"`
	FailedCount     int        `json:"failed_count"`
	ScreenshotCount int        `json:"screenshot_count"`
	ErrorCount      int        `json:"error_count"`
}

// Summarize condenses a snapshot into its listing form.
func (snap *Snapshot) Summarize() Summary {
	sum := Summary{
		ID:            snap.ID,
		TestName:      snap.TestName,
		Status:        snap.Status,
		StartTime:     snap.StartTime,
		EndTime:       snap.EndTime,
		SuccessRate:   snap.SuccessRate,
		CurrentPhase:  snap.CurrentPhase,
		ExecutedCount: len(snap.ExecutedNodes),
		FailedCount:   len(snap.FailedNodes),
		ErrorCount:    len(snap.Errors),
	}
	for _, shots := range snap.Screenshots {
		sum.ScreenshotCount += len(shots)
	}
	if snap.EndTime != nil {
		sum.DurationSeconds = snap.EndTime.Sub(snap.StartTime).Seconds()
	}
	return sum
}
