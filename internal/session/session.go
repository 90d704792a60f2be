package session

import (
	"time"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPaused    Status = "paused"
	// StatusRestored marks a session hydrated from the archive rather than
	// freshly created.
	StatusRestored Status = "restored"
)

// Terminal reports whether the status ends the session's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ErrorEntry is one entry in the session's ordered error log.
type ErrorEntry struct {
	Phase      string    `json:"phase"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Screenshot string    `json:"screenshot,omitempty"`
}

// Artifact references a captured screenshot or similar file.
type Artifact struct {
	Path        string    `json:"path"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

// PhaseTiming records when a phase started and ended and whether it
// succeeded. Duration is derived at EndPhase time.
type PhaseTiming struct {
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	Success         bool       `json:"success"`
}

// Owner carries optional user/tenant/project attribution for a session.
type Owner struct {
	UserID   string `json:"user_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	Project  string `json:"project,omitempty"`
}

// Session is the live state of one test run.
type Session struct {
	ID       string
	TestName string
	Status   Status
	Owner    Owner

	StartTime time.Time
	EndTime   *time.Time

	CurrentPhase string
	CurrentStep  int

	// Outputs maps node id to the last result payload that node produced.
	Outputs       map[string]any
	ExecutedNodes []string
	FailedNodes   []string
	Errors        []ErrorEntry
	Screenshots   map[string][]Artifact
	PhaseTimings  map[string]*PhaseTiming

	// phaseOrder remembers the order phases were started in, so reports
	// stay deterministic while PhaseTimings remains a map.
	phaseOrder []string

	ResultsDir     string
	ScreenshotsDir string
	LogsDir        string
}

// New returns a fresh active session. Directory provisioning is the
// store's job; New only builds the in-memory state.
func New(id, testName string, owner Owner) *Session {
	return &Session{
		ID:           id,
		TestName:     testName,
		Status:       StatusActive,
		Owner:        owner,
		StartTime:    time.Now(),
		CurrentStep:  1,
		Outputs:      make(map[string]any),
		Screenshots:  make(map[string][]Artifact),
		PhaseTimings: make(map[string]*PhaseTiming),
	}
}

// StartPhase marks the beginning of a phase and makes it the current one.
// Re-starting a phase that already ran resets its timing.
func (s *Session) StartPhase(phase string) {
	s.CurrentPhase = phase
	if _, seen := s.PhaseTimings[phase]; !seen {
		s.phaseOrder = append(s.phaseOrder, phase)
	}
	s.PhaseTimings[phase] = &PhaseTiming{Start: time.Now()}
}

// EndPhase stamps the end of a phase and records its outcome. Ending a
// phase that was never started is a no-op.
func (s *Session) EndPhase(phase string, success bool) {
	t, ok := s.PhaseTimings[phase]
	if !ok {
		return
	}
	now := time.Now()
	t.End = &now
	t.DurationSeconds = now.Sub(t.Start).Seconds()
	t.Success = success
}

// RecordExecuted appends a node id to the executed list.
func (s *Session) RecordExecuted(nodeID string) {
	s.ExecutedNodes = append(s.ExecutedNodes, nodeID)
}

// RecordFailed appends a node id to the failed list.
func (s *Session) RecordFailed(nodeID string) {
	s.FailedNodes = append(s.FailedNodes, nodeID)
}

// SetOutput stores the last result payload for a node.
func (s *Session) SetOutput(nodeID string, payload any) {
	s.Outputs[nodeID] = payload
}

// AddError appends an entry to the error log. screenshot may be empty.
func (s *Session) AddError(phase, message, screenshot string) {
	s.Errors = append(s.Errors, ErrorEntry{
		Phase:      phase,
		Message:    message,
		Timestamp:  time.Now(),
		Screenshot: screenshot,
	})
}

// AddScreenshot records a captured artifact for a phase.
func (s *Session) AddScreenshot(phase, path, description string) {
	s.Screenshots[phase] = append(s.Screenshots[phase], Artifact{
		Path:        path,
		Timestamp:   time.Now(),
		Description: description,
	})
}

// SuccessRate is the percentage of started phases that completed
// successfully. It is recomputed on demand and is always in [0, 100].
func (s *Session) SuccessRate() float64 {
	total := len(s.PhaseTimings)
	if total == 0 {
		return 0
	}
	successful := 0
	for _, t := range s.PhaseTimings {
		if t.Success {
			successful++
		}
	}
	return float64(successful) / float64(total) * 100
}

// Duration is the wall-clock time from start until EndTime, or until now
// for a still-running session.
func (s *Session) Duration() time.Duration {
	end := time.Now()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return end.Sub(s.StartTime)
}

// ScreenshotCount totals the recorded artifacts across all phases.
func (s *Session) ScreenshotCount() int {
	n := 0
	for _, shots := range s.Screenshots {
		n += len(shots)
	}
	return n
}

// PhaseOrder returns the phases in the order they were first started.
func (s *Session) PhaseOrder() []string {
	return s.phaseOrder
}
