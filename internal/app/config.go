package app

import "errors"

// Config holds the entrypoint-level settings for an App instance. Fields
// set here override the workflow config file.
type Config struct {
	// ConfigPath points at an optional workflow .hcl config file.
	ConfigPath string

	// GraphPath overrides the config file's graph path. Empty with no file
	// override means the built-in QA workflow.
	GraphPath string

	// TestName labels this run; it prefixes the session's results
	// directory. Empty means a timestamped default.
	TestName string

	// SessionID resumes an existing session instead of creating one.
	SessionID string

	ResultsDir string
	ArchiveDir string
	DriverURL  string

	// DryRun loads and validates the graph, prints its summary, and exits
	// without executing any phase.
	DryRun bool

	HealthcheckPort int
	LogFormat       string
	LogLevel        string
}

// NewConfig validates an entrypoint config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DryRun && cfg.SessionID != "" {
		return nil, errors.New("a dry run cannot resume a session: drop either -dry-run or -session-id")
	}
	return &cfg, nil
}
