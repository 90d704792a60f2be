package config

import "fmt"

// Archive backend names accepted in configuration.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the unified workflow configuration. Zero values are filled in
// by Default; Validate rejects combinations the app cannot wire.
type Config struct {
	// Name identifies the workflow; it becomes the default test name prefix.
	Name string

	// GraphPath points at a workflow graph JSON file. Empty means the
	// built-in QA workflow.
	GraphPath string

	// ResultsDir is the base directory under which each session gets its
	// own results directory.
	ResultsDir string

	// ArchiveBackend selects the durable session store: "file" or "redis".
	ArchiveBackend string

	// ArchiveDir is the directory for the file backend.
	ArchiveDir string

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string

	// DriverURL is the base URL of the browser driver service. Empty means
	// actions are simulated in-process.
	DriverURL string

	// MaxActiveSessions caps the live session map; the oldest sessions are
	// archived and evicted past this count.
	MaxActiveSessions int

	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when no file or flag overrides a
// field.
func Default() Config {
	return Config{
		Name:              "qa_workflow",
		ResultsDir:        "qa_workflow_results",
		ArchiveBackend:    BackendFile,
		ArchiveDir:        "qa_workflow_sessions",
		MaxActiveSessions: 10,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Validate checks the configuration for combinations the application
// cannot act on.
func (c *Config) Validate() error {
	switch c.ArchiveBackend {
	case BackendFile:
		if c.ArchiveDir == "" {
			return fmt.Errorf("archive backend %q requires archive_dir", BackendFile)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("archive backend %q requires redis_addr", BackendRedis)
		}
	default:
		return fmt.Errorf("unknown archive backend %q: must be %q or %q", c.ArchiveBackend, BackendFile, BackendRedis)
	}
	if c.ResultsDir == "" {
		return fmt.Errorf("results_dir cannot be empty")
	}
	if c.MaxActiveSessions < 1 {
		return fmt.Errorf("max_active_sessions must be at least 1, got %d", c.MaxActiveSessions)
	}
	return nil
}
