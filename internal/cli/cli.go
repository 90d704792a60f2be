package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/phasegridgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly, or
// an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("phasegridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
PhaseGridGo - A phase-driven browser acceptance workflow runner.

Usage:
  phasegridgo [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a workflow graph .json file. Omit it to run the built-in
    QA workflow.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the workflow .hcl config file.")
	graphFlag := flagSet.String("graph", "", "Path to the workflow graph .json file.")
	gFlag := flagSet.String("g", "", "Path to the workflow graph .json file (shorthand).")
	testNameFlag := flagSet.String("test-name", "", "Name for this run; prefixes the results directory.")
	sessionFlag := flagSet.String("session-id", "", "Resume an existing session instead of creating one.")
	resultsDirFlag := flagSet.String("results-dir", "", "Base directory for per-session results.")
	archiveDirFlag := flagSet.String("archive-dir", "", "Directory for the file archive backend.")
	driverFlag := flagSet.String("driver-url", "", "Base URL of the browser driver service. Empty simulates actions.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Load and print the graph without executing any phase.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	graphPath := ""
	if *graphFlag != "" {
		graphPath = *graphFlag
	} else if *gFlag != "" {
		graphPath = *gFlag
	} else if flagSet.NArg() > 0 {
		graphPath = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", graphPath)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:      *configFlag,
		GraphPath:       graphPath,
		TestName:        *testNameFlag,
		SessionID:       *sessionFlag,
		ResultsDir:      *resultsDirFlag,
		ArchiveDir:      *archiveDirFlag,
		DriverURL:       *driverFlag,
		DryRun:          *dryRunFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
