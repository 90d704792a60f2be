package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/phasegridgo/internal/action"
	"github.com/vk/phasegridgo/internal/action/webdriver"
	"github.com/vk/phasegridgo/internal/archive"
	"github.com/vk/phasegridgo/internal/archive/filearchive"
	"github.com/vk/phasegridgo/internal/archive/redisarchive"
	"github.com/vk/phasegridgo/internal/config"
	"github.com/vk/phasegridgo/internal/ctxlog"
	"github.com/vk/phasegridgo/internal/graph"
	"github.com/vk/phasegridgo/internal/handler"
	"github.com/vk/phasegridgo/internal/sessionstore"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	entry  *Config
	cfg    config.Config

	graph    *graph.Graph
	registry *handler.Registry
	store    *sessionstore.Store
	driver   *webdriver.Executor
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, graph,
// registry, and session store. Startup failures are programmer or
// deployment errors, so it panics; entrypoints recover and translate the
// panic into an exit code. A nil exec selects the executor from the
// config: the browser driver when driver_url is set, simulated actions
// otherwise.
func NewApp(outW io.Writer, entry *Config, exec action.Executor) *App {
	logger := newLogger(entry.LogLevel, entry.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfg := resolveConfig(ctx, entry)
	if err := cfg.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	logger.Debug("Configuration resolved.", "workflow", cfg.Name, "archiveBackend", cfg.ArchiveBackend)

	g, err := loadGraph(cfg.GraphPath)
	if err != nil {
		panic(fmt.Errorf("failed to load workflow graph: %w", err))
	}
	logger.Debug("Workflow graph loaded.", "nodes", g.Len())

	arch, err := newArchive(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("failed to open session archive: %w", err))
	}

	store, err := sessionstore.New(arch, cfg.ResultsDir)
	if err != nil {
		panic(fmt.Errorf("failed to create session store: %w", err))
	}

	a := &App{
		outW:   outW,
		logger: logger,
		entry:  entry,
		cfg:    cfg,
		graph:  g,
		store:  store,
	}

	if exec == nil {
		if cfg.DriverURL != "" {
			a.driver = webdriver.New(cfg.DriverURL)
			exec = a.driver
			logger.Debug("Browser driver executor configured.", "driverURL", cfg.DriverURL)
		} else {
			exec = &action.Script{}
			logger.Debug("No driver URL configured, actions will be simulated.")
		}
	}
	a.registry = handler.NewDefaultRegistry(exec)
	logger.Debug("Phase handlers registered.", "types", len(a.registry.Types()))

	return a
}

// resolveConfig loads the config file when one is given and layers the
// entrypoint overrides on top.
func resolveConfig(ctx context.Context, entry *Config) config.Config {
	cfg := config.Default()
	if entry.ConfigPath != "" {
		loaded, err := config.Load(ctx, entry.ConfigPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}
	if entry.GraphPath != "" {
		cfg.GraphPath = entry.GraphPath
	}
	if entry.ResultsDir != "" {
		cfg.ResultsDir = entry.ResultsDir
	}
	if entry.ArchiveDir != "" {
		cfg.ArchiveDir = entry.ArchiveDir
	}
	if entry.DriverURL != "" {
		cfg.DriverURL = entry.DriverURL
	}
	if entry.LogLevel != "" {
		cfg.LogLevel = entry.LogLevel
	}
	if entry.LogFormat != "" {
		cfg.LogFormat = entry.LogFormat
	}
	return cfg
}

// loadGraph reads the graph file at path, or falls back to the built-in
// QA workflow when no path is configured.
func loadGraph(path string) (*graph.Graph, error) {
	if path == "" {
		return graph.BuiltinQA(), nil
	}
	return graph.Load(path)
}

// newArchive constructs the configured archive backend.
func newArchive(ctx context.Context, cfg config.Config) (archive.Store, error) {
	switch cfg.ArchiveBackend {
	case config.BackendRedis:
		return redisarchive.New(ctx, cfg.RedisAddr)
	default:
		return filearchive.New(cfg.ArchiveDir)
	}
}

// Graph returns the application's workflow graph. This is primarily for
// testing.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

// Store returns the application's session store. This is primarily for
// testing.
func (a *App) Store() *sessionstore.Store {
	return a.store
}

// Close releases resources held by the app, such as the driver's HTTP
// client.
func (a *App) Close() error {
	if a.driver != nil {
		return a.driver.Close()
	}
	return nil
}
