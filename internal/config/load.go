package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/phasegridgo/internal/ctxlog"
)

// hclConfigFile represents the top-level structure of a workflow config
// file for decoding.
type hclConfigFile struct {
	Workflow *hclWorkflow `hcl:"workflow,block"`
}

// hclWorkflow mirrors a `workflow "<name>" { ... }` block. All attributes
// are optional; unset ones keep their defaults.
type hclWorkflow struct {
	Name string `hcl:"name,label"`

	GraphPath         *string `hcl:"graph_path,optional"`
	ResultsDir        *string `hcl:"results_dir,optional"`
	ArchiveBackend    *string `hcl:"archive_backend,optional"`
	ArchiveDir        *string `hcl:"archive_dir,optional"`
	RedisAddr         *string `hcl:"redis_addr,optional"`
	DriverURL         *string `hcl:"driver_url,optional"`
	MaxActiveSessions *int    `hcl:"max_active_sessions,optional"`
	LogLevel          *string `hcl:"log_level,optional"`
	LogFormat         *string `hcl:"log_format,optional"`
}

// envEvalContext exposes the process environment to config expressions as
// the `env` object.
func envEvalContext() *hcl.EvalContext {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

// Load parses the workflow config file at path and merges it over the
// defaults. It does not validate; callers apply their own overrides first
// and then call Validate.
func Load(ctx context.Context, path string) (Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Default()

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var parsed hclConfigFile
	diags = gohcl.DecodeBody(hclFile.Body, envEvalContext(), &parsed)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	if parsed.Workflow == nil {
		logger.Warn("Config file has no workflow block, using defaults.", "path", path)
		return cfg, nil
	}

	wf := parsed.Workflow
	if wf.Name != "" {
		cfg.Name = wf.Name
	}
	setString(&cfg.GraphPath, wf.GraphPath)
	setString(&cfg.ResultsDir, wf.ResultsDir)
	setString(&cfg.ArchiveBackend, wf.ArchiveBackend)
	setString(&cfg.ArchiveDir, wf.ArchiveDir)
	setString(&cfg.RedisAddr, wf.RedisAddr)
	setString(&cfg.DriverURL, wf.DriverURL)
	if wf.MaxActiveSessions != nil {
		cfg.MaxActiveSessions = *wf.MaxActiveSessions
	}
	setString(&cfg.LogLevel, wf.LogLevel)
	setString(&cfg.LogFormat, wf.LogFormat)

	logger.Debug("Workflow config loaded.", "path", path, "workflow", cfg.Name)
	return cfg, nil
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}
