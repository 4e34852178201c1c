// Package wrk adapts the external wrk load generator to the harness: it
// renders the Lua script, invokes the process and parses its output into a
// benchmark result. Any failure along that path becomes a failed result;
// the campaign itself never aborts because one run went wrong.
package wrk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"

	"wrkbench/internal/benchmark"
)

// jsonMarker separates wrk's human-readable output from the summary JSON
// emitted by the injected done() function.
const jsonMarker = "JSON"

// execCommandContext allows mocking the wrk invocation in tests.
var execCommandContext = exec.CommandContext

// Options configures an Executor beyond the target URL.
type Options struct {
	// Request shapes the generated Lua request() function.
	Request Request
	// UserScript is an optional Lua file used instead of the generated
	// request(); done() is still appended.
	UserScript string
	// Binary is the wrk executable, "wrk" by default.
	Binary string
	Logger *slog.Logger
}

// Executor runs wrk against a fixed target URL.
type Executor struct {
	target     *url.URL
	request    Request
	userScript string
	binary     string
	logger     *slog.Logger
}

// NewExecutor validates the target URL and builds an executor. A malformed
// URL is a configuration error and fails construction.
func NewExecutor(target string, opts Options) (*Executor, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing target url %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("target url %q must use http or https", target)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("target url %q has no host", target)
	}
	if opts.Binary == "" {
		opts.Binary = "wrk"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Executor{
		target:     u,
		request:    opts.Request,
		userScript: opts.UserScript,
		binary:     opts.Binary,
		logger:     opts.Logger,
	}, nil
}

// Execute runs wrk with the given profile and returns the parsed result.
// Success is left unset; the harness derives it. A timeout, if any, arrives
// through ctx.
func (e *Executor) Execute(ctx context.Context, cfg benchmark.Config) benchmark.Result {
	script, cleanup, err := renderScript(e.target.Path, e.request, e.userScript)
	if err != nil {
		e.logger.Error("script generation failed", "error", err)
		return benchmark.Fail(err.Error())
	}
	defer cleanup()

	args := []string{
		"-t", fmt.Sprintf("%d", cfg.Threads),
		"-c", fmt.Sprintf("%d", cfg.Connections),
		"-d", fmt.Sprintf("%ds", int(cfg.Duration.Seconds())),
		"-s", script,
		e.target.String(),
	}

	cmd := execCommandContext(ctx, e.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.logger.Error("wrk execution failed", "error", err, "stderr", stderr.String())
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		return benchmark.Fail(reason)
	}

	e.logger.Debug("wrk execution succeeded", "config", cfg.Key())
	return parseOutput(stdout.String())
}

// parseOutput extracts the JSON summary behind the marker and decodes it.
func parseOutput(output string) benchmark.Result {
	_, payload, found := strings.Cut(output, jsonMarker)
	if !found {
		return benchmark.Fail("wrk returned no JSON summary")
	}
	var res benchmark.Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &res); err != nil {
		return benchmark.Fail(fmt.Sprintf("decoding wrk JSON summary: %v", err))
	}
	return res
}
