// Package webdriver implements the action executor against an external
// browser-agent service over HTTP. The agent owns the real browser; this
// side only posts action names and interprets the structured reply.
package webdriver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"

	"github.com/vk/phasegridgo/internal/ctxlog"
)

// defaultTimeout bounds a single action round trip. Browser actions poll
// real pages, so this is generous; the agent enforces its own per-action
// limits well below it.
const defaultTimeout = 5 * time.Minute

// request is the body posted to the agent's /actions endpoint.
type request struct {
	Action    string `json:"action"`
	SessionID string `json:"session_id,omitempty"`
}

// response is the agent's structured reply.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Executor invokes browser actions on a remote agent.
type Executor struct {
	client    *resty.Client
	sessionID string
}

// Option configures an Executor.
type Option func(*Executor)

// WithSessionID tags every action with the owning session so the agent can
// keep per-session browser state apart.
func WithSessionID(id string) Option {
	return func(e *Executor) { e.sessionID = id }
}

// WithTimeout overrides the per-action round-trip timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.client.SetTimeout(d) }
}

// New returns an executor posting to the agent at baseURL.
func New(baseURL string, opts ...Option) *Executor {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout)

	e := &Executor{client: client}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the underlying HTTP client.
func (e *Executor) Close() error {
	return e.client.Close()
}

// Invoke posts the action to the agent and maps every failure mode,
// transport errors included, onto a false outcome with a message. The
// engine's contract forbids action invocation from raising.
func (e *Executor) Invoke(ctx context.Context, name string) (bool, string) {
	logger := ctxlog.FromContext(ctx).With("action", name)
	logger.Debug("Invoking browser action.")

	var out response
	res, err := e.client.R().
		SetContext(ctx).
		SetBody(request{Action: name, SessionID: e.sessionID}).
		SetResult(&out).
		SetError(&out).
		Post("/actions")
	if err != nil {
		logger.Warn("Browser action transport failed.", "error", err)
		return false, fmt.Sprintf("action %q failed: %v", name, err)
	}

	if res.StatusCode() == http.StatusNotFound {
		return false, fmt.Sprintf("action %q not found on browser agent", name)
	}
	if !res.IsSuccess() {
		msg := out.Message
		if msg == "" {
			msg = res.Status()
		}
		return false, fmt.Sprintf("action %q failed: %s", name, msg)
	}

	logger.Debug("Browser action finished.", "success", out.Success)
	return out.Success, out.Message
}
