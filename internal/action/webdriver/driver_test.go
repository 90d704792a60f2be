package webdriver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke(t *testing.T) {
	t.Run("successful action", func(t *testing.T) {
		var got request
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/actions", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response{Success: true, Message: "logged in"})
		}))
		defer srv.Close()

		e := New(srv.URL, WithSessionID("qa-session-1"))
		defer e.Close()

		ok, msg := e.Invoke(context.Background(), "execute_authentication_phase")
		assert.True(t, ok)
		assert.Equal(t, "logged in", msg)
		assert.Equal(t, "execute_authentication_phase", got.Action)
		assert.Equal(t, "qa-session-1", got.SessionID)
	})

	t.Run("agent reports failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response{Success: false, Message: "element not found"})
		}))
		defer srv.Close()

		e := New(srv.URL)
		defer e.Close()

		ok, msg := e.Invoke(context.Background(), "validate_wireframes")
		assert.False(t, ok)
		assert.Equal(t, "element not found", msg)
	})

	t.Run("unknown action", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		e := New(srv.URL)
		defer e.Close()

		ok, msg := e.Invoke(context.Background(), "no_such_action")
		assert.False(t, ok)
		assert.Contains(t, msg, "not found")
	})

	t.Run("server error carries the agent message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(response{Success: false, Message: "browser crashed"})
		}))
		defer srv.Close()

		e := New(srv.URL)
		defer e.Close()

		ok, msg := e.Invoke(context.Background(), "monitor_build_process")
		assert.False(t, ok)
		assert.Contains(t, msg, "browser crashed")
	})

	t.Run("transport failure never raises", func(t *testing.T) {
		e := New("http://127.0.0.1:1", WithTimeout(500*time.Millisecond))
		defer e.Close()

		ok, msg := e.Invoke(context.Background(), "initialize_browser")
		assert.False(t, ok)
		assert.Contains(t, msg, "initialize_browser")
	})
}
