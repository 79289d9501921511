package muspy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestCall_StatusClassification tests that every non-2xx status maps to its
// error category.
func TestCall_StatusClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantKind   error
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, wantKind: ErrAuthenticationFailed},
		{name: "forbidden", statusCode: http.StatusForbidden, wantKind: ErrAuthenticationFailed},
		{name: "not found", statusCode: http.StatusNotFound, wantKind: ErrNotFound},
		{name: "gone", statusCode: http.StatusGone, wantKind: ErrGone},
		{name: "bad request", statusCode: http.StatusBadRequest, wantKind: ErrRemote},
		{name: "server error", statusCode: http.StatusInternalServerError, wantKind: ErrRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "diagnostic text", tt.statusCode)
			}))

			_, err := client.call(context.Background(), request{method: http.MethodGet, path: "/user", requiresAuth: true})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("expected %v, got %v", tt.wantKind, err)
			}
			if !errors.Is(err, &APIError{StatusCode: tt.statusCode}) {
				t.Errorf("expected error to match status %d", tt.statusCode)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if !strings.Contains(apiErr.Body, "diagnostic text") {
				t.Errorf("expected body to carry diagnostics, got %q", apiErr.Body)
			}
			if apiErr.Method != http.MethodGet || apiErr.Path != "/user" {
				t.Errorf("unexpected request in error: %s %s", apiErr.Method, apiErr.Path)
			}
			if !strings.Contains(err.Error(), "diagnostic text") {
				t.Errorf("expected message to include diagnostics, got %q", err.Error())
			}
		})
	}
}

// TestCall_Headers tests request construction.
func TestCall_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT request, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("expected form Content-Type, got %s", ct)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("expected Accept application/json, got %s", accept)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != testEmail || pass != testPassword {
			t.Errorf("expected basic auth for %s", testEmail)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.PostForm.Get("notify_album"); got != "1" {
			t.Errorf("expected notify_album=1, got %q", got)
		}
		if r.URL.EscapedPath() != "/api/1/user/u%201" {
			t.Errorf("expected escaped user id in path, got %s", r.URL.EscapedPath())
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Email:    testEmail,
		Password: testPassword,
		BaseURL:  server.URL + "/api/1/",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	form := UserUpdate{Album: ptr(true)}.form()
	if _, err := client.call(context.Background(), request{
		method:       http.MethodPut,
		path:         joinPath("user", "u 1"),
		form:         form,
		requiresAuth: true,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestCall_TransportError tests connection failures.
func TestCall_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(Config{BaseURL: url})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.Artists().Get(context.Background(), "abc")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if transportErr.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", transportErr.Method)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("transport failure must not be an APIError")
	}
}

// TestCall_Timeout tests that a slow service surfaces as a timeout.
func TestCall_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.Artists().Get(context.Background(), "abc")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if !transportErr.Timeout() {
		t.Errorf("expected timeout, got %v", transportErr.Err)
	}
}

// TestCall_NoRetry tests that one failure is one request.
func TestCall_NoRetry(t *testing.T) {
	client, log := newTestClient(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))

	_, err := client.Releases().Get(context.Background(), "r1")
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if log.Len() != 1 {
		t.Errorf("expected exactly 1 request, got %d", log.Len())
	}
}

// TestCall_TruncatesErrorBody tests the diagnostics bound.
func TestCall_TruncatesErrorBody(t *testing.T) {
	client, _ := newTestClient(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 3*maxErrorBody)))
	}))

	_, err := client.Releases().Get(context.Background(), "r1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if len(apiErr.Body) != maxErrorBody {
		t.Errorf("expected body of %d bytes, got %d", maxErrorBody, len(apiErr.Body))
	}
}

// TestCall_MalformedResponse tests that undecodable bodies are reported.
func TestCall_MalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))

	_, err := client.Releases().Get(context.Background(), "r1")
	if err == nil || !strings.Contains(err.Error(), "failed to parse response") {
		t.Errorf("expected parse error, got %v", err)
	}
}

// TestCall_RateLimit tests that a cancelled wait on the limiter fails
// without a request.
func TestCall_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]string{"mbid": "abc", "name": "Abc"})
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, RequestsPerSecond: 0.001})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	// The first request consumes the only token.
	if _, err := client.Artists().Get(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Artists().Get(ctx, "abc")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
}

// TestNewClient tests configuration checks.
func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "anonymous", cfg: Config{}},
		{name: "credentials", cfg: Config{Email: testEmail, Password: testPassword}},
		{name: "email without password", cfg: Config{Email: testEmail}, wantErr: true},
		{name: "password without email", cfg: Config{Password: testPassword}, wantErr: true},
		{name: "negative timeout", cfg: Config{Timeout: -time.Second}, wantErr: true},
		{name: "negative rate", cfg: Config{RequestsPerSecond: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.baseURL != DefaultBaseURL {
				t.Errorf("expected default base URL, got %s", client.baseURL)
			}
			if client.HasCredentials() != (tt.cfg.Email != "") {
				t.Errorf("HasCredentials() = %v", client.HasCredentials())
			}
		})
	}
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// TestCall_DebugLogging tests that the password never reaches the logger.
func TestCall_DebugLogging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, userJSONBody(NotifySettings{}))
	}))
	defer server.Close()

	logger := &recordingLogger{}
	client, err := NewClient(Config{
		Email:    testEmail,
		Password: testPassword,
		BaseURL:  server.URL,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logger.lines) == 0 {
		t.Fatal("expected debug output")
	}
	for _, line := range logger.lines {
		if strings.Contains(line, testPassword) {
			t.Errorf("password logged: %q", line)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
