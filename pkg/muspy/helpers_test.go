package muspy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

const (
	testEmail    = "me@example.com"
	testPassword = "secret"
	testUserID   = "u1"
)

// recordedCall is a request seen by the test server.
type recordedCall struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	User   string
}

// callLog records every request that reaches the test server.
type callLog struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (l *callLog) add(c recordedCall) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
}

// Len returns the number of recorded requests.
func (l *callLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// All returns a copy of the recorded requests.
func (l *callLog) All() []recordedCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedCall(nil), l.calls...)
}

// Count returns how many requests matched method and path.
func (l *callLog) Count(method, path string) int {
	n := 0
	for _, c := range l.All() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// newTestClient starts an httptest server running handler and returns a
// client pointed at it. With auth set the client carries test credentials.
func newTestClient(t *testing.T, auth bool, handler http.Handler) (*Client, *callLog) {
	t.Helper()

	log := &callLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		user, _, _ := r.BasicAuth()
		log.add(recordedCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Form:   r.PostForm,
			User:   user,
		})
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := Config{BaseURL: server.URL}
	if auth {
		cfg.Email = testEmail
		cfg.Password = testPassword
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client, log
}

// writeJSON encodes v as the response body.
func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to write response body: %v", err)
	}
}

// releaseJSON builds n wire releases of artistID numbered from start.
func releaseJSON(artistID string, start, n int) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, n)
	for i := start; i < start+n; i++ {
		out = append(out, map[string]interface{}{
			"mbid": fmt.Sprintf("release-%d", i),
			"name": fmt.Sprintf("Release %d", i),
			"type": "Album",
			"date": "2013-05-20",
			"artist": map[string]interface{}{
				"mbid":      artistID,
				"name":      "Artist " + artistID,
				"sort_name": "Artist, " + artistID,
			},
		})
	}
	return out
}

// userJSONBody is a wire profile for testUserID.
func userJSONBody(settings NotifySettings) map[string]interface{} {
	return map[string]interface{}{
		"userid":             testUserID,
		"email":              testEmail,
		"notify":             settings.Notify,
		"notify_album":       settings.Album,
		"notify_single":      settings.Single,
		"notify_ep":          settings.EP,
		"notify_live":        settings.Live,
		"notify_compilation": settings.Compilation,
		"notify_remix":       settings.Remix,
		"notify_other":       settings.Other,
	}
}
