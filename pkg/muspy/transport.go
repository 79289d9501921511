package muspy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBody bounds how much of an error response is kept as diagnostics.
const maxErrorBody = 4 << 10

// request describes a single API call.
type request struct {
	method       string
	path         string     // Joined path below the base URL, identifiers already escaped
	query        url.Values // Query parameters, GET only
	form         url.Values // Form-encoded body, PUT/POST only
	requiresAuth bool
}

// joinPath builds an API path from fixed segments and caller identifiers.
// Identifiers are escaped but not validated; the service answers 404 for
// malformed ones.
func joinPath(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// call performs exactly one HTTP request against the muspy API and returns
// the raw response body.
//
// It handles:
// - Request construction with basic auth and form bodies
// - Status code classification into *APIError
// - Network failures as *TransportError
//
// There is no retry: one failed request is one reported failure.
func (c *Client) call(ctx context.Context, r request) ([]byte, error) {
	if r.requiresAuth && !c.HasCredentials() {
		return nil, ErrNoCredentials
	}

	fullURL := c.baseURL + r.path
	if len(r.query) > 0 {
		fullURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.form != nil {
		body = strings.NewReader(r.form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("muspy: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "muspy-go/1.0")
	if r.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if r.requiresAuth {
		req.SetBasicAuth(c.email, c.password)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: r.method, URL: fullURL, Err: err}
		}
	}

	c.logDebugf("muspy: %s %s", r.method, fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: r.method, URL: fullURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: r.method, URL: fullURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     r.method,
			Path:       r.path,
			Body:       string(data),
		}
		c.logDebugf("muspy: %s %s failed: %v", r.method, r.path, apiErr)
		return nil, apiErr
	}

	c.logDebugf("muspy: %s %s succeeded (%d bytes)", r.method, r.path, len(data))
	return data, nil
}

// callJSON performs a request and decodes the JSON response into v.
func (c *Client) callJSON(ctx context.Context, r request, v interface{}) error {
	data, err := c.call(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("muspy: failed to parse response of %s %s: %w", r.method, r.path, err)
	}
	return nil
}
