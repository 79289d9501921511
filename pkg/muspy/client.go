package muspy

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Config holds client configuration.
type Config struct {
	Email      string        // Optional: account email, required for authenticated calls
	Password   string        // Optional: account password, required for authenticated calls
	HTTPClient *http.Client  // Optional: HTTP client (defaults to one with Timeout applied)
	BaseURL    string        // Optional: Base URL for API (defaults to muspy.com, used for testing)
	Timeout    time.Duration // Optional: request timeout when HTTPClient is nil (defaults to 30s)
	Logger     Logger        // Optional: Logger interface for debug logging

	// RequestsPerSecond caps the request rate of this client. Zero means
	// unlimited.
	RequestsPerSecond float64
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for muspy API operations.
//
// A Client owns its credentials and HTTP session. It performs no caching and
// never retries a failed request.
type Client struct {
	email      string
	password   string
	httpClient *http.Client
	baseURL    string
	logger     Logger
	limiter    *rate.Limiter

	artists  *ArtistService
	releases *ReleaseService
	users    *UserService
}

const (
	// DefaultBaseURL is the default muspy API endpoint.
	DefaultBaseURL = "https://muspy.com/api/1"

	// DefaultTimeout is applied to the default HTTP client.
	DefaultTimeout = 30 * time.Second
)

// NewClient creates a new muspy API client.
//
// Credentials are optional: anonymous clients can look up artists and
// releases. Returns an error if the configuration is inconsistent.
func NewClient(cfg Config) (*Client, error) {
	if (cfg.Email == "") != (cfg.Password == "") {
		return nil, fmt.Errorf("muspy: Email and Password must be set together")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("muspy: Timeout must not be negative")
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("muspy: RequestsPerSecond must not be negative")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		email:      cfg.Email,
		password:   cfg.Password,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	c.artists = &ArtistService{client: c}
	c.releases = &ReleaseService{client: c}
	c.users = &UserService{client: c}

	return c, nil
}

// Artists returns the artist and subscription service.
func (c *Client) Artists() *ArtistService {
	return c.artists
}

// Releases returns the release listing service.
func (c *Client) Releases() *ReleaseService {
	return c.releases
}

// Users returns the user account service.
func (c *Client) Users() *UserService {
	return c.users
}

// Email returns the account email the client authenticates with.
func (c *Client) Email() string {
	return c.email
}

// HasCredentials reports whether authenticated calls are possible.
func (c *Client) HasCredentials() bool {
	return c.email != "" && c.password != ""
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
