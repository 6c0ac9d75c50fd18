package transport

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	// DefaultBaseURL targets the hosted processor API.
	DefaultBaseURL = "https://api.nutrient.io"

	// DefaultTimeout allows long-running conversions to complete.
	DefaultTimeout = 5 * time.Minute

	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
	defaultUserAgent  = "nutrient-dws-go/0.9.0"
)

// Config configures the HTTP transport.
type Config struct {
	// BaseURL is the processor API root, without a trailing slash.
	BaseURL string

	// APIKey is sent as a bearer token on every request.
	APIKey string

	// Timeout bounds a single request, including body download.
	Timeout time.Duration

	// MaxRetries bounds retransmissions of retryable failures
	// (connection errors and 429/502/503/504 responses).
	MaxRetries int

	// RetryDelay is the initial backoff interval between retries.
	RetryDelay time.Duration

	// UserAgent overrides the default client identification header.
	UserAgent string
}

// DefaultConfig returns a Config with production defaults. APIKey must
// still be supplied.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: defaultMaxRetries,
		RetryDelay: defaultRetryDelay,
		UserAgent:  defaultUserAgent,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxRetries, validation.Min(0)),
	)
}

// newHTTPClient builds the pooled HTTP client used for all requests.
func (c Config) newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: c.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
