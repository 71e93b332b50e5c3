package scrapinghub

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/davidxi/scrapinghub-go/internal/httpx"
	"github.com/davidxi/scrapinghub-go/internal/version"
)

// Default configuration values
const (
	DefaultBaseURL    = "https://dash.scrapinghub.com/api/"
	DefaultStorageURL = "https://storage.scrapinghub.com/"
	DefaultTimeout    = 30 * time.Second

	// APIKeyEnv is read when no API key is configured explicitly.
	APIKeyEnv = "SH_APIKEY"
)

// Item reader defaults.
const (
	MaxRetries    = httpx.DefaultMaxAttempts
	RetryInterval = httpx.DefaultRetryInterval
)

// RetryConfig configures the resumable item reader.
type RetryConfig struct {
	// MaxRetries is the total number of read attempts.
	MaxRetries int
	// Interval is the pause after a failed attempt.
	Interval time.Duration
	// Factor grows the pause per attempt. Zero or one keeps it fixed.
	Factor float64
	// MaxInterval caps the grown pause.
	MaxInterval time.Duration
}

// DefaultRetryConfig returns five attempts sixty seconds apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: MaxRetries,
		Interval:   RetryInterval,
		Factor:     1,
	}
}

// Logger is the interface for client logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// LoggerFunc is a function adapter for Logger. It receives messages of
// both levels.
type LoggerFunc func(msg string, keysAndValues ...any)

// Debug implements Logger.
func (f LoggerFunc) Debug(msg string, keysAndValues ...any) {
	f(msg, keysAndValues...)
}

// Error implements Logger.
func (f LoggerFunc) Error(msg string, keysAndValues ...any) {
	f(msg, keysAndValues...)
}

type logrusLogger struct {
	l logrus.FieldLogger
}

// NewLogrusLogger adapts a logrus logger. Key/value pairs become fields.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLogger{l: l}
}

func (l *logrusLogger) Debug(msg string, keysAndValues ...any) {
	l.l.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l *logrusLogger) Error(msg string, keysAndValues ...any) {
	l.l.WithFields(toFields(keysAndValues)).Error(msg)
}

func toFields(keysAndValues []any) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// Config holds the client configuration.
type Config struct {
	// APIKey authenticates every request. Falls back to $SH_APIKEY.
	APIKey string
	// Password is rejected: only API key authentication is supported.
	Password string

	// BaseURL is the dash API endpoint.
	BaseURL string
	// StorageURL is the items storage endpoint.
	StorageURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration
	// ItemsRetry configures Job.Items.
	ItemsRetry RetryConfig

	// Headers are additional headers to include in all requests.
	Headers map[string]string
	// UserAgent is the custom user agent string.
	UserAgent string
	// Logger receives debug and error messages.
	Logger Logger
}

// Option is a functional option for configuring the connection.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithPassword sets a password. Password authentication is not supported;
// NewConnection fails when one is set.
func WithPassword(password string) Option {
	return func(c *Config) {
		c.Password = password
	}
}

// WithBaseURL sets the dash API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithStorageURL sets the items storage endpoint.
func WithStorageURL(url string) Option {
	return func(c *Config) {
		c.StorageURL = url
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithItemsRetry sets the item reader retry configuration.
func WithItemsRetry(cfg RetryConfig) Option {
	return func(c *Config) {
		c.ItemsRetry = cfg
	}
}

// WithHeaders sets additional headers for all requests.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range headers {
			c.Headers[k] = v
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithDebug enables debug logging to stderr.
func WithDebug(enabled bool) Option {
	return func(c *Config) {
		if !enabled {
			return
		}
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		c.Logger = NewLogrusLogger(l.WithField("component", "scrapinghub"))
	}
}

// newDefaultConfig creates a new config with default values.
func newDefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		StorageURL: DefaultStorageURL,
		Timeout:    DefaultTimeout,
		ItemsRetry: DefaultRetryConfig(),
		Headers:    make(map[string]string),
		UserAgent:  version.UserAgent(),
		Logger:     NewLogrusLogger(logrus.StandardLogger().WithField("component", "scrapinghub")),
	}
}

// resolveConfig applies options and resolves derived values.
func resolveConfig(opts ...Option) *Config {
	cfg := newDefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnv)
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return cfg
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
