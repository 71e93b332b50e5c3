package scrapinghub

import (
	"context"
	"net/http"

	"github.com/davidxi/scrapinghub-go/internal/httpx"
)

// Response formats.
type Format = httpx.Format

const (
	FormatJSON = httpx.FormatJSON
	FormatJL   = httpx.FormatJL
)

type (
	// Params are query (GET) or form (POST) parameters.
	Params = httpx.Params
	// Result is a decoded response.
	Result = httpx.Result
	// Records is a restartable producer of JSON lines.
	Records = httpx.Records
	// RecordIterator walks the records of a jl response.
	RecordIterator = httpx.RecordIterator
	// File is a multipart file attached to a POST request.
	File = httpx.File
)

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers map[string]string
	raw     bool
	files   []File
}

// WithRequestHeaders adds headers to a single request.
func WithRequestHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// Raw returns the response body as text, skipping format validation and decoding.
func Raw() RequestOption {
	return func(o *requestOptions) {
		o.raw = true
	}
}

// WithFiles attaches files to a POST request, sending it as multipart/form-data.
func WithFiles(files ...File) RequestOption {
	return func(o *requestOptions) {
		o.files = append(o.files, files...)
	}
}

// Connection talks to the Scrapinghub API. It is safe for concurrent use
// and shared by every Project, JobSet and Job derived from it.
type Connection struct {
	cfg        *Config
	url        string
	storageURL string
	transport  *httpx.Transport
	itemsRetry *httpx.RetryPolicy
	logger     Logger
}

// NewConnection creates a connection with the given options.
func NewConnection(opts ...Option) (*Connection, error) {
	cfg := resolveConfig(opts...)

	if cfg.Password != "" {
		return nil, ErrPasswordUnsupported
	}
	if err := ValidateAPIKey(cfg.APIKey); err != nil {
		return nil, err
	}

	url, err := httpx.InjectCredential(cfg.BaseURL, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	transport := httpx.NewTransport(httpx.Config{
		UserAgent: cfg.UserAgent,
		Headers:   cfg.Headers,
		Timeout:   cfg.Timeout,
		Logger:    cfg.Logger,
	})

	return &Connection{
		cfg:        cfg,
		url:        url,
		storageURL: cfg.StorageURL,
		transport:  transport,
		itemsRetry: httpx.NewRetryPolicy(httpx.RetryConfig{
			MaxAttempts: cfg.ItemsRetry.MaxRetries,
			Interval:    cfg.ItemsRetry.Interval,
			Factor:      cfg.ItemsRetry.Factor,
			MaxInterval: cfg.ItemsRetry.MaxInterval,
		}),
		logger: cfg.Logger,
	}, nil
}

// APIKey returns the configured API key.
func (c *Connection) APIKey() string {
	return c.cfg.APIKey
}

// URL returns the base URL carrying the credential.
func (c *Connection) URL() string {
	return c.url
}

// StorageURL returns the items storage endpoint.
func (c *Connection) StorageURL() string {
	return c.storageURL
}

// String returns the connection description with the key masked.
func (c *Connection) String() string {
	return "Connection(" + httpx.Redact(c.url) + ")"
}

// BuildURL returns the endpoint of method in the given format.
func (c *Connection) BuildURL(method string, format Format) (string, error) {
	path, ok := apiMethods[method]
	if !ok {
		return "", httpx.NewUnknownMethodError(method)
	}
	return httpx.JoinURL(c.url, path+"."+string(format)), nil
}

// Get performs a GET request. method is a method name or an absolute URL.
func (c *Connection) Get(ctx context.Context, method string, format Format, params any, opts ...RequestOption) (*Result, error) {
	return c.do(ctx, http.MethodGet, method, format, params, opts)
}

// Post performs a POST request. method is a method name or an absolute URL.
func (c *Connection) Post(ctx context.Context, method string, format Format, params any, opts ...RequestOption) (*Result, error) {
	return c.do(ctx, http.MethodPost, method, format, params, opts)
}

func (c *Connection) do(ctx context.Context, httpMethod, method string, format Format, params any, opts []RequestOption) (*Result, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	target := method
	if !httpx.IsAbsoluteURL(method) {
		var err error
		if target, err = c.BuildURL(method, format); err != nil {
			return nil, err
		}
	}
	if !ro.raw && !format.Valid() {
		return nil, httpx.NewInvalidFormatError(string(format))
	}
	encoded, err := httpx.EncodeParams(params)
	if err != nil {
		return nil, err
	}

	req := &httpx.Request{
		Method:  httpMethod,
		URL:     target,
		Files:   ro.files,
		Headers: ro.headers,
	}
	if httpMethod == http.MethodGet {
		req.Query = encoded
	} else {
		req.Form = encoded
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return httpx.Decode(resp, format, ro.raw)
}

// Project returns a handle on a project. The project is not checked for
// existence.
func (c *Connection) Project(id string) *Project {
	return &Project{conn: c, id: id}
}

// ProjectIDs lists the ids of the projects the key can access.
func (c *Connection) ProjectIDs(ctx context.Context) ([]string, error) {
	result, err := c.Get(ctx, MethodListProjects, FormatJSON, nil)
	if err != nil {
		return nil, err
	}
	raw, _ := result.JSON()["projects"].([]any)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, idString(v))
	}
	return ids, nil
}
