// Package httpx provides the HTTP request executor behind the Scrapinghub client.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/davidxi/scrapinghub-go/internal/version"
)

// DefaultTimeout is used when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Transport performs single HTTP round trips. It never retries.
type Transport struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	logger    Logger
}

// Logger is an interface for debug logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

// Config holds configuration for the transport.
type Config struct {
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
	Logger    Logger
}

// NewTransport creates a new Transport with the given configuration.
func NewTransport(cfg Config) *Transport {
	if cfg.UserAgent == "" {
		cfg.UserAgent = version.UserAgent()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Transport{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
		logger:    cfg.Logger,
	}
}

// File is a multipart file attached to a POST request.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

// Request represents an HTTP request to be made.
type Request struct {
	Method string
	// URL is absolute and may carry credentials in its userinfo.
	URL string
	// Query is an encoded query string appended to URL.
	Query string
	// Form is an encoded form body. It becomes multipart fields when Files is set.
	Form    string
	Files   []File
	Headers map[string]string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Do executes req once. Non-2xx responses are returned, not treated as
// errors; interpreting them is left to Decode.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := req.URL
	if req.Query != "" {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + req.Query
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", t.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	t.log("executing request", "method", req.Method, "url", Redact(fullURL))
	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		switch ctx.Err() {
		case context.DeadlineExceeded:
			return nil, NewTimeoutError(t.client.Timeout, ctx.Err())
		case context.Canceled:
			return nil, errors.Wrap(ctx.Err(), "request canceled")
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, NewTimeoutError(t.client.Timeout, err)
		}
		return nil, NewNetworkError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError(fmt.Errorf("failed to read response body: %w", err))
	}

	t.log("received response", "status", httpResp.StatusCode, "bytes", len(respBody))

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// encodeBody builds the request body and its content type.
func encodeBody(req *Request) (io.Reader, string, error) {
	if len(req.Files) == 0 {
		if req.Method == http.MethodGet || req.Form == "" {
			return nil, "", nil
		}
		return strings.NewReader(req.Form), "application/x-www-form-urlencoded", nil
	}

	fields, err := url.ParseQuery(req.Form)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse form fields: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}
	for _, f := range req.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		} else {
			h.Set("Content-Type", "application/octet-stream")
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// Redact hides credentials carried in a URL's userinfo or apikey parameter.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		u.User = url.User("xxxxx")
	}
	if q := u.Query(); q.Get("apikey") != "" {
		q.Set("apikey", "xxxxx")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// log logs a debug message.
func (t *Transport) log(msg string, keysAndValues ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, keysAndValues...)
	}
}
