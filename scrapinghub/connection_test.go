package scrapinghub

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidxi/scrapinghub-go/internal/testutil"
)

func newTestConnection(t *testing.T, ms *testutil.MockServer, opts ...Option) *Connection {
	t.Helper()
	base := []Option{
		WithAPIKey(testutil.APIKey),
		WithBaseURL(ms.Endpoint("api/")),
		WithStorageURL(ms.Endpoint("storage/")),
		WithItemsRetry(RetryConfig{MaxRetries: 5, Interval: time.Millisecond}),
		WithLogger(nopLogger{}),
	}
	conn, err := NewConnection(append(base, opts...)...)
	require.NoError(t, err)
	return conn
}

func TestNewConnection_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name:    "missing key",
			opts:    nil,
			wantErr: ErrNoAPIKey,
		},
		{
			name:    "url as key",
			opts:    []Option{WithAPIKey("https://dash.scrapinghub.com/api/")},
			wantErr: ErrAPIKeyIsURL,
		},
		{
			name:    "url as key ignores case",
			opts:    []Option{WithAPIKey("HTTP://example.com")},
			wantErr: ErrAPIKeyIsURL,
		},
		{
			name:    "password",
			opts:    []Option{WithAPIKey(testutil.APIKey), WithPassword("secret")},
			wantErr: ErrPasswordUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(APIKeyEnv, "")
			conn, err := NewConnection(tt.opts...)
			assert.Nil(t, conn)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewConnection_EnvFallback(t *testing.T) {
	t.Setenv(APIKeyEnv, testutil.APIKey)

	conn, err := NewConnection()
	require.NoError(t, err)
	assert.Equal(t, testutil.APIKey, conn.APIKey())
	assert.Equal(t, "https://"+testutil.APIKey+"@dash.scrapinghub.com/api/", conn.URL())
	assert.Equal(t, DefaultStorageURL, conn.StorageURL())
}

func TestNewConnection_InvalidBaseURL(t *testing.T) {
	_, err := NewConnection(WithAPIKey(testutil.APIKey), WithBaseURL("dash.scrapinghub.com/api"))
	assert.Error(t, err)
}

func TestConnection_BuildURL(t *testing.T) {
	for _, base := range []string{"https://dash.scrapinghub.com/api/", "https://dash.scrapinghub.com/api"} {
		conn, err := NewConnection(WithAPIKey(testutil.APIKey), WithBaseURL(base))
		require.NoError(t, err)

		got, err := conn.BuildURL(MethodJobsList, FormatJL)
		require.NoError(t, err)
		assert.Equal(t, "https://"+testutil.APIKey+"@dash.scrapinghub.com/api/jobs/list.jl", got)

		got, err = conn.BuildURL(MethodListProjects, FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "https://"+testutil.APIKey+"@dash.scrapinghub.com/api/scrapyd/listprojects.json", got)
	}
}

func TestConnection_BuildURLUnknownMethod(t *testing.T) {
	conn, err := NewConnection(WithAPIKey(testutil.APIKey))
	require.NoError(t, err)

	_, err = conn.BuildURL("nosuchmethod", FormatJSON)
	require.Error(t, err)
	assert.True(t, IsUnknownMethodError(err))
	assert.Contains(t, err.Error(), "Unknown method : nosuchmethod")
}

func TestConnection_ValidationBeforeRequest(t *testing.T) {
	ms := testutil.NewMockServer(t)
	conn := newTestConnection(t, ms)
	ctx := context.Background()

	_, err := conn.Get(ctx, "nosuchmethod", FormatJSON, nil)
	assert.True(t, IsUnknownMethodError(err), "got %v", err)

	_, err = conn.Post(ctx, "nosuchmethod", FormatJSON, Params{"a": 1})
	assert.True(t, IsUnknownMethodError(err), "got %v", err)

	_, err = conn.Get(ctx, MethodSpiders, Format("xml"), nil)
	assert.True(t, IsInvalidFormatError(err), "got %v", err)

	_, err = conn.Get(ctx, MethodSpiders, FormatJSON, []string{"project=1"})
	assert.True(t, IsUnsupportedParamsError(err), "got %v", err)

	_, err = conn.Get(ctx, MethodSpiders, FormatJSON, 42)
	assert.True(t, IsUnsupportedParamsError(err), "got %v", err)

	ms.AssertRequestCount(t, 0)
}

func TestConnection_GetJSON(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/api/spiders/list.json", http.StatusOK, map[string]any{
		"status":  "ok",
		"spiders": []any{map[string]any{"id": "quotes"}},
	})
	conn := newTestConnection(t, ms)

	result, err := conn.Get(context.Background(), MethodSpiders, FormatJSON, Params{"project": 123})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.JSON()["status"])

	req := ms.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "project=123", req.RawQuery)
	assert.Equal(t, testutil.APIKey, req.Username)
	assert.Contains(t, req.Headers.Get("User-Agent"), "scrapinghub-go")
}

func TestConnection_JSONEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		body   string
		check  func(error) bool
		wantIn string
	}{
		{
			name:   "error status",
			code:   http.StatusOK,
			body:   `{"status":"error","message":"project not found"}`,
			check:  IsStatusError,
			wantIn: "project not found",
		},
		{
			name:   "badrequest status",
			code:   http.StatusBadRequest,
			body:   `{"status":"badrequest","message":"missing spider"}`,
			check:  IsStatusError,
			wantIn: "missing spider",
		},
		{
			name:   "unknown status",
			code:   http.StatusOK,
			body:   `{"status":"weird"}`,
			check:  IsUnknownStatusError,
			wantIn: "weird",
		},
		{
			name:   "missing status",
			code:   http.StatusOK,
			body:   `{"projects":[]}`,
			check:  IsMissingStatusError,
			wantIn: "does not contain status",
		},
		{
			name:   "error page",
			code:   http.StatusInternalServerError,
			body:   `<html>oops</html>`,
			check:  IsHTTPError,
			wantIn: "500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := testutil.NewMockServer(t)
			ms.HandleText(http.MethodGet, "/api/scrapyd/listprojects.json", tt.code, tt.body)
			conn := newTestConnection(t, ms)

			result, err := conn.Get(context.Background(), MethodListProjects, FormatJSON, nil)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type %T: %v", err, err)
			assert.Contains(t, err.Error(), tt.wantIn)
		})
	}
}

func TestConnection_Raw(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleText(http.MethodGet, "/api/log.txt", http.StatusInternalServerError, "plain text")
	conn := newTestConnection(t, ms)

	result, err := conn.Get(context.Background(), MethodLog, Format("txt"), nil, Raw())
	require.NoError(t, err)
	assert.True(t, result.IsRaw())
	assert.Equal(t, "plain text", result.Text())
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
}

func TestConnection_GetJL(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleText(http.MethodGet, "/api/jobs/list.jl", http.StatusOK, "{\"status\":\"ok\"}\r\n\n{\"id\":\"1/2/3\",\"items\":10}\n")
	conn := newTestConnection(t, ms)

	result, err := conn.Get(context.Background(), MethodJobsList, FormatJL, "project=1&count=1")
	require.NoError(t, err)
	assert.Equal(t, "project=1&count=1", ms.LastRequest().RawQuery)

	records, err := result.Records().All()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1/2/3", records[1].(map[string]any)["id"])

	again, err := result.Records().All()
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestConnection_GetJLHTTPError(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleText(http.MethodGet, "/api/jobs/list.jl", http.StatusForbidden, `{"status":"error","message":"denied"}`)
	conn := newTestConnection(t, ms)

	_, err := conn.Get(context.Background(), MethodJobsList, FormatJL, nil)
	require.Error(t, err)
	assert.True(t, IsHTTPError(err))

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "denied", apiErr.Message)
}

func TestConnection_PostForm(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodPost, "/api/jobs/update.json", http.StatusOK, map[string]any{"status": "ok", "count": 1})
	conn := newTestConnection(t, ms)

	_, err := conn.Post(context.Background(), MethodJobsUpdate, FormatJSON,
		Params{"project": "1", "add_tag": []string{"a", "b"}},
		WithRequestHeaders(map[string]string{"X-Trace": "abc"}),
	)
	require.NoError(t, err)

	req := ms.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "1", req.Form.Get("project"))
	assert.Equal(t, []string{"a", "b"}, req.Form["add_tag"])
	assert.Equal(t, "abc", req.Headers.Get("X-Trace"))
	assert.Empty(t, req.RawQuery)
}

func TestConnection_AbsoluteURL(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/custom/endpoint", http.StatusOK, map[string]any{"status": "ok"})
	conn := newTestConnection(t, ms)

	_, err := conn.Get(context.Background(), ms.Endpoint("custom/endpoint"), FormatJSON, Params{"x": "1"})
	require.NoError(t, err)
	assert.Equal(t, "x=1", ms.LastRequest().RawQuery)
}

func TestConnection_DefaultHeaders(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/api/eggs/list.json", http.StatusOK, map[string]any{"status": "ok"})
	conn := newTestConnection(t, ms,
		WithHeaders(map[string]string{"X-Team": "crawl"}),
		WithUserAgent("custom-agent/1.0"),
	)

	_, err := conn.Get(context.Background(), MethodEggsList, FormatJSON, nil)
	require.NoError(t, err)

	req := ms.LastRequest()
	assert.Equal(t, "crawl", req.Headers.Get("X-Team"))
	assert.Equal(t, "custom-agent/1.0", req.Headers.Get("User-Agent"))
}

func TestConnection_ProjectIDs(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/api/scrapyd/listprojects.json", http.StatusOK, map[string]any{
		"status":   "ok",
		"projects": []any{123, 456, "sandbox"},
	})
	conn := newTestConnection(t, ms)

	ids, err := conn.ProjectIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"123", "456", "sandbox"}, ids)
}

func TestConnection_StringMasksKey(t *testing.T) {
	conn, err := NewConnection(WithAPIKey(testutil.APIKey))
	require.NoError(t, err)

	assert.NotContains(t, conn.String(), testutil.APIKey)
	assert.Contains(t, conn.String(), "dash.scrapinghub.com")
}

func TestConnection_Project(t *testing.T) {
	conn, err := NewConnection(WithAPIKey(testutil.APIKey))
	require.NoError(t, err)

	p := conn.Project("123")
	assert.Equal(t, "123", p.ID())
	assert.Equal(t, "123", p.Name())
	assert.Same(t, conn, p.Connection())
}
