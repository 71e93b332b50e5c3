package httpx

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"
)

func response(code int, body string) *Response {
	return &Response{StatusCode: code, Body: []byte(body), Headers: http.Header{}}
}

func TestDecode_JSON(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		want    map[string]any
		checkFn func(error) bool
		wantMsg string
	}{
		{
			name: "ok",
			code: 200,
			body: `{"status":"ok","x":1}`,
			want: map[string]any{"status": "ok", "x": json.Number("1")},
		},
		{
			name:    "error status",
			code:    200,
			body:    `{"status":"error","message":"bad"}`,
			checkFn: IsStatusError,
			wantMsg: "bad",
		},
		{
			name:    "badrequest status",
			code:    400,
			body:    `{"status":"badrequest","message":"spider required"}`,
			checkFn: IsStatusError,
			wantMsg: "spider required",
		},
		{
			name:    "missing status",
			code:    200,
			body:    `{"x":1}`,
			checkFn: IsMissingStatusError,
		},
		{
			name:    "unknown status",
			code:    200,
			body:    `{"status":"pending"}`,
			checkFn: IsUnknownStatusError,
		},
		{
			name:    "non-json error page",
			code:    502,
			body:    `<html>bad gateway</html>`,
			checkFn: IsHTTPError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(response(tt.code, tt.body), FormatJSON, false)
			if tt.checkFn != nil {
				if err == nil || !tt.checkFn(err) {
					t.Fatalf("unexpected error %T: %v", err, err)
				}
				if tt.wantMsg != "" {
					apiErr, _ := AsAPIError(err)
					if apiErr.Message != tt.wantMsg {
						t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result.JSON(), tt.want) {
				t.Errorf("JSON() = %#v, want %#v", result.JSON(), tt.want)
			}
		})
	}
}

func TestDecode_EnvelopeStatusValues(t *testing.T) {
	for _, status := range []string{StatusErr, StatusBadRequest} {
		body, _ := json.Marshal(map[string]string{"status": status, "message": "rejected"})
		_, err := Decode(response(200, string(body)), FormatJSON, false)
		var statusErr *StatusError
		if !asError(err, &statusErr) {
			t.Fatalf("Decode(status=%q) error = %T, want *StatusError", status, err)
		}
		if statusErr.Status != status {
			t.Errorf("Status = %q, want %q", statusErr.Status, status)
		}
	}

	result, err := Decode(response(200, `{"status":"`+StatusOK+`"}`), FormatJSON, false)
	if err != nil {
		t.Fatalf("Decode(status=ok) error = %v", err)
	}
	if got := result.JSON()["status"]; got != StatusOK {
		t.Errorf("status = %v, want %q", got, StatusOK)
	}
}

func TestDecode_JSONNotObject(t *testing.T) {
	for _, body := range []string{`[1,2]`, `null`, `not json`} {
		_, err := Decode(response(200, body), FormatJSON, false)
		if err == nil {
			t.Errorf("Decode(%q) should fail", body)
		}
		if IsMissingStatusError(err) {
			t.Errorf("Decode(%q) is a parse failure, not a missing status", body)
		}
	}
}

func TestDecode_Raw(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatJL, "zip"} {
		result, err := Decode(response(500, `{"status":"error"}`), format, true)
		if err != nil {
			t.Fatalf("raw %s: unexpected error: %v", format, err)
		}
		if result.Text() != `{"status":"error"}` {
			t.Errorf("raw %s: Text() = %q", format, result.Text())
		}
	}
}

func TestDecode_InvalidFormat(t *testing.T) {
	_, err := Decode(response(200, `{}`), "xml", false)
	if !IsInvalidFormatError(err) {
		t.Errorf("expected InvalidFormatError, got %v", err)
	}
}

func TestDecode_JLBlankLines(t *testing.T) {
	bodies := []string{
		"{\"a\":1}\n\n{\"a\":2}\n",
		"{\"a\":1}\n\n\n\n{\"a\":2}",
		"\r\n{\"a\":1}\r\n\r\n{\"a\":2}\r\n",
		"{\"a\":1}\n   \n{\"a\":2}\n\n",
	}
	want := []any{
		map[string]any{"a": json.Number("1")},
		map[string]any{"a": json.Number("2")},
	}

	for _, body := range bodies {
		result, err := Decode(response(200, body), FormatJL, false)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got, err := result.Records().All()
		if err != nil {
			t.Fatalf("All(): %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("records of %q = %#v, want %#v", body, got, want)
		}
	}
}

func TestRecords_Restartable(t *testing.T) {
	records := NewRecords([]byte("{\"a\":1}\n{\"a\":2}\n"))

	first := records.Iter()
	if !first.Next() {
		t.Fatal("expected a first record")
	}

	second := records.Iter()
	count := 0
	for second.Next() {
		count++
	}
	if count != 2 {
		t.Errorf("fresh iterator yielded %d records, want 2", count)
	}

	if !first.Next() || first.Next() {
		t.Errorf("first iterator should continue independently and yield one more record")
	}
}

func TestRecordIterator_StopsOnBadLine(t *testing.T) {
	it := NewRecords([]byte("{\"i\":0}\n{\"i\":1}\n{\"i\":\n{\"i\":3}\n")).Iter()

	var got []string
	for it.Next() {
		got = append(got, string(it.Raw()))
	}
	if len(got) != 2 {
		t.Errorf("yielded %d records before the bad line, want 2", len(got))
	}
	if it.Err() == nil {
		t.Error("Err() should report the bad line")
	}
	if it.Next() {
		t.Error("Next() after an error should keep returning false")
	}
}

func TestRecordIterator_Decode(t *testing.T) {
	it := NewRecords([]byte(`{"status":"ok","count":3}`)).Iter()
	if !it.Next() {
		t.Fatal("expected a record")
	}
	var env struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}
	if err := it.Decode(&env); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Status != "ok" || env.Count != 3 {
		t.Errorf("Decode() = %+v", env)
	}
}

func TestDecode_JLHTTPError(t *testing.T) {
	_, err := Decode(response(503, "upstream unavailable"), FormatJL, false)
	if !IsHTTPError(err) {
		t.Errorf("expected HTTPError, got %v", err)
	}
}

func TestResult_Decode(t *testing.T) {
	result, err := Decode(response(200, `{"status":"ok","jobid":"1/2/3"}`), FormatJSON, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var resp struct {
		JobID string `json:"jobid"`
	}
	if err := result.Decode(&resp); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if resp.JobID != "1/2/3" {
		t.Errorf("JobID = %q", resp.JobID)
	}

	raw, _ := Decode(response(200, `x`), FormatJSON, true)
	if err := raw.Decode(&resp); err == nil {
		t.Error("Decode of a raw result should fail")
	}
}
