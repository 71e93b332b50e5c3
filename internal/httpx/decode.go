package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Format is a response encoding understood by the API.
type Format string

const (
	// FormatJSON is a single JSON object carrying a status envelope.
	FormatJSON Format = "json"
	// FormatJL is newline-delimited JSON, one value per line.
	FormatJL Format = "jl"
)

// Valid reports whether f can be decoded without the raw flag.
func (f Format) Valid() bool {
	return f == FormatJSON || f == FormatJL
}

// Envelope status values.
const (
	StatusOK         = "ok"
	StatusErr        = "error"
	StatusBadRequest = "badrequest"
)

// Result is a decoded response. Exactly one of Text, JSON or Records is
// meaningful, depending on how the request was made.
type Result struct {
	StatusCode int
	Headers    http.Header

	format  Format
	raw     bool
	body    []byte
	object  map[string]any
	records *Records
}

// Format returns the format the result was decoded with.
func (r *Result) Format() Format { return r.format }

// IsRaw reports whether the body was returned undecoded.
func (r *Result) IsRaw() bool { return r.raw }

// Text returns the response body as text.
func (r *Result) Text() string { return string(r.body) }

// JSON returns the decoded object of a json result, nil otherwise.
func (r *Result) JSON() map[string]any { return r.object }

// Records returns the record producer of a jl result, nil otherwise.
func (r *Result) Records() *Records { return r.records }

// Decode unmarshals the body of a json result into v.
func (r *Result) Decode(v any) error {
	if r.format != FormatJSON || r.raw {
		return errors.Errorf("cannot decode a %s result into %T", r.describe(), v)
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return errors.Wrapf(err, "decoding response into %T", v)
	}
	return nil
}

func (r *Result) describe() string {
	if r.raw {
		return "raw"
	}
	return string(r.format)
}

// Decode turns resp into a Result according to format. A raw request
// returns the body as text whatever the format or HTTP status.
func Decode(resp *Response, format Format, raw bool) (*Result, error) {
	result := &Result{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		format:     format,
		raw:        raw,
		body:       resp.Body,
	}
	if raw {
		return result, nil
	}

	switch format {
	case FormatJSON:
		object, err := decodeEnvelope(resp)
		if err != nil {
			return nil, err
		}
		result.object = object
		return result, nil
	case FormatJL:
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, ParseHTTPError(resp.StatusCode, resp.Body, resp.Headers)
		}
		result.records = NewRecords(resp.Body)
		return result, nil
	default:
		return nil, NewInvalidFormatError(string(format))
	}
}

// decodeEnvelope parses a json body and validates its status field.
func decodeEnvelope(resp *Response) (map[string]any, error) {
	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	err := dec.Decode(&data)
	if err == nil && data == nil {
		err = errors.New("response is not a JSON object")
	}
	if err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, ParseHTTPError(resp.StatusCode, resp.Body, resp.Headers)
		}
		return nil, errors.Wrap(err, "decoding JSON response")
	}

	rawStatus, ok := data["status"]
	if !ok {
		return nil, NewMissingStatusError(resp.StatusCode, resp.Body)
	}
	status, _ := rawStatus.(string)
	message, _ := data["message"].(string)

	switch status {
	case StatusOK:
		return data, nil
	case StatusErr, StatusBadRequest:
		return nil, NewStatusError(status, message, resp.StatusCode, resp.Body)
	default:
		return nil, NewUnknownStatusError(fmt.Sprint(rawStatus), message, resp.StatusCode)
	}
}

// Records is a buffered jl payload. Every call to Iter starts a fresh, lazy
// pass over the same text.
type Records struct {
	body []byte
}

// NewRecords wraps a jl body.
func NewRecords(body []byte) *Records {
	return &Records{body: body}
}

// Iter returns an iterator over the records, decoding one line per Next.
func (r *Records) Iter() *RecordIterator {
	return &RecordIterator{rest: r.body}
}

// All drains a fresh iterator into a slice.
func (r *Records) All() ([]any, error) {
	var out []any
	it := r.Iter()
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

// RecordIterator walks a jl body line by line. Blank lines are skipped and
// every other line must hold exactly one JSON value.
//
//	it := records.Iter()
//	for it.Next() {
//		use(it.Value())
//	}
//	if err := it.Err(); err != nil { ... }
type RecordIterator struct {
	rest  []byte
	line  int
	raw   json.RawMessage
	value any
	err   error
	done  bool
}

// Next advances to the next record. It returns false when the body is
// exhausted or a line fails to decode; Err tells the two apart.
func (it *RecordIterator) Next() bool {
	if it.done {
		return false
	}
	for len(it.rest) > 0 {
		var line []byte
		if i := bytes.IndexAny(it.rest, "\r\n"); i >= 0 {
			line, it.rest = it.rest[:i], it.rest[i+1:]
		} else {
			line, it.rest = it.rest, nil
		}
		it.line++
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var value any
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if !json.Valid(line) {
			it.fail(errors.Errorf("invalid JSON on line %d: %s", it.line, truncate(line, 64)))
			return false
		}
		if err := dec.Decode(&value); err != nil {
			it.fail(errors.Wrapf(err, "decoding line %d", it.line))
			return false
		}
		it.raw = json.RawMessage(line)
		it.value = value
		return true
	}
	it.done = true
	return false
}

func (it *RecordIterator) fail(err error) {
	it.err = err
	it.done = true
	it.raw, it.value = nil, nil
}

// Value returns the current record. Numbers are json.Number.
func (it *RecordIterator) Value() any { return it.value }

// Raw returns the current record's undecoded line.
func (it *RecordIterator) Raw() json.RawMessage { return it.raw }

// Decode unmarshals the current record into v.
func (it *RecordIterator) Decode(v any) error {
	if it.raw == nil {
		return errors.New("no current record")
	}
	dec := json.NewDecoder(bytes.NewReader(it.raw))
	dec.UseNumber()
	return errors.Wrapf(dec.Decode(v), "decoding line %d", it.line)
}

// Err returns the decode error that stopped iteration, if any.
func (it *RecordIterator) Err() error { return it.err }

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
