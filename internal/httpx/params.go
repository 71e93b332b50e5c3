package httpx

import (
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/oapi-codegen/runtime"
	"github.com/pkg/errors"
)

// Params is a mapping of query (GET) or form (POST) parameters. Slice values
// are sent as repeated keys; nil values are skipped.
type Params map[string]any

// Clone returns a shallow copy of p. A nil receiver yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a new map holding p overlaid with each of others in turn,
// so the last value set for a key wins.
func (p Params) Merge(others ...Params) Params {
	out := p.Clone()
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// EncodeParams renders params as a UTF-8 query string. Strings are used
// verbatim; Params, map[string]any, map[string]string and url.Values are
// encoded with sorted keys. Any other shape yields an UnsupportedParamsError.
func EncodeParams(params any) (string, error) {
	switch p := params.(type) {
	case nil:
		return "", nil
	case string:
		return p, nil
	case Params:
		return encodeMap(p)
	case map[string]any:
		return encodeMap(p)
	case map[string]string:
		m := make(map[string]any, len(p))
		for k, v := range p {
			m[k] = v
		}
		return encodeMap(m)
	case url.Values:
		return p.Encode(), nil
	default:
		return "", NewUnsupportedParamsError(params)
	}
}

func encodeMap(m map[string]any) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		if isEmptyValue(v) {
			continue
		}
		part, err := runtime.StyleParamWithLocation("form", true, k, runtime.ParamLocationQuery, v)
		if err != nil {
			return "", errors.Wrapf(err, "encoding parameter %q", k)
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "&"), nil
}

// isEmptyValue reports values that produce no parameter at all: nil, nil
// pointers and empty slices.
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
