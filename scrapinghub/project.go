package scrapinghub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Project is a handle on a Scrapinghub project. Every request made through
// it carries project=<id>.
type Project struct {
	conn *Connection
	id   string
}

// ID returns the project id.
func (p *Project) ID() string { return p.id }

// Name returns the project id. Projects are addressed by id only.
func (p *Project) Name() string { return p.id }

// Connection returns the connection the project was obtained from.
func (p *Project) Connection() *Connection { return p.conn }

func (p *Project) String() string {
	return fmt.Sprintf("Project(%v, %s)", p.conn, p.id)
}

// AddParams implements Scope.
func (p *Project) AddParams(params Params) Params {
	out := params.Clone()
	out["project"] = p.id
	return out
}

// RequestProxy implements Scope.
func (p *Project) RequestProxy() Requester {
	if p.conn == nil {
		return nil
	}
	return p.conn
}

// Get performs a GET request scoped to the project.
func (p *Project) Get(ctx context.Context, method string, format Format, params Params, opts ...RequestOption) (*Result, error) {
	return scopedGet(ctx, p, method, format, params, opts...)
}

// Post performs a POST request scoped to the project.
func (p *Project) Post(ctx context.Context, method string, format Format, params Params, opts ...RequestOption) (*Result, error) {
	return scopedPost(ctx, p, method, format, params, opts...)
}

// Schedule runs spider and returns the id of the new job. Extra params are
// passed through as spider arguments or job settings.
func (p *Project) Schedule(ctx context.Context, spider string, params Params) (string, error) {
	result, err := p.Post(ctx, MethodSchedule, FormatJSON, params.Merge(Params{"spider": spider}))
	if err != nil {
		return "", err
	}
	var resp struct {
		JobID string `json:"jobid"`
	}
	if err := result.Decode(&resp); err != nil {
		return "", errors.Wrap(err, "reading scheduled job id")
	}
	return resp.JobID, nil
}

// Jobs returns the jobs of the project matching params.
func (p *Project) Jobs(params Params) *JobSet {
	return newJobSet(p, params)
}

// Job returns a job set selecting the single job id.
func (p *Project) Job(id string) *JobSet {
	return newJobSet(p, Params{"job": id, "count": 1})
}

// Spider describes a spider deployed in a project.
type Spider struct {
	ID      string   `json:"id"`
	Type    string   `json:"type,omitempty"`
	Version string   `json:"version,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// UnmarshalJSON accepts a spider object or a bare spider name.
func (s *Spider) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = Spider{ID: name}
		return nil
	}
	type plain Spider
	return json.Unmarshal(data, (*plain)(s))
}

// Spiders lists the spiders of the project.
func (p *Project) Spiders(ctx context.Context, params Params) ([]Spider, error) {
	result, err := p.Get(ctx, MethodSpiders, FormatJSON, params)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Spiders []Spider `json:"spiders"`
	}
	if err := result.Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "reading spiders")
	}
	return resp.Spiders, nil
}

// idString renders an id decoded with json.Number as its literal text.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
