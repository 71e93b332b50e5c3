package scrapinghub

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/davidxi/scrapinghub-go/internal/httpx"
)

// maxConcurrentJobCalls bounds the per-job requests of Stop and Delete.
const maxConcurrentJobCalls = 8

// JobSet is a filtered view of the jobs of a project. The job list is
// fetched on first use and kept for the lifetime of the set; Count always
// asks the server.
type JobSet struct {
	project *Project
	params  Params

	mu     sync.Mutex
	loaded bool
	jobs   []map[string]any
}

func newJobSet(project *Project, params Params) *JobSet {
	return &JobSet{project: project, params: params.Clone()}
}

// Project returns the project the set belongs to.
func (s *JobSet) Project() *Project { return s.project }

// Params returns a copy of the set's filter.
func (s *JobSet) Params() Params { return s.params.Clone() }

func (s *JobSet) String() string {
	return fmt.Sprintf("JobSet(%v, %v)", s.project, map[string]any(s.params))
}

// AddParams implements Scope. The filter is applied under params, then the
// project id is forced.
func (s *JobSet) AddParams(params Params) Params {
	return s.project.AddParams(s.params.Merge(params))
}

// RequestProxy implements Scope.
func (s *JobSet) RequestProxy() Requester {
	return s.project.RequestProxy()
}

// Get performs a GET request scoped to the set's filter.
func (s *JobSet) Get(ctx context.Context, method string, format Format, params Params, opts ...RequestOption) (*Result, error) {
	return scopedGet(ctx, s, method, format, params, opts...)
}

// Post performs a POST request scoped to the set's filter.
func (s *JobSet) Post(ctx context.Context, method string, format Format, params Params, opts ...RequestOption) (*Result, error) {
	return scopedPost(ctx, s, method, format, params, opts...)
}

// All returns the jobs of the set in server order.
func (s *JobSet) All(ctx context.Context) ([]*Job, error) {
	records, err := s.loadJobs(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]*Job, 0, len(records))
	for _, info := range records {
		jobs = append(jobs, NewJob(s.project, idString(info["id"]), info))
	}
	return jobs, nil
}

// Count returns the number of jobs matching the filter. Paging keys are
// ignored.
func (s *JobSet) Count(ctx context.Context) (int, error) {
	proxy := s.RequestProxy()
	if proxy == nil {
		return 0, ErrNotImplemented
	}
	params := s.AddParams(nil)
	delete(params, "count")
	delete(params, "offset")

	result, err := proxy.Get(ctx, MethodJobsCount, FormatJSON, params)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := result.Decode(&resp); err != nil {
		return 0, errors.Wrap(err, "reading job count")
	}
	return resp.Total, nil
}

// Update applies modifiers to every job matching the filter and returns
// the number of jobs updated.
func (s *JobSet) Update(ctx context.Context, modifiers Params) (int, error) {
	result, err := s.Post(ctx, MethodJobsUpdate, FormatJSON, modifiers)
	if err != nil {
		return 0, err
	}
	return decodeCount(result)
}

// Stop stops every job of the set. Results are aligned with All.
func (s *JobSet) Stop(ctx context.Context) ([]bool, error) {
	jobs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]bool, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentJobCalls)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			ok, err := job.Stop(gctx)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Delete deletes every job of the set. Results are aligned with All.
func (s *JobSet) Delete(ctx context.Context) ([]int, error) {
	jobs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]int, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentJobCalls)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			n, err := job.Delete(gctx)
			if err != nil {
				return err
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// loadJobs fetches the job list once. The first record of the response is
// the status envelope; a failed load is not kept.
func (s *JobSet) loadJobs(ctx context.Context) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.jobs, nil
	}

	result, err := s.Get(ctx, MethodJobsList, FormatJL, nil)
	if err != nil {
		return nil, err
	}

	it := result.Records().Iter()
	if !it.Next() {
		e := httpx.NewMissingStatusError(result.StatusCode, nil)
		e.Err = it.Err()
		return nil, e
	}
	var envelope struct {
		Status  *string `json:"status"`
		Message string  `json:"message"`
	}
	if err := it.Decode(&envelope); err != nil || envelope.Status == nil {
		e := httpx.NewMissingStatusError(result.StatusCode, it.Raw())
		e.Err = err
		return nil, e
	}
	if *envelope.Status != httpx.StatusOK {
		return nil, httpx.NewUnknownStatusError(*envelope.Status, envelope.Message, result.StatusCode)
	}

	jobs := []map[string]any{}
	for it.Next() {
		var info map[string]any
		if err := it.Decode(&info); err != nil {
			return nil, errors.Wrapf(err, "reading job record %d", len(jobs)+1)
		}
		jobs = append(jobs, info)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	s.jobs = jobs
	s.loaded = true
	return jobs, nil
}

func decodeCount(result *Result) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := result.Decode(&resp); err != nil {
		return 0, errors.Wrap(err, "reading affected job count")
	}
	return resp.Count, nil
}
