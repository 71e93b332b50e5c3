package scrapinghub

import (
	"context"
	"fmt"
)

// Job is a handle on a single job. Every request made through it carries
// project=<project id> and job=<id>.
type Job struct {
	project *Project
	id      string

	// Info is the job record returned by the job list, nil for a job
	// created by id alone.
	Info map[string]any
}

// NewJob returns a handle on job id of project.
func NewJob(project *Project, id string, info map[string]any) *Job {
	return &Job{project: project, id: id, Info: info}
}

// ID returns the job id, in the form <project>/<spider>/<job>.
func (j *Job) ID() string { return j.id }

// Project returns the project the job belongs to.
func (j *Job) Project() *Project { return j.project }

func (j *Job) String() string {
	return fmt.Sprintf("Job(%v, %s)", j.project, j.id)
}

// AddParams implements Scope.
func (j *Job) AddParams(params Params) Params {
	out := j.project.AddParams(params)
	out["job"] = j.id
	return out
}

// RequestProxy implements Scope.
func (j *Job) RequestProxy() Requester {
	return j.project.RequestProxy()
}

// Get performs a GET request scoped to the job.
func (j *Job) Get(ctx context.Context, method string, format Format, params Params, opts ...RequestOption) (*Result, error) {
	return scopedGet(ctx, j, method, format, params, opts...)
}

// Post performs a POST request scoped to the job.
func (j *Job) Post(ctx context.Context, method string, format Format, params Params, opts ...RequestOption) (*Result, error) {
	return scopedPost(ctx, j, method, format, params, opts...)
}

// Update applies modifiers to the job and returns the number of jobs updated.
func (j *Job) Update(ctx context.Context, modifiers Params) (int, error) {
	result, err := j.Post(ctx, MethodJobsUpdate, FormatJSON, modifiers)
	if err != nil {
		return 0, err
	}
	return decodeCount(result)
}

// Stop asks the server to stop the job.
func (j *Job) Stop(ctx context.Context) (bool, error) {
	result, err := j.Post(ctx, MethodJobsStop, FormatJSON, nil)
	if err != nil {
		return false, err
	}
	status, _ := result.JSON()["status"].(string)
	return status == "ok", nil
}

// Delete deletes the job and returns the number of jobs deleted.
func (j *Job) Delete(ctx context.Context) (int, error) {
	result, err := j.Post(ctx, MethodJobsDelete, FormatJSON, nil)
	if err != nil {
		return 0, err
	}
	return decodeCount(result)
}

// AddReport attaches a report to the job. content is uploaded as a file
// under key.
func (j *Job) AddReport(ctx context.Context, key, content, contentType string) error {
	file := File{
		Field:       "content",
		Filename:    key,
		ContentType: contentType,
		Content:     []byte(content),
	}
	params := Params{"key": key, "content_type": contentType}
	_, err := j.Post(ctx, MethodReportsAdd, FormatJSON, params, WithFiles(file))
	return err
}

// Log returns the job's log entries.
func (j *Job) Log(ctx context.Context, params Params) (*Records, error) {
	result, err := j.Get(ctx, MethodLog, FormatJL, params)
	if err != nil {
		return nil, err
	}
	return result.Records(), nil
}
