package scrapinghub

import (
	"context"
	"strings"
)

// Connect creates a connection with default configuration.
//
// This is a convenience function equivalent to:
//
//	conn, err := scrapinghub.NewConnection(scrapinghub.WithAPIKey(apiKey))
func Connect(apiKey string) (*Connection, error) {
	return NewConnection(WithAPIKey(apiKey))
}

// Schedule runs spider in project and returns the new job id.
//
// Example:
//
//	jobID, err := scrapinghub.Schedule(ctx, conn, "123", "quotes", scrapinghub.Params{
//		"tag": "nightly",
//	})
func Schedule(ctx context.Context, conn *Connection, projectID, spider string, params Params) (string, error) {
	return conn.Project(projectID).Schedule(ctx, spider, params)
}

// JobItems reads every item of a job.
//
// Example:
//
//	items, err := scrapinghub.JobItems(ctx, conn, "123/1/4")
func JobItems(ctx context.Context, conn *Connection, jobID string) ([]Item, error) {
	return NewJob(conn.Project(projectOf(jobID)), jobID, nil).Items(ctx, ItemsOptions{})
}

// projectOf returns the project part of a <project>/<spider>/<job> id.
func projectOf(jobID string) string {
	project, _, _ := strings.Cut(jobID, "/")
	return project
}

// Int returns a pointer to n, for ItemsOptions.Count.
func Int(n int) *int {
	return &n
}
