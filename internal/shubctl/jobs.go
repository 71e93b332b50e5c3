package shubctl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/davidxi/scrapinghub-go/scrapinghub"
)

// Jobs prints the jobs of a project matching filter.
func (a *App) Jobs(projectID string, filter map[string]string) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	jobs, err := conn.Project(projectID).Jobs(toParams(filter)).All(ctx)
	if err != nil {
		return errors.Wrapf(err, "error listing jobs of project %s", projectID)
	}

	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSPIDER\tSTATE\tITEMS\tCLOSE REASON")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			job.ID(),
			field(job.Info, "spider"),
			field(job.Info, "state"),
			field(job.Info, "items_scraped"),
			field(job.Info, "close_reason"),
		)
	}
	return w.Flush()
}

// Count prints the number of jobs of a project matching filter.
func (a *App) Count(projectID string, filter map[string]string) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	total, err := conn.Project(projectID).Jobs(toParams(filter)).Count(ctx)
	if err != nil {
		return errors.Wrapf(err, "error counting jobs of project %s", projectID)
	}
	fmt.Fprintln(a.Out, total)
	return nil
}

// Stop stops the given job.
func (a *App) Stop(jobID string) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	stopped, err := conn.Project(projectOf(jobID)).Job(jobID).Stop(ctx)
	if err != nil {
		return errors.Wrapf(err, "error stopping job %s", jobID)
	}
	if len(stopped) == 0 {
		return errors.Errorf("job %s not found", jobID)
	}
	fmt.Fprintf(a.Out, "Requested stop of job %s\n", jobID)
	return nil
}

// Delete deletes the given job.
func (a *App) Delete(jobID string) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	deleted, err := conn.Project(projectOf(jobID)).Job(jobID).Delete(ctx)
	if err != nil {
		return errors.Wrapf(err, "error deleting job %s", jobID)
	}
	if len(deleted) == 0 {
		return errors.Errorf("job %s not found", jobID)
	}
	fmt.Fprintf(a.Out, "Deleted job %s\n", jobID)
	return nil
}

// Tag adds and removes tags of the jobs of a project matching filter.
func (a *App) Tag(projectID string, filter map[string]string, add, remove []string) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	modifiers := scrapinghub.Params{}
	if len(add) > 0 {
		modifiers["add_tag"] = add
	}
	if len(remove) > 0 {
		modifiers["remove_tag"] = remove
	}
	n, err := conn.Project(projectID).Jobs(toParams(filter)).Update(ctx, modifiers)
	if err != nil {
		return errors.Wrapf(err, "error tagging jobs of project %s", projectID)
	}
	fmt.Fprintf(a.Out, "Updated %d jobs\n", n)
	return nil
}

// Items prints the items of a job, one JSON object per line.
func (a *App) Items(jobID string, opts scrapinghub.ItemsOptions) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}

	job := scrapinghub.NewJob(conn.Project(projectOf(jobID)), jobID, nil)
	items, err := job.Items(context.Background(), opts)
	if err != nil {
		return errors.Wrapf(err, "error reading items of job %s", jobID)
	}

	enc := json.NewEncoder(a.Out)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// Log prints the log of a job, one JSON object per line.
func (a *App) Log(jobID string) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	job := scrapinghub.NewJob(conn.Project(projectOf(jobID)), jobID, nil)
	records, err := job.Log(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "error reading log of job %s", jobID)
	}

	it := records.Iter()
	for it.Next() {
		fmt.Fprintf(a.Out, "%s\n", it.Raw())
	}
	return it.Err()
}

// projectOf returns the project part of a <project>/<spider>/<job> id.
func projectOf(jobID string) string {
	project, _, _ := strings.Cut(jobID, "/")
	return project
}

func field(info map[string]any, key string) string {
	v, ok := info[key]
	if !ok || v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func toParams(m map[string]string) scrapinghub.Params {
	params := make(scrapinghub.Params, len(m))
	for k, v := range m {
		params[k] = v
	}
	return params
}
