package shubctl

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
)

// Projects prints the ids of the projects the key can access.
func (a *App) Projects() error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	ids, err := conn.ProjectIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "error listing projects")
	}
	for _, id := range ids {
		fmt.Fprintln(a.Out, id)
	}
	return nil
}

// Spiders prints the spiders of a project.
func (a *App) Spiders(projectID string) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	spiders, err := conn.Project(projectID).Spiders(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "error listing spiders of project %s", projectID)
	}

	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTAGS")
	for _, s := range spiders {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Type, strings.Join(s.Tags, ","))
	}
	return w.Flush()
}

// Schedule runs a spider and prints the new job id.
func (a *App) Schedule(projectID, spider string, args map[string]string) error {
	conn, err := a.connection()
	if err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()

	jobID, err := conn.Project(projectID).Schedule(ctx, spider, toParams(args))
	if err != nil {
		return errors.Wrapf(err, "error scheduling spider %s in project %s", spider, projectID)
	}
	fmt.Fprintf(a.Out, "Scheduled job %s\n", jobID)
	return nil
}
