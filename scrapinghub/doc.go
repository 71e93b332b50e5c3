// Package scrapinghub is a Go client for the Scrapinghub dash and items
// storage APIs.
//
// A Connection holds the API key and talks to the server. Projects, job
// sets and jobs are lightweight handles derived from it; each adds its own
// scope to the parameters of the requests made through it, so a request
// made through a Job always carries the job's project and id.
//
// # Basic Usage
//
//	conn, err := scrapinghub.NewConnection(
//		scrapinghub.WithAPIKey("0123456789abcdef0123456789abcdef"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	project := conn.Project("123")
//	jobID, err := project.Schedule(ctx, "quotes", nil)
//
// # Jobs
//
// A JobSet lists the jobs matching a filter. The list is fetched once and
// reused; Count always asks the server.
//
//	jobs, err := project.Jobs(scrapinghub.Params{"state": "finished"}).All(ctx)
//	for _, job := range jobs {
//		fmt.Println(job.ID(), job.Info["spider"])
//	}
//
// # Items
//
// Job.Items reads from the items storage endpoint. A read interrupted
// mid-stream resumes after the last item received:
//
//	items, err := job.Items(ctx, scrapinghub.ItemsOptions{
//		Count: scrapinghub.Int(100),
//		Meta:  []string{"_key"},
//	})
//	if errors.Is(err, scrapinghub.ErrRetriesExhausted) {
//		var itemsErr *scrapinghub.ItemsError
//		errors.As(err, &itemsErr)
//		fmt.Println("got", len(itemsErr.Partial), "items before giving up")
//	}
//
// # Error Handling
//
// Every error raised by the client embeds *APIError:
//
//	_, err := conn.Get(ctx, "nosuchmethod", scrapinghub.FormatJSON, nil)
//	if scrapinghub.IsUnknownMethodError(err) {
//		...
//	}
//	if apiErr, ok := scrapinghub.AsAPIError(err); ok {
//		fmt.Println(apiErr.Title, apiErr.StatusCode)
//	}
package scrapinghub
