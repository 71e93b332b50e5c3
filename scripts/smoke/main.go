// Package main runs read-only smoke checks of the scrapinghub client against
// a live account.
//
// Usage:
//
//	SH_APIKEY=... PROJECT=123 go run scripts/smoke/main.go
//
// Options (environment):
//
//	SH_URL, SH_STORAGE_URL  override the endpoints
//	SPIDER                  also schedule a run of this spider and stop it
//	VERBOSE=1               print extra detail and log requests
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/davidxi/scrapinghub-go/scrapinghub"
)

var (
	apiKey     = os.Getenv("SH_APIKEY")
	projectID  = os.Getenv("PROJECT")
	spider     = os.Getenv("SPIDER")
	baseURL    = getEnv("SH_URL", scrapinghub.DefaultBaseURL)
	storageURL = getEnv("SH_STORAGE_URL", scrapinghub.DefaultStorageURL)
	verbose    = getEnvBool("VERBOSE", false)
)

type checkResult struct {
	Name    string
	Passed  bool
	Skipped bool
	Error   string
}

var results []checkResult

type runner struct {
	name string
}

func (r *runner) Run(name string, fn func()) {
	fullName := fmt.Sprintf("%s: %s", r.name, name)
	defer func() {
		if rec := recover(); rec != nil {
			results = append(results, checkResult{Name: fullName, Error: fmt.Sprintf("%v", rec)})
			fmt.Printf("  ✗ %s\n    Error: %v\n", name, rec)
		}
	}()

	fn()
	results = append(results, checkResult{Name: fullName, Passed: true})
	fmt.Printf("  ✓ %s\n", name)
}

func (r *runner) Skip(name, reason string) {
	results = append(results, checkResult{Name: fmt.Sprintf("%s: %s", r.name, name), Passed: true, Skipped: true})
	fmt.Printf("  ⏭️  %s (skipped: %s)\n", name, reason)
}

func assertTrue(cond bool, msg string) {
	if !cond {
		panic(fmt.Sprintf("Assertion failed: %s", msg))
	}
}

func assertNoError(err error) {
	if err != nil {
		panic(fmt.Sprintf("Unexpected error: %v", err))
	}
}

func logf(format string, args ...any) {
	if verbose {
		fmt.Printf("    → "+format+"\n", args...)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1"
	}
	return defaultVal
}

func section(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("─", 60))
}

func checkConnection(conn *scrapinghub.Connection) {
	section("🔌 Connection")
	r := &runner{name: "Connection"}
	ctx := context.Background()

	r.Run("String masks the key", func() {
		assertTrue(!strings.Contains(conn.String(), apiKey), "key should not appear in String()")
	})

	r.Run("List projects", func() {
		ids, err := conn.ProjectIDs(ctx)
		assertNoError(err)
		logf("projects: %v", ids)
		found := false
		for _, id := range ids {
			found = found || id == projectID
		}
		assertTrue(found, "PROJECT should be listed")
	})

	r.Run("Unknown method is rejected locally", func() {
		_, err := conn.Get(ctx, "no_such_method", scrapinghub.FormatJSON, nil)
		assertTrue(scrapinghub.IsUnknownMethodError(err), "expected unknown method error")
	})
}

func checkProject(project *scrapinghub.Project) []*scrapinghub.Job {
	section("📁 Project")
	r := &runner{name: "Project"}
	ctx := context.Background()
	var jobs []*scrapinghub.Job

	r.Run("List spiders", func() {
		spiders, err := project.Spiders(ctx, nil)
		assertNoError(err)
		logf("%d spiders", len(spiders))
	})

	r.Run("Count finished jobs", func() {
		total, err := project.Jobs(scrapinghub.Params{"state": "finished"}).Count(ctx)
		assertNoError(err)
		assertTrue(total >= 0, "total should not be negative")
		logf("%d finished jobs", total)
	})

	r.Run("List latest finished jobs", func() {
		var err error
		jobs, err = project.Jobs(scrapinghub.Params{"state": "finished", "count": 3}).All(ctx)
		assertNoError(err)
		assertTrue(len(jobs) <= 3, "count filter should bound the result")
		for _, job := range jobs {
			assertTrue(strings.HasPrefix(job.ID(), projectID+"/"), "job id should carry the project")
		}
	})

	return jobs
}

func checkJob(job *scrapinghub.Job) {
	section("📋 Job " + job.ID())
	r := &runner{name: "Job"}
	ctx := context.Background()

	r.Run("Read first items", func() {
		items, err := job.Items(ctx, scrapinghub.ItemsOptions{Count: scrapinghub.Int(5), Meta: []string{"_key"}})
		assertNoError(err)
		assertTrue(len(items) <= 5, "count should bound the items")
		for _, item := range items {
			_, ok := item["_key"]
			assertTrue(ok, "meta field _key should be present")
		}
	})

	r.Run("Resume from offset", func() {
		all, err := job.Items(ctx, scrapinghub.ItemsOptions{Count: scrapinghub.Int(2), Meta: []string{"_key"}})
		assertNoError(err)
		if len(all) < 2 {
			return
		}
		rest, err := job.Items(ctx, scrapinghub.ItemsOptions{Offset: 1, Count: scrapinghub.Int(1), Meta: []string{"_key"}})
		assertNoError(err)
		assertTrue(len(rest) == 1 && rest[0]["_key"] == all[1]["_key"], "offset read should return the second item")
	})

	r.Run("Read log", func() {
		records, err := job.Log(ctx, scrapinghub.Params{"count": 5})
		assertNoError(err)
		entries, err := records.All()
		assertNoError(err)
		logf("%d log entries", len(entries))
	})
}

func checkSchedule(project *scrapinghub.Project) {
	section("🚀 Schedule")
	r := &runner{name: "Schedule"}
	if spider == "" {
		r.Skip("Schedule and stop", "SPIDER not set")
		return
	}
	ctx := context.Background()
	var jobID string

	r.Run("Schedule spider", func() {
		var err error
		jobID, err = project.Schedule(ctx, spider, scrapinghub.Params{"add_tag": "smoke"})
		assertNoError(err)
		assertTrue(jobID != "", "job id should be returned")
		logf("scheduled %s", jobID)
	})

	r.Run("Stop scheduled job", func() {
		stopped, err := project.Job(jobID).Stop(ctx)
		assertNoError(err)
		assertTrue(len(stopped) == 1, "job should be found")
	})
}

func main() {
	fmt.Println(strings.Repeat("═", 60))
	fmt.Println("   🧪 SCRAPINGHUB GO CLIENT SMOKE CHECKS")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("   API: %s\n", baseURL)
	fmt.Printf("   Storage: %s\n", storageURL)
	fmt.Printf("   Project: %s\n", projectID)

	if apiKey == "" || projectID == "" {
		fmt.Println("❌ Error: SH_APIKEY and PROJECT environment variables required")
		os.Exit(1)
	}

	conn, err := scrapinghub.NewConnection(
		scrapinghub.WithAPIKey(apiKey),
		scrapinghub.WithBaseURL(baseURL),
		scrapinghub.WithStorageURL(storageURL),
		scrapinghub.WithDebug(verbose),
	)
	if err != nil {
		fmt.Printf("❌ Error: Failed to create connection: %v\n", err)
		os.Exit(1)
	}

	startTime := time.Now()
	project := conn.Project(projectID)

	checkConnection(conn)
	jobs := checkProject(project)
	if len(jobs) > 0 {
		checkJob(jobs[0])
	}
	checkSchedule(project)

	passed, failed, skipped := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Passed:
			passed++
		default:
			failed++
		}
	}

	fmt.Println("")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("   ✓ Passed:  %d\n", passed)
	fmt.Printf("   ✗ Failed:  %d\n", failed)
	fmt.Printf("   ⏭️  Skipped: %d\n", skipped)
	fmt.Printf("   Total:     %d checks in %.2fs\n", len(results), time.Since(startTime).Seconds())
	fmt.Println(strings.Repeat("═", 60))

	if failed > 0 {
		fmt.Println("\n❌ Failed Checks:")
		for _, r := range results {
			if !r.Passed && !r.Skipped {
				fmt.Printf("   • %s\n     Error: %s\n", r.Name, r.Error)
			}
		}
		os.Exit(1)
	}
}
