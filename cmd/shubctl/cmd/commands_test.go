package cmd

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidxi/scrapinghub-go/internal/shubctl"
	"github.com/davidxi/scrapinghub-go/internal/testutil"
	"github.com/davidxi/scrapinghub-go/scrapinghub"
)

type commandFactory func(*viper.Viper, *shubctl.App) *cobra.Command

// runCommand executes a single sub-command against the mock server, with the
// API key supplied through a config file.
func runCommand(t *testing.T, ms *testutil.MockServer, config string, factory commandFactory, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SH_APIKEY", "")

	cfgFile := filepath.Join(t.TempDir(), "shubctl.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(config), 0o600))

	buf := new(bytes.Buffer)
	a := shubctl.New()
	a.Out = buf

	v := viper.New()
	root := &cobra.Command{Use: "shubctl", SilenceUsage: true, SilenceErrors: true}
	addConnectionFlags(root.PersistentFlags(), v)
	root.AddCommand(factory(v, a))
	root.SetArgs(append(args,
		"--config", cfgFile,
		"--url", ms.Endpoint("api/"),
		"--storage-url", ms.Endpoint("storage/"),
		"--retry-interval", "1ms",
	))

	err := root.Execute()
	return buf.String(), err
}

const validConfig = "apikey: " + testutil.APIKey + "\n"

func TestJobsCmd(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJL(http.MethodGet, "/api/jobs/list.jl",
		map[string]any{"status": "ok"},
		map[string]any{"id": "123/1/1", "spider": "quotes", "state": "finished", "items_scraped": 10},
	)

	out, err := runCommand(t, ms, validConfig, jobsCmdWithApp, "jobs", "123", "--filter", "state=finished")
	require.NoError(t, err)
	assert.Contains(t, out, "123/1/1")
	assert.Contains(t, out, "quotes")

	req := ms.LastRequest()
	assert.Equal(t, testutil.APIKey, req.Username)
	assert.Equal(t, "finished", req.Query.Get("state"))
	assert.Equal(t, "123", req.Query.Get("project"))
}

func TestScheduleCmd(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodPost, "/api/schedule.json", http.StatusOK, map[string]any{"status": "ok", "jobid": "123/1/7"})

	out, err := runCommand(t, ms, validConfig, scheduleCmdWithApp, "schedule", "123", "quotes", "-a", "tag=nightly", "-a", "start=1")
	require.NoError(t, err)
	assert.Equal(t, "Scheduled job 123/1/7\n", out)

	form := ms.LastRequest().Form
	assert.Equal(t, "quotes", form.Get("spider"))
	assert.Equal(t, "nightly", form.Get("tag"))
	assert.Equal(t, "1", form.Get("start"))
}

func TestCountCmd(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJSON(http.MethodGet, "/api/jobs/count.json", http.StatusOK, map[string]any{"status": "ok", "total": 42})

	out, err := runCommand(t, ms, validConfig, countCmdWithApp, "count", "123")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestItemsCmd(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJL(http.MethodGet, "/storage/items/123/1/2", map[string]any{"_key": "123/1/2/0", "title": "a"})

	out, err := runCommand(t, ms, validConfig, itemsCmdWithApp, "items", "123/1/2", "--count", "1", "--meta", "_key")
	require.NoError(t, err)
	assert.JSONEq(t, `{"_key":"123/1/2/0","title":"a"}`, out)

	query := ms.LastRequest().Query
	assert.Equal(t, "1", query.Get("count"))
	assert.Equal(t, []string{"_key"}, query["meta"])
	assert.Equal(t, testutil.APIKey, query.Get("apikey"))
}

func TestItemsCmd_RetriesFlag(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleText(http.MethodGet, "/storage/items/123/1/2", http.StatusServiceUnavailable, "busy")

	_, err := runCommand(t, ms, validConfig, itemsCmdWithApp, "items", "123/1/2", "--retries", "2")
	require.Error(t, err)
	assert.ErrorIs(t, err, scrapinghub.ErrRetriesExhausted)
	assert.Len(t, ms.RequestsTo("/storage/items/123/1/2"), 2)
}

func TestStopCmd(t *testing.T) {
	ms := testutil.NewMockServer(t)
	ms.HandleJL(http.MethodGet, "/api/jobs/list.jl",
		map[string]any{"status": "ok"},
		map[string]any{"id": "123/1/2", "state": "running"},
	)
	ms.HandleJSON(http.MethodPost, "/api/jobs/stop.json", http.StatusOK, map[string]any{"status": "ok"})

	out, err := runCommand(t, ms, validConfig, stopCmdWithApp, "stop", "123/1/2")
	require.NoError(t, err)
	assert.Equal(t, "Requested stop of job 123/1/2\n", out)

	list := ms.RequestsTo("/api/jobs/list.jl")
	require.Len(t, list, 1)
	assert.Equal(t, "123/1/2", list[0].Query.Get("job"))
	assert.Equal(t, "1", list[0].Query.Get("count"))
}

func TestCommand_MissingAPIKey(t *testing.T) {
	ms := testutil.NewMockServer(t)

	_, err := runCommand(t, ms, "", projectsCmdWithApp, "projects")
	assert.ErrorIs(t, err, scrapinghub.ErrNoAPIKey)
	ms.AssertRequestCount(t, 0)
}

func TestCommand_MissingConfigFile(t *testing.T) {
	v := viper.New()
	root := &cobra.Command{Use: "shubctl", SilenceUsage: true, SilenceErrors: true}
	addConnectionFlags(root.PersistentFlags(), v)
	root.AddCommand(projectsCmdWithApp(v, shubctl.New()))
	root.SetArgs([]string{"projects", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestItemsOptions(t *testing.T) {
	cmd := itemsCmdWithApp(viper.New(), shubctl.New())
	require.NoError(t, cmd.ParseFlags(nil))

	opts, err := itemsOptions(cmd)
	require.NoError(t, err)
	assert.Nil(t, opts.Count)
	assert.Zero(t, opts.Offset)
	assert.Empty(t, opts.Meta)

	require.NoError(t, cmd.ParseFlags([]string{"--offset", "5", "--count", "0", "--meta", "_key,_ts"}))
	opts, err = itemsOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, 5, opts.Offset)
	require.NotNil(t, opts.Count)
	assert.Equal(t, 0, *opts.Count)
	assert.Equal(t, []string{"_key", "_ts"}, opts.Meta)
}

func TestRootCmd(t *testing.T) {
	root := RootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Version:")

	for _, name := range []string{"projects", "spiders", "schedule", "jobs", "count", "tag", "stop", "delete", "items", "log"} {
		found, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, found.Name())
	}
}
