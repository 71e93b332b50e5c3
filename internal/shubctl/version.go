package shubctl

import (
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/davidxi/scrapinghub-go/internal/version"
)

// Version prints build information to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", version.Version)
	fmt.Fprintf(w, "Go version:\t%s\n", runtime.Version())
	fmt.Fprintf(w, "Platform:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
	return w.Flush()
}
