// Package version provides client version information.
package version

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current client version. It tracks the API revision of
	// the dash endpoints it was written against.
	Version = "1.7.0"

	// SDKName is the name reported to the API.
	SDKName = "scrapinghub-go"
)

// UserAgent returns the User-Agent header sent with every request.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s; %s)", SDKName, Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// ShortUserAgent returns name/version only.
func ShortUserAgent() string {
	return SDKName + "/" + Version
}
