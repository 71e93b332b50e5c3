package httpx

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var absoluteURL = regexp.MustCompile(`(?i)^http`)

// IsAbsoluteURL reports whether s should be used verbatim instead of being
// resolved through the method table.
func IsAbsoluteURL(s string) bool {
	return absoluteURL.MatchString(s)
}

// InjectCredential places apiKey in the authority of rawURL unless the URL
// already carries userinfo. The key is sent as the basic-auth user name.
func InjectCredential(rawURL, apiKey string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "parsing endpoint %q", rawURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("endpoint %q is not an absolute URL", rawURL)
	}
	if u.User == nil {
		u.User = url.User(apiKey)
	}
	return u.String(), nil
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
