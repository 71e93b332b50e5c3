package httpx

import "testing"

func TestInjectCredential(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "default endpoint", url: "https://dash.scrapinghub.com/api/", want: "https://KEY@dash.scrapinghub.com/api/"},
		{name: "with port", url: "http://localhost:8080/api", want: "http://KEY@localhost:8080/api"},
		{name: "credential already present", url: "https://other@dash.scrapinghub.com/api/", want: "https://other@dash.scrapinghub.com/api/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InjectCredential(tt.url, "KEY")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("InjectCredential() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInjectCredential_Invalid(t *testing.T) {
	for _, u := range []string{"dash.scrapinghub.com/api", "://nope", ""} {
		if _, err := InjectCredential(u, "KEY"); err == nil {
			t.Errorf("InjectCredential(%q) should fail", u)
		}
	}
}

func TestIsAbsoluteURL(t *testing.T) {
	tests := map[string]bool{
		"https://storage.scrapinghub.com/items/1/2/3": true,
		"HTTP://example.com":                          true,
		"jobs_list":                                   false,
		"items":                                       false,
	}
	for in, want := range tests {
		if got := IsAbsoluteURL(in); got != want {
			t.Errorf("IsAbsoluteURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct{ base, path, want string }{
		{"https://dash.scrapinghub.com/api/", "jobs/list.json", "https://dash.scrapinghub.com/api/jobs/list.json"},
		{"https://dash.scrapinghub.com/api", "/jobs/list.json", "https://dash.scrapinghub.com/api/jobs/list.json"},
		{"https://storage.scrapinghub.com//", "items/1/2/3", "https://storage.scrapinghub.com/items/1/2/3"},
	}
	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("JoinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
