package formula

import "testing"

func TestRepositoryURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{
			"github archive tag",
			"https://github.com/jqlang/jq/archive/refs/tags/jq-1.7.1.tar.gz",
			"https://github.com/jqlang/jq",
			true,
		},
		{
			"github release download",
			"https://github.com/cli/cli/releases/download/v2.40.0/gh_2.40.0_src.tar.gz",
			"https://github.com/cli/cli",
			true,
		},
		{
			"git suffix stripped",
			"https://github.com/openssl/openssl.git",
			"https://github.com/openssl/openssl",
			true,
		},
		{
			"gitlab sub-resource path stripped",
			"https://gitlab.com/procps-ng/procps/-/archive/v4.0.4/procps-v4.0.4.tar.gz",
			"https://gitlab.com/procps-ng/procps",
			true,
		},
		{
			"bitbucket tarball",
			"https://bitbucket.org/mrabarnett/mrab-regex/get/tip.tar.gz",
			"https://bitbucket.org/mrabarnett/mrab-regex",
			true,
		},
		{
			"git scheme accepted",
			"git://github.com/tmux/tmux.git",
			"https://github.com/tmux/tmux",
			true,
		},
		{
			"unsupported host",
			"https://ftp.gnu.org/gnu/wget/wget-1.21.tar.gz",
			"",
			false,
		},
		{
			"host substring without repo path",
			"https://github.com/",
			"",
			false,
		},
		{
			"empty url",
			"",
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RepositoryURL(tt.url)
			if ok != tt.ok || got != tt.want {
				t.Errorf("RepositoryURL(%q) = %q, %v, want %q, %v", tt.url, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRepositoryURL_ForgePriority(t *testing.T) {
	// A URL mentioning a later forge in its path still resolves against the
	// host that actually serves it.
	url := "https://github.com/mirror/gitlab.com-tools/archive/v1.tar.gz"
	got, ok := RepositoryURL(url)
	if !ok || got != "https://github.com/mirror/gitlab.com-tools" {
		t.Errorf("RepositoryURL(%q) = %q, %v", url, got, ok)
	}
}

func TestReleaseTag(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{
			"refs tags tarball",
			"https://github.com/jqlang/jq/archive/refs/tags/v1.2.3.tar.gz",
			"v1.2.3",
			true,
		},
		{
			"refs tags zip",
			"https://github.com/foo/bar/archive/refs/tags/v2.0.zip",
			"v2.0",
			true,
		},
		{
			"bare archive tarball",
			"https://github.com/foo/bar/archive/1.0.5.tar.gz",
			"1.0.5",
			true,
		},
		{
			"bare archive zip",
			"https://github.com/foo/bar/archive/1.0.5.zip",
			"1.0.5",
			true,
		},
		{
			"release download",
			"https://github.com/cli/cli/releases/download/v2.40.0/gh_2.40.0_src.tar.gz",
			"v2.40.0",
			true,
		},
		{
			"tarball",
			"https://github.com/foo/bar/tarball/v0.9",
			"v0.9",
			true,
		},
		{
			"no recognized shape",
			"https://ftp.gnu.org/gnu/wget/wget-1.21.tar.gz",
			"",
			false,
		},
		{
			"empty url",
			"",
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ReleaseTag(tt.url)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ReleaseTag(%q) = %q, %v, want %q, %v", tt.url, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestReleaseTag_PatternOrder(t *testing.T) {
	// The refs/tags shape must win over the bare archive shape: a greedy
	// archive match would otherwise capture "refs" as the tag.
	url := "https://github.com/foo/bar/archive/refs/tags/v3.1.4.tar.gz"
	got, ok := ReleaseTag(url)
	if !ok || got != "v3.1.4" {
		t.Errorf("ReleaseTag(%q) = %q, %v, want v3.1.4", url, got, ok)
	}
}
