// Package formula models one resolved Homebrew package and the pure
// functions that derive its canonical source repository and release tag
// from heterogeneous download URLs.
package formula

import (
	"strings"

	"github.com/Homebrew/homebrew-brew-vulns/pkg/brew"
)

// Formula is one resolved Homebrew package. The exported fields are set at
// construction and never change; RepositoryURL and ReleaseTag are derived
// lazily and memoized, so a Formula must not be copied after first use of
// either accessor.
type Formula struct {
	Name         string
	Version      string
	SourceURL    string
	HeadURL      string
	Dependencies []string

	repoURL  string
	repoOK   bool
	repoDone bool

	tag     string
	tagOK   bool
	tagDone bool
}

// New builds a Formula from one raw metadata object. The short name falls
// back to the full name, the stable version to the flat version field.
// Missing optional fields stay empty; they are never an error.
func New(md brew.Metadata) *Formula {
	name := md.Name
	if name == "" {
		name = md.FullName
	}
	version := md.Versions.Stable
	if version == "" {
		version = md.Version
	}
	deps := md.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return &Formula{
		Name:         name,
		Version:      version,
		SourceURL:    md.URLs.Stable.URL,
		HeadURL:      md.URLs.Head.URL,
		Dependencies: deps,
	}
}

// RepositoryURL returns the canonical repository URL for the formula,
// trying the stable download URL first and the head URL only when the
// stable one does not resolve. The result, including the absent case, is
// computed once and reused on every subsequent call.
func (f *Formula) RepositoryURL() (string, bool) {
	if !f.repoDone {
		f.repoURL, f.repoOK = RepositoryURL(f.SourceURL)
		if !f.repoOK {
			f.repoURL, f.repoOK = RepositoryURL(f.HeadURL)
		}
		f.repoDone = true
	}
	return f.repoURL, f.repoOK
}

// ReleaseTag returns the release tag extracted from the stable download
// URL. Head URLs are never consulted: head builds have no stable release
// tag. Memoized like RepositoryURL.
func (f *Formula) ReleaseTag() (string, bool) {
	if !f.tagDone {
		f.tag, f.tagOK = ReleaseTag(f.SourceURL)
		f.tagDone = true
	}
	return f.tag, f.tagOK
}

// OnGitHub reports whether the resolved repository is hosted on github.com.
func (f *Formula) OnGitHub() bool { return f.onForge(GitHub) }

// OnGitLab reports whether the resolved repository is hosted on gitlab.com.
func (f *Formula) OnGitLab() bool { return f.onForge(GitLab) }

// OnBitbucket reports whether the resolved repository is hosted on bitbucket.org.
func (f *Formula) OnBitbucket() bool { return f.onForge(Bitbucket) }

// OnSupportedForge reports whether a repository URL resolved at all.
func (f *Formula) OnSupportedForge() bool {
	_, ok := f.RepositoryURL()
	return ok
}

func (f *Formula) onForge(host string) bool {
	repo, ok := f.RepositoryURL()
	return ok && strings.HasPrefix(repo, "https://"+host+"/")
}
