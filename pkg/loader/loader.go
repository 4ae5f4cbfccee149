// Package loader assembles working sets of formulae from the brew client:
// everything installed, an installed formula plus its transitive
// dependencies, or the contents of a Brewfile. Results are ordered and
// deduplicated by name, first occurrence wins.
package loader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Homebrew/homebrew-brew-vulns/pkg/brew"
	"github.com/Homebrew/homebrew-brew-vulns/pkg/formula"
)

// Inventory is the subset of the brew client the loader needs. It is
// satisfied by *brew.Client; tests substitute a fake so no subprocess runs.
type Inventory interface {
	InstalledInfo(ctx context.Context) ([]brew.Metadata, error)
	Info(ctx context.Context, names []string) ([]brew.Metadata, error)
	Deps(ctx context.Context, name string, installedOnly bool) ([]string, error)
	BundleList(ctx context.Context, path string) ([]string, error)
}

// ManifestNotFoundError reports a Brewfile path that does not exist. It is
// returned before any subprocess is launched.
type ManifestNotFoundError struct {
	Path string
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("manifest %s does not exist", e.Path)
}

// Loader builds formula sets. Each call re-fetches fresh metadata; nothing
// is shared between calls.
type Loader struct {
	Inventory Inventory
	Logger    *log.Logger
}

// New returns a Loader backed by the given inventory client.
func New(inv Inventory) *Loader {
	return &Loader{Inventory: inv, Logger: log.Default()}
}

// Installed returns every installed formula. A non-empty filter keeps only
// formulae whose name matches it exactly or up to an @-versioned suffix,
// so "python" matches both "python" and "python@3.11".
func (l *Loader) Installed(ctx context.Context, filter string) ([]*formula.Formula, error) {
	metadata, err := l.Inventory.InstalledInfo(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(metadata))
	var result []*formula.Formula
	for _, md := range metadata {
		f := formula.New(md)
		if filter != "" && !matchesFilter(f.Name, filter) {
			continue
		}
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		result = append(result, f)
	}
	return result, nil
}

// WithDependencies returns the installed formulae matching filter followed
// by their installed transitive dependencies, in brew's listing order. With
// no filter it behaves exactly like Installed. When the filter matches
// nothing the result is empty and no dependency listing is fetched. Brew
// itself computes the transitive closure; this method issues exactly one
// deps call and never recurses. Dependencies that are listed but not among
// the installed metadata are silently skipped.
func (l *Loader) WithDependencies(ctx context.Context, filter string) ([]*formula.Formula, error) {
	if filter == "" {
		return l.Installed(ctx, "")
	}
	metadata, err := l.Inventory.InstalledInfo(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*formula.Formula, len(metadata))
	seen := make(map[string]bool)
	var result []*formula.Formula
	for _, md := range metadata {
		f := formula.New(md)
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = f
		}
		if matchesFilter(f.Name, filter) && !seen[f.Name] {
			seen[f.Name] = true
			result = append(result, f)
		}
	}
	if len(result) == 0 {
		// Dependencies of nothing: skip the deps call entirely.
		return nil, nil
	}

	depNames, err := l.Inventory.Deps(ctx, filter, true)
	if err != nil {
		return nil, err
	}
	for _, name := range depNames {
		if seen[name] {
			continue
		}
		f, ok := byName[name]
		if !ok {
			continue
		}
		seen[name] = true
		result = append(result, f)
	}
	return result, nil
}

// FromManifest returns the formulae declared in the Brewfile at path.
// With includeDeps, each declared formula's dependency listing is fetched
// and the combined set of dependencies is appended after the manifest's own
// formulae via one secondary metadata fetch. Both the per-formula listings
// and the secondary fetch are best-effort: their failures are logged and
// the dependencies omitted, while failures on the manifest listing and the
// primary metadata fetch are fatal.
func (l *Loader) FromManifest(ctx context.Context, path string, includeDeps bool) ([]*formula.Formula, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &ManifestNotFoundError{Path: path}
		}
		return nil, err
	}

	names, err := l.Inventory.BundleList(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	metadata, err := l.Inventory.Info(ctx, names)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(metadata))
	var result []*formula.Formula
	for _, md := range metadata {
		f := formula.New(md)
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		result = append(result, f)
	}

	if !includeDeps {
		return result, nil
	}

	declared := make(map[string]bool, len(names))
	for _, name := range names {
		declared[name] = true
	}

	depSeen := make(map[string]bool)
	var depNames []string
	for _, name := range names {
		deps, err := l.Inventory.Deps(ctx, name, false)
		if err != nil {
			l.logger().Warn("skipping dependencies", "formula", name, "error", err)
			continue
		}
		for _, dep := range deps {
			if declared[dep] || depSeen[dep] {
				continue
			}
			depSeen[dep] = true
			depNames = append(depNames, dep)
		}
	}
	if len(depNames) == 0 {
		return result, nil
	}

	depMetadata, err := l.Inventory.Info(ctx, depNames)
	if err != nil {
		// Best-effort enrichment: the manifest formulae are still
		// reported, just without their dependencies.
		l.logger().Warn("dependency metadata fetch failed", "error", err)
		return result, nil
	}
	for _, md := range depMetadata {
		f := formula.New(md)
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		result = append(result, f)
	}
	return result, nil
}

func (l *Loader) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

// matchesFilter reports whether a formula name matches the filter, either
// exactly or with the name's @-versioned suffix removed.
func matchesFilter(name, filter string) bool {
	if name == filter {
		return true
	}
	base, _, found := strings.Cut(name, "@")
	return found && base == filter
}
