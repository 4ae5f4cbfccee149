// Package report collects scan results and renders them as markdown or JSON.
package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Homebrew/homebrew-brew-vulns/pkg/formula"
	"github.com/Homebrew/homebrew-brew-vulns/pkg/osv"
)

// Result pairs one formula with the outcome of its vulnerability lookup.
// A formula whose repository or release tag could not be resolved carries a
// SkipReason instead of a query.
type Result struct {
	Name            string              `json:"name"`
	Version         string              `json:"version,omitempty"`
	RepositoryURL   string              `json:"repository_url,omitempty"`
	ReleaseTag      string              `json:"release_tag,omitempty"`
	SkipReason      string              `json:"skip_reason,omitempty"`
	Vulnerabilities []osv.Vulnerability `json:"vulnerabilities,omitempty"`
}

// Skip reasons for formulae that cannot be queried.
const (
	SkipNoRepository = "no supported source repository"
	SkipNoReleaseTag = "no release tag in download URL"
)

// NewResult builds the pre-lookup result for a formula. Vulnerabilities are
// attached later by the caller once the database has been queried.
func NewResult(f *formula.Formula) Result {
	r := Result{Name: f.Name, Version: f.Version}
	repo, ok := f.RepositoryURL()
	if !ok {
		r.SkipReason = SkipNoRepository
		return r
	}
	r.RepositoryURL = repo
	tag, ok := f.ReleaseTag()
	if !ok {
		r.SkipReason = SkipNoReleaseTag
		return r
	}
	r.ReleaseTag = tag
	return r
}

// Skipped reports whether the formula was never queried.
func (r Result) Skipped() bool { return r.SkipReason != "" }

// Report is a full scan outcome.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Results     []Result  `json:"results"`
}

// New returns a Report over the given results, stamped with the current time.
func New(results []Result) *Report {
	return &Report{GeneratedAt: time.Now().UTC(), Results: results}
}

// Vulnerable returns the results that have at least one vulnerability.
func (r *Report) Vulnerable() []Result {
	var out []Result
	for _, res := range r.Results {
		if len(res.Vulnerabilities) > 0 {
			out = append(out, res)
		}
	}
	return out
}

// Skipped returns the results that could not be queried.
func (r *Report) Skipped() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Skipped() {
			out = append(out, res)
		}
	}
	return out
}

const markdownTemplate = `# Vulnerability Report

Generated: {{ .GeneratedAt.Format "2006-01-02 15:04 MST" }}

{{- if .Vulnerable }}

| Formula | Version | Vulnerability | Summary |
|---------|---------|---------------|---------|
{{- range .Vulnerable }}
{{- $res := . }}
{{- range .Vulnerabilities }}
| {{ $res.Name }} | {{ $res.Version }} | {{ .ID }} | {{ .Summary }} |
{{- end }}
{{- end }}
{{- else }}

No known vulnerabilities found.
{{- end }}

{{- if .Skipped }}

<details>
<summary>Not checked ({{ len .Skipped }} formulae)</summary>

| Formula | Reason |
|---------|--------|
{{- range .Skipped }}
| {{ .Name }} | {{ .SkipReason }} |
{{- end }}
</details>
{{- end }}
`

// RenderMarkdown renders the report as a markdown document.
func (r *Report) RenderMarkdown() (string, error) {
	tmpl, err := template.New("brew-vulns").Parse(markdownTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTable renders the report as an aligned terminal table, one row per
// formula. Skipped formulae carry their reason in the Notes column.
func (r *Report) RenderTable() string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("Formula", "Version", "Vulnerabilities", "Notes")

	for _, res := range r.Results {
		vulns := "none"
		notes := ""
		if res.Skipped() {
			vulns = "-"
			notes = res.SkipReason
		} else if len(res.Vulnerabilities) > 0 {
			ids := make([]string, len(res.Vulnerabilities))
			for i, v := range res.Vulnerabilities {
				ids[i] = v.ID
			}
			vulns = strings.Join(ids, ", ")
		}
		t.Row(res.Name, res.Version, vulns, notes)
	}
	return t.String()
}

// RenderJSON renders the report as indented JSON.
func (r *Report) RenderJSON() (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
