// Package osv queries the osv.dev vulnerability database for resolved
// formula releases.
package osv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Homebrew/homebrew-brew-vulns/pkg/formula"
)

// DefaultBaseURL is the production OSV API endpoint.
const DefaultBaseURL = "https://api.osv.dev"

const defaultTimeout = 30 * time.Second

// workers bounds concurrent queries so a large formula set does not flood
// the API. This is the only concurrent code path in the scanner; formula
// resolution itself stays single-threaded.
const workers = 8

// Vulnerability is the subset of the OSV schema the reporter renders.
type Vulnerability struct {
	ID         string      `json:"id"`
	Summary    string      `json:"summary,omitempty"`
	Details    string      `json:"details,omitempty"`
	Aliases    []string    `json:"aliases,omitempty"`
	Modified   string      `json:"modified,omitempty"`
	Published  string      `json:"published,omitempty"`
	Severity   []Severity  `json:"severity,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// Severity is one severity entry of an OSV record, e.g. a CVSS v3 vector.
type Severity struct {
	Type  string `json:"type,omitempty"`
	Score string `json:"score,omitempty"`
}

// Reference is one external link attached to an OSV record.
type Reference struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

type queryRequest struct {
	Version string       `json:"version,omitempty"`
	Package queryPackage `json:"package"`
}

type queryPackage struct {
	Name string `json:"name"`
}

type queryResponse struct {
	Vulns []Vulnerability `json:"vulns"`
}

// Client is an osv.dev API client. The zero value is not usable; construct
// with NewClient and override BaseURL or HTTPClient for tests.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client against the production OSV endpoint with a
// request timeout.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Query returns the known vulnerabilities affecting one release.
func (c *Client) Query(ctx context.Context, q formula.Query) ([]Vulnerability, error) {
	body, err := json.Marshal(queryRequest{
		Version: q.Version,
		Package: queryPackage{Name: q.Name},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osv query for %s: %w", q.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("osv query for %s: unexpected status %d: %s", q.Name, resp.StatusCode, snippet)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal osv response for %s: %w", q.Name, err)
	}
	return decoded.Vulns, nil
}

// QueryBatch fans the queries out over a bounded worker pool and returns
// one result slice per query, in query order. The first error cancels the
// remaining lookups.
func (c *Client) QueryBatch(ctx context.Context, queries []formula.Query) ([][]Vulnerability, error) {
	results := make([][]Vulnerability, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			vulns, err := c.Query(gctx, q)
			if err != nil {
				return err
			}
			results[i] = vulns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
