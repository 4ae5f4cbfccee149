package brew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Metadata is one raw formula object from brew's v2 info schema. Only the
// fields the scanner reads are decoded; everything else is ignored.
type Metadata struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Version  string `json:"version"`
	Versions struct {
		Stable string `json:"stable"`
	} `json:"versions"`
	URLs struct {
		Stable struct {
			URL string `json:"url"`
		} `json:"stable"`
		Head struct {
			URL string `json:"url"`
		} `json:"head"`
	} `json:"urls"`
	Dependencies []string `json:"dependencies"`
}

type infoResponse struct {
	Formulae []Metadata `json:"formulae"`
}

// Client wraps the brew CLI. All methods block until the subprocess exits;
// the context is the only cancellation mechanism.
type Client struct {
	runner runner
}

// NewClient returns a Client that invokes the brew binary found on PATH.
func NewClient() *Client {
	return &Client{runner: &execRunner{binary: "brew"}}
}

// InstalledInfo runs 'brew info --json=v2 --installed' and returns the raw
// metadata for every installed formula.
func (c *Client) InstalledInfo(ctx context.Context) ([]Metadata, error) {
	output, err := c.runner.run(ctx, "info", "--json=v2", "--installed")
	if err != nil {
		return nil, err
	}
	return parseInfo(output)
}

// Info runs 'brew info --json=v2 <names...>' for an explicit set of formula
// names. Callers must not pass an empty list; brew would interpret the bare
// invocation differently, so the loader short-circuits before calling this.
func (c *Client) Info(ctx context.Context, names []string) ([]Metadata, error) {
	args := append([]string{"info", "--json=v2"}, names...)
	output, err := c.runner.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseInfo(output)
}

// Deps runs 'brew deps <name>' and returns the transitive dependency names,
// one per output line, in brew's order. With installedOnly the listing is
// restricted to formulae that are already installed. Empty output is not an
// error; it yields an empty slice.
func (c *Client) Deps(ctx context.Context, name string, installedOnly bool) ([]string, error) {
	args := []string{"deps"}
	if installedOnly {
		args = append(args, "--installed")
	}
	args = append(args, name)
	output, err := c.runner.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitNames(output), nil
}

// BundleList runs 'brew bundle list --file=<path> --formula' and returns the
// formula names declared in the Brewfile.
func (c *Client) BundleList(ctx context.Context, path string) ([]string, error) {
	output, err := c.runner.run(ctx, "bundle", "list", "--file="+path, "--formula")
	if err != nil {
		return nil, err
	}
	return splitNames(output), nil
}

func parseInfo(output []byte) ([]Metadata, error) {
	var resp infoResponse
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal brew info output: %w", err)
	}
	return resp.Formulae, nil
}

// splitNames splits line-oriented brew output into trimmed, non-empty names.
func splitNames(output []byte) []string {
	var names []string
	for _, line := range strings.Split(string(output), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}
