package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Homebrew/homebrew-brew-vulns/pkg/brew"
	"github.com/Homebrew/homebrew-brew-vulns/pkg/config"
	"github.com/Homebrew/homebrew-brew-vulns/pkg/formula"
	"github.com/Homebrew/homebrew-brew-vulns/pkg/loader"
	"github.com/Homebrew/homebrew-brew-vulns/pkg/osv"
	"github.com/Homebrew/homebrew-brew-vulns/pkg/report"
)

// newInventory is swapped out by tests so no brew subprocess is launched.
var newInventory = func() loader.Inventory { return brew.NewClient() }

func runScan(ctx context.Context) error {
	logger := newLogger(os.Stderr, log.InfoLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 1. Assemble the formula set
	l := loader.New(newInventory())
	l.Logger = logger

	var formulae []*formula.Formula
	switch {
	case manifestPath != "":
		formulae, err = l.FromManifest(ctx, manifestPath, withDeps)
	case withDeps:
		formulae, err = l.WithDependencies(ctx, formulaName)
	default:
		formulae, err = l.Installed(ctx, formulaName)
	}
	if err != nil {
		return err
	}
	if len(formulae) == 0 {
		printWarning("No formulae to scan")
		return nil
	}
	logger.Debug("resolved formula set", "count", len(formulae))

	// 2. Resolve repository URLs and release tags
	results := make([]report.Result, len(formulae))
	var queries []formula.Query
	var queryIdx []int
	for i, f := range formulae {
		results[i] = report.NewResult(f)
		if q, ok := f.Query(); ok {
			queries = append(queries, q)
			queryIdx = append(queryIdx, i)
		} else {
			logger.Debug("skipping formula", "formula", f.Name, "reason", results[i].SkipReason)
		}
	}

	// 3. Query the vulnerability database
	client := newOSVClient(cfg)
	vulns, err := client.QueryBatch(ctx, queries)
	if err != nil {
		return fmt.Errorf("vulnerability lookup failed: %w", err)
	}
	for i, idx := range queryIdx {
		for _, v := range vulns[i] {
			if cfg.Ignored(v) {
				logger.Debug("ignoring vulnerability", "id", v.ID, "formula", results[idx].Name)
				continue
			}
			results[idx].Vulnerabilities = append(results[idx].Vulnerabilities, v)
		}
	}

	// 4. Render and write
	rep := report.New(results)
	rendered, err := renderReport(rep, resolveFormat(cfg))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := writeOutput(rendered); err != nil {
		return err
	}

	if vulnerable := rep.Vulnerable(); len(vulnerable) > 0 {
		printWarning("%d of %d formulae have known vulnerabilities", len(vulnerable), len(formulae))
	} else {
		printSuccess("No known vulnerabilities in %d formulae", len(formulae))
	}
	return nil
}

func newOSVClient(cfg *config.Config) *osv.Client {
	client := osv.NewClient()
	if cfg.OSV.BaseURL != "" {
		client.BaseURL = cfg.OSV.BaseURL
	}
	if cfg.OSV.Timeout > 0 {
		client.HTTPClient.Timeout = time.Duration(cfg.OSV.Timeout)
	}
	return client
}

// loadConfig loads the file named by --config, falling back to the default
// path when present. A missing default file is not an error.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.Load(config.DefaultPath)
	}
	return config.Default(), nil
}

// resolveFormat picks the output format: CLI flag > config file > default.
func resolveFormat(cfg *config.Config) string {
	if formatName != "" {
		return formatName
	}
	if cfg.Format != "" {
		return cfg.Format
	}
	return "markdown"
}

func renderReport(rep *report.Report, format string) (string, error) {
	switch format {
	case "table":
		return rep.RenderTable(), nil
	case "markdown":
		return rep.RenderMarkdown()
	case "json":
		return rep.RenderJSON()
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, markdown or json)", format)
	}
}
