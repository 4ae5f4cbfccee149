package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	formulaName  string
	withDeps     bool
	manifestPath string
	configFile   string
	outputFile   string
	formatName   string
	dryRun       bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "brew-vulns",
	Short: "Scan Homebrew formulae for known vulnerabilities",
	Long: `Scan Homebrew formulae for known vulnerabilities.

brew-vulns resolves each formula's source repository and release tag from
its download URLs and looks the release up in the OSV vulnerability
database (https://osv.dev). Formulae whose sources are not hosted on a
supported forge (GitHub, GitLab, Bitbucket) are reported as not checked.

By default every installed formula is scanned. A single formula can be
selected with --formula, optionally widened to its installed dependencies
with --deps, or the scan can be driven by a Brewfile with --manifest.`,
	Example: `  # Scan everything installed
  brew-vulns

  # Scan one formula and its installed dependencies
  brew-vulns --formula openssl --deps

  # Scan the formulae declared in a Brewfile
  brew-vulns --manifest ./Brewfile --deps

  # Machine-readable output
  brew-vulns --format json -o report.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd.Context())
	},
}

// Execute runs the root cobra command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

func init() {
	// Dynamically append prerequisite status to the help description
	rootCmd.Long += "\n" + checkToolStatus()

	rootCmd.Flags().StringVar(&formulaName, "formula", "", "Scan a single formula (matches versioned names, e.g. 'python' matches 'python@3.11')")
	rootCmd.Flags().BoolVar(&withDeps, "deps", false, "Include dependencies in the scan")
	rootCmd.Flags().StringVar(&manifestPath, "manifest", "", "Scan the formulae declared in a Brewfile instead of installed ones")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to config file (default: .brew-vulns.yaml)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Path to output file (default: print to stdout)")
	rootCmd.Flags().StringVar(&formatName, "format", "", "Output format: table, markdown or json (default: markdown)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print to stdout instead of writing to file")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")

	rootCmd.MarkFlagsMutuallyExclusive("formula", "manifest")

	// Add version flag as shortcut for "version" command
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("brew-vulns {{.Version}}\n")
}
