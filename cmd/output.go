package cmd

import (
	"fmt"
	"io"
	"os"
)

// stdout is swapped out by tests that capture command output.
var stdout io.Writer = os.Stdout

// writeOutput prints the rendered report to stdout, or writes it to the
// --output file when one is given and --dry-run is not set.
func writeOutput(content string) error {
	if dryRun || outputFile == "" {
		fmt.Fprintln(stdout, content)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	printSuccess("Wrote report to %s", outputFile)
	return nil
}
