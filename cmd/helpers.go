package cmd

import (
	"fmt"
	"os/exec"
	"strings"
)

// checkToolStatus returns a string indicating the status of required tools.
func checkToolStatus() string {
	var status strings.Builder
	status.WriteString("\nPrerequisites:\n")

	if path, err := exec.LookPath("brew"); err == nil {
		fmt.Fprintf(&status, "  [OK] brew (%s)\n", path)
	} else {
		status.WriteString("  [MISSING] brew (see https://brew.sh)\n")
	}
	return status.String()
}
