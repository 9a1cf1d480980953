// ABOUTME: Entry point for lift CLI.
// ABOUTME: Invokes the root Cobra command and aborts on unrecoverable store errors.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/lift/internal/storage"
)

func main() {
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when a command fails.
	_ = closeStore()
	if err != nil {
		if storage.IsFatal(err) {
			color.Red("✗ The workout database could not be opened.")
			fmt.Fprintln(os.Stderr, "  Move or delete the data directory, or set erase_on_schema_change in the config.")
			os.Exit(2)
		}
		os.Exit(1)
	}
}
