// Command quickdiff is the CLI entrypoint: cobra-driven flag parsing over
// the core's AppLoop, plus a non-interactive comments subcommand tree.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "quickdiff:", err)
		os.Exit(1)
	}
}
