// Package main is the entry point for the filmscope CLI.
package main

import (
	"os"

	"filmscope/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
