package main

import (
	"fmt"
	"os"

	"github.com/dshills/browser-search/cmd/browsersearch/commands"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	rootCmd := commands.NewRootCmd(version, buildTime)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
