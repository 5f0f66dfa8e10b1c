// Package main is the entry point for the mvtag CLI.
package main

import (
	"os"

	"github.com/aidanlsb/mvtag/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
