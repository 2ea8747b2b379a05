// Package main provides the pbixlint command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/pbixlint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
