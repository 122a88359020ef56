// Package main provides the airlens CLI.
package main

import (
	"os"

	"github.com/airlens/airlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
