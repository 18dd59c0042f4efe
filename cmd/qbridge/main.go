// Package main is the qbridge entry point.
package main

import (
	"os"

	"github.com/qbridge-labs/qbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
