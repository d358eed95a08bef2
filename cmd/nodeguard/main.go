// Package main provides the entry point for the nodeguard CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/nodeguard/cmd/nodeguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
