// Package main provides the entry point for the lexrag CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/lexrag/cmd/lexrag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
