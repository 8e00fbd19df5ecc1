// Package main is the entry point for the revq CLI application.
// It answers natural-language questions about music royalties data by
// generating, validating, and executing read-only SQL.
package main

import (
	"revq/cli/cmd"
)

func main() {
	cmd.Execute()
}
