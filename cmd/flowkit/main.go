// Package main provides the entry point for the flowkit CLI.
package main

import "flowkit/internal/cli"

func main() {
	cli.Execute()
}
