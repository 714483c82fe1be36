// Package main provides the entry point for the vitalsum CLI tool.
package main

import "github.com/vitalsum/vitalsum/cmd/vitalsum/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
