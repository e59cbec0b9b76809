// Package main is the entry point for the wrtrack CLI.
//
// wrtrack polls a course records API for the current world record of a fixed
// set of courses and appends every change to an on-disk history file.
//
// Usage:
//
//	wrtrack run -c config.yaml      # Start the poller
//	wrtrack validate -c config.yaml # Validate configuration and course list
//	wrtrack version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "wrtrack",
	Short: "An unattended world-record change tracker",
	Long: `wrtrack polls a course records API on a fixed period and appends
every world-record change to an append-only JSON history file.

It is built to run unattended for days: upstream failures are retried on a
flat cadence, and a cycle whose retries are exhausted is skipped rather than
fatal - the tracker self-heals once the upstream recovers.

Quick start:
  1. Create a config file (wrtrack.yaml) and a course list (courses.json)
  2. Run: wrtrack run -c wrtrack.yaml

Example config:
  endpoint: https://records.example.com/api/courses
  courses_file: courses.json
  history_file: history.json
  poll_interval: 120s`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this wrtrack binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wrtrack %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
