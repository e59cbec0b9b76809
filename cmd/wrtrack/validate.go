package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wrtrack/config"
	"wrtrack/internal/course"
)

// validateCmd validates a config file and its course list without starting
// the poller.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config and course list",
	Long: `Validate a wrtrack configuration file and its course list without
touching the network.

This command parses the YAML, checks every field, and normalizes the course
list exactly the way startup does. Useful before leaving the poller
unattended.

Exit codes:
  0 - Config and course list are valid
  1 - Invalid (error details printed to stderr)

Example:
  wrtrack validate -c config.yaml
  wrtrack validate --config /etc/wrtrack/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	rawCourses, err := config.LoadCourses(cfg.CoursesFile)
	if err != nil {
		return fmt.Errorf("invalid course list: %w", err)
	}
	courses, err := course.NormalizeAll(rawCourses)
	if err != nil {
		return fmt.Errorf("invalid course list: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Endpoint:      %s\n", cfg.Endpoint)
	fmt.Printf("  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Retry policy:  %d attempts, %s apart\n", cfg.RetryAttempts, cfg.RetryWait.Duration())
	fmt.Printf("  Courses:       %d tracked\n", len(courses))

	return nil
}
