package main

import (
	"github.com/spf13/cobra"

	"github.com/99minutos/customs-tracking/pkg/logger"
)

var (
	// Logging related
	debug  bool
	pretty bool

	rootCmd = &cobra.Command{
		Use:   "customsd",
		Short: "Customs-clearance tracking service",
		Long: `customsd turns carrier tracking records into a customs timeline and summary.

Examples:
  customsd serve                                   # Run the HTTP API, workers and poller
  customsd normalize --file record.json            # Summarize a saved provider record
  customsd normalize --mode import_filtered < r.json
  customsd sample --number RR123456789CN           # Print a signed sample webhook body
  customsd watch                                   # Follow summary changes on NATS`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false,
		"Human-readable console logs instead of JSON")
}

func Execute() error {
	return rootCmd.Execute()
}

// initLogger sets up the process logger from flags, falling back to level
// when --debug is not given.
func initLogger(level string, prettyEnv bool) {
	if debug {
		level = "debug"
	}
	logger.Init(logger.Options{
		Level:   level,
		Pretty:  pretty || prettyEnv,
		Service: "customsd",
	})
}
