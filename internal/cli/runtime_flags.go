package cli

import (
	"fmt"
	"time"

	"github.com/example/devfetch/internal/config"
	"github.com/spf13/cobra"
)

// runtimeFlagSet tracks shared flags before they are converted into config overrides.
type runtimeFlagSet struct {
	timeout    time.Duration
	workers    int
	json       bool
	noColor    bool
	verbose    bool
	events     bool
	outputFile string
	extraTools string
}

func bindRuntimeFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	cmd.Flags().DurationVar(&flags.timeout, "timeout", config.DefaultTimeout, fmt.Sprintf("Per-command timeout (%s-%s)", config.MinTimeout, config.MaxTimeout))
	cmd.Flags().IntVar(&flags.workers, "workers", 0, fmt.Sprintf("Concurrent version probes (1-%d, default: CPU count)", config.MaxWorkers))
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output (useful for piping)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose output for debugging")
	cmd.Flags().BoolVar(&flags.events, "events", false, "Write NDJSON progress events to stderr")
	cmd.Flags().StringVar(&flags.outputFile, "output-file", "", "Also write the JSON result to this file")
	cmd.Flags().StringVar(&flags.extraTools, "extra-tools", "", "Comma-separated extra name prefixes to treat as developer tools")
}

func (f runtimeFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}

	if cmd.Flags().Changed("timeout") {
		ov.Timeout = f.timeout
		ov.TimeoutSet = true
	}

	if cmd.Flags().Changed("workers") {
		ov.Workers = f.workers
		ov.WorkersSet = true
	}

	if cmd.Flags().Changed("json") && f.json {
		ov.Format = config.FormatJSON
	}

	if cmd.Flags().Changed("no-color") {
		ov.NoColor = &f.noColor
	}

	if cmd.Flags().Changed("verbose") {
		ov.Verbose = &f.verbose
	}

	if cmd.Flags().Changed("events") {
		ov.Events = &f.events
	}

	if cmd.Flags().Changed("output-file") {
		ov.OutputFile = f.outputFile
	}

	if cmd.Flags().Changed("extra-tools") {
		ov.ExtraTools = config.ParseToolList(f.extraTools)
	}

	return ov
}
