package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/example/devfetch/internal/events"
	"github.com/example/devfetch/internal/model"
	"github.com/example/devfetch/internal/output"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var inputPath string
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise a saved JSON scan result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("--input is required")
			}

			f, err := os.Open(inputPath)
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := output.ReadJSON(f)
			if err != nil {
				return fmt.Errorf("%s: %w", inputPath, err)
			}

			stats := summarize(result)
			stats["input"] = inputPath
			stats["generatedAt"] = time.Now().UTC().Format(time.RFC3339)

			emitter := events.NewEmitter(cmd.OutOrStdout())
			if err := emitter.Emit(events.Event{Type: events.TypeReport, Message: "Report generated", Fields: stats}); err != nil {
				return err
			}

			if summaryPath != "" {
				if err := writeReportSummary(summaryPath, stats); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", summaryPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to a result written by --json or --output-file")
	cmd.Flags().StringVar(&summaryPath, "summary-file", "", "Optional path to store summary JSON")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	return cmd
}

// summarize counts tools per category and lists the detected ecosystems.
func summarize(result model.ScanResult) map[string]any {
	categories := map[string]int{}
	versioned := 0
	for _, t := range result.GlobalTools {
		categories[string(t.Category)]++
		if t.Version != nil {
			versioned++
		}
	}

	stats := map[string]any{
		"tools":      len(result.GlobalTools),
		"versioned":  versioned,
		"categories": categories,
	}

	if p := result.ProjectInfo; p != nil {
		ecosystems := make([]map[string]any, 0, len(p.Ecosystems))
		names := make([]string, 0, len(p.Ecosystems))
		for name := range p.Ecosystems {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			eco := p.Ecosystems[name]
			entry := map[string]any{"name": name}
			if eco.ToolVersion != nil {
				entry["toolVersion"] = *eco.ToolVersion
			}
			if eco.Dependencies != nil {
				entry["dependencies"] = eco.Dependencies.Count
			}
			ecosystems = append(ecosystems, entry)
		}
		stats["project"] = p.Path
		stats["markers"] = len(p.Markers)
		stats["ecosystems"] = ecosystems
	}

	return stats
}

func writeReportSummary(path string, stats map[string]any) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
